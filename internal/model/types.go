package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Entity is the minimal shape the live-data core understands.
// Only ID and CreatedAt drive change detection; Status is passed through.
type Entity struct {
	ID        string
	CreatedAt time.Time
	Status    string
}

// Stage is the processing status of a trade import.
type Stage string

const (
	StageImported      Stage = "IMPORTED"
	StageConsolidated  Stage = "CONSOLIDATED"
	StageMXMLGenerated Stage = "MXML_GENERATED"
	StagePushedToMurex Stage = "PUSHED_TO_MUREX"
)

// Stages lists the pipeline stages in processing order.
var Stages = []Stage{StageImported, StageConsolidated, StageMXMLGenerated, StagePushedToMurex}

// Key returns the short resource/highlight key for a stage.
func (s Stage) Key() string {
	switch s {
	case StageImported:
		return "imports"
	case StageConsolidated:
		return "consolidated"
	case StageMXMLGenerated:
		return "mxml"
	case StagePushedToMurex:
		return "murex"
	default:
		return string(s)
	}
}

// Title returns the human label for a stage.
func (s Stage) Title() string {
	switch s {
	case StageImported:
		return "Imports"
	case StageConsolidated:
		return "Consolidated"
	case StageMXMLGenerated:
		return "MXML Generated"
	case StagePushedToMurex:
		return "Pushed to Murex"
	default:
		return string(s)
	}
}

// Timestamp decodes both RFC 3339 values and the zone-less ISO local
// date-times the backend emits. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a backend timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// MXMLFile is one generated MXML document attached to an import.
type MXMLFile struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt Timestamp `json:"createdAt"`
}

// TradeImport is one batch of trades moving through the pipeline.
type TradeImport struct {
	ID                    int64      `json:"id"`
	ImportName            string     `json:"importName"`
	Status                Stage      `json:"status"`
	ConsolidationCriteria string     `json:"consolidationCriteria,omitempty"`
	OriginalTradeCount    int        `json:"originalTradeCount"`
	CurrentTradeCount     int        `json:"currentTradeCount"`
	MXMLGenerated         bool       `json:"mxmlGenerated"`
	PushedToMurex         bool       `json:"pushedToMurex"`
	CreatedAt             Timestamp  `json:"createdAt"`
	ConsolidatedAt        Timestamp  `json:"consolidatedAt"`
	MXMLGeneratedAt       Timestamp  `json:"mxmlGeneratedAt"`
	PushedToMurexAt       Timestamp  `json:"pushedToMurexAt"`
	MXMLFiles             []MXMLFile `json:"mxmlFiles,omitempty"`
}

// EnteredStageAt returns when the import reached its current status,
// falling back to its creation time when the stage timestamp is missing.
func (ti TradeImport) EnteredStageAt() time.Time {
	var at Timestamp
	switch ti.Status {
	case StageConsolidated:
		at = ti.ConsolidatedAt
	case StageMXMLGenerated:
		at = ti.MXMLGeneratedAt
	case StagePushedToMurex:
		at = ti.PushedToMurexAt
	}
	if at.IsZero() {
		return ti.CreatedAt.Time
	}
	return at.Time
}

// Entity projects the import onto the change-detection shape.
func (ti TradeImport) Entity() Entity {
	return Entity{
		ID:        strconv.FormatInt(ti.ID, 10),
		CreatedAt: ti.EnteredStageAt(),
		Status:    string(ti.Status),
	}
}

// FilterStage returns the imports currently in the given stage, in input order.
func FilterStage(imports []TradeImport, stage Stage) []TradeImport {
	out := make([]TradeImport, 0, len(imports))
	for _, imp := range imports {
		if imp.Status == stage {
			out = append(out, imp)
		}
	}
	return out
}

// ImportEntities projects a list of imports onto entities.
func ImportEntities(imports []TradeImport) []Entity {
	out := make([]Entity, len(imports))
	for i, imp := range imports {
		out[i] = imp.Entity()
	}
	return out
}

// LiveTrade is a single trade waiting in the live queue.
type LiveTrade struct {
	TradeID      string          `json:"tradeId"`
	CurrencyPair string          `json:"currencyPair"`
	Side         string          `json:"side"`
	Counterparty string          `json:"counterparty"`
	Book         string          `json:"book"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Timestamp    Timestamp       `json:"timestamp"`
}

// Notional returns quantity × price.
func (lt LiveTrade) Notional() decimal.Decimal {
	return lt.Quantity.Mul(lt.Price)
}

// Entity projects the live trade onto the change-detection shape.
func (lt LiveTrade) Entity() Entity {
	return Entity{ID: lt.TradeID, CreatedAt: lt.Timestamp.Time, Status: "PENDING"}
}

// LiveTradeEntities projects a list of live trades onto entities.
func LiveTradeEntities(trades []LiveTrade) []Entity {
	out := make([]Entity, 0, len(trades))
	for _, lt := range trades {
		if lt.TradeID == "" {
			continue
		}
		out = append(out, lt.Entity())
	}
	return out
}

// DemoConfig controls the backend's synthetic trade generator.
type DemoConfig struct {
	Enabled                       bool    `json:"enabled" yaml:"enabled"`
	TradesPerSecond               float64 `json:"tradesPerSecond" yaml:"tradesPerSecond"`
	GroupingIntervalSeconds       int     `json:"groupingIntervalSeconds" yaml:"groupingIntervalSeconds"`
	AutoMXMLEnabled               bool    `json:"autoMxmlEnabled" yaml:"autoMxmlEnabled"`
	MXMLGenerationIntervalSeconds int     `json:"mxmlGenerationIntervalSeconds" yaml:"mxmlGenerationIntervalSeconds"`
	AutoMurexEnabled              bool    `json:"autoMurexEnabled" yaml:"autoMurexEnabled"`
	MurexPushIntervalSeconds      int     `json:"murexPushIntervalSeconds" yaml:"murexPushIntervalSeconds"`
}

// DefaultDemoConfig mirrors the backend's initial generator settings.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		TradesPerSecond:               1,
		GroupingIntervalSeconds:       10,
		MXMLGenerationIntervalSeconds: 20,
		MurexPushIntervalSeconds:      30,
	}
}

// Validate rejects settings the generator cannot run with.
func (c DemoConfig) Validate() error {
	if c.TradesPerSecond < 0 {
		return fmt.Errorf("tradesPerSecond must not be negative")
	}
	if c.GroupingIntervalSeconds <= 0 {
		return fmt.Errorf("groupingIntervalSeconds must be positive")
	}
	if c.MXMLGenerationIntervalSeconds <= 0 {
		return fmt.Errorf("mxmlGenerationIntervalSeconds must be positive")
	}
	if c.MurexPushIntervalSeconds <= 0 {
		return fmt.Errorf("murexPushIntervalSeconds must be positive")
	}
	return nil
}
