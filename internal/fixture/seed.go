package fixture

import (
	"fmt"
	"os"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML layout of a fixture data file.
type Seed struct {
	Imports []SeedImport      `yaml:"imports"`
	Pending []SeedTrade       `yaml:"pending"`
	Demo    *model.DemoConfig `yaml:"demo"`
}

// SeedImport is one import and the stage it should be advanced to.
type SeedImport struct {
	Name     string      `yaml:"name"`
	Stage    model.Stage `yaml:"stage"`
	Criteria string      `yaml:"criteria"`
	Trades   []SeedTrade `yaml:"trades"`
}

// SeedTrade holds decimals as strings so YAML never rounds them.
type SeedTrade struct {
	TradeID      string `yaml:"id"`
	CurrencyPair string `yaml:"currencyPair"`
	Side         string `yaml:"side"`
	Counterparty string `yaml:"counterparty"`
	Book         string `yaml:"book"`
	Quantity     string `yaml:"quantity"`
	Price        string `yaml:"price"`
}

func (st SeedTrade) trade() (model.LiveTrade, error) {
	qty, err := decimal.NewFromString(st.Quantity)
	if err != nil {
		return model.LiveTrade{}, fmt.Errorf("trade %q quantity: %w", st.TradeID, err)
	}
	price, err := decimal.NewFromString(st.Price)
	if err != nil {
		return model.LiveTrade{}, fmt.Errorf("trade %q price: %w", st.TradeID, err)
	}
	return model.LiveTrade{
		TradeID:      st.TradeID,
		CurrencyPair: st.CurrencyPair,
		Side:         st.Side,
		Counterparty: st.Counterparty,
		Book:         st.Book,
		Quantity:     qty,
		Price:        price,
	}, nil
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// Apply loads the seed into store, walking each import to its stage.
func (seed Seed) Apply(store *Store) error {
	for _, si := range seed.Imports {
		trades := make([]model.LiveTrade, 0, len(si.Trades))
		for _, st := range si.Trades {
			tr, err := st.trade()
			if err != nil {
				return fmt.Errorf("import %q: %w", si.Name, err)
			}
			trades = append(trades, tr)
		}
		imp := store.AddImport(si.Name, trades)
		if err := advance(store, imp.ID, si); err != nil {
			return fmt.Errorf("import %q: %w", si.Name, err)
		}
	}
	for _, st := range seed.Pending {
		tr, err := st.trade()
		if err != nil {
			return fmt.Errorf("pending: %w", err)
		}
		store.SubmitLive(tr)
	}
	if seed.Demo != nil {
		if _, err := store.UpdateDemoConfig(*seed.Demo); err != nil {
			return fmt.Errorf("demo config: %w", err)
		}
	}
	return nil
}

func advance(store *Store, id int64, si SeedImport) error {
	stage := si.Stage
	switch stage {
	case "", model.StageImported:
		return nil
	case model.StageConsolidated, model.StageMXMLGenerated, model.StagePushedToMurex:
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	c := criteria.CurrencyPair
	if si.Criteria != "" {
		parsed, err := criteria.Parse(si.Criteria)
		if err != nil {
			return err
		}
		c = parsed
	}
	if _, err := store.Consolidate(id, c); err != nil {
		return err
	}
	if stage == model.StageConsolidated {
		return nil
	}
	if _, err := store.GenerateMXML(id); err != nil {
		return err
	}
	if stage == model.StageMXMLGenerated {
		return nil
	}
	_, err := store.PushToMurex(id)
	return err
}
