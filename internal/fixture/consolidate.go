package fixture

import (
	"sort"
	"strings"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/shopspring/decimal"
)

const mixed = "MIXED"

func groupKey(t model.LiveTrade, sel criteria.Selection) []string {
	var parts []string
	if sel.CurrencyPair {
		parts = append(parts, t.CurrencyPair)
	}
	if sel.Counterparty {
		parts = append(parts, t.Counterparty)
	}
	if sel.Book {
		parts = append(parts, t.Book)
	}
	return parts
}

// Consolidate groups trades by the fields c selects and by side. Each group
// becomes one trade whose quantity is the group sum and whose price is the
// arithmetic mean rounded to six places. Output is ordered by group key.
func Consolidate(trades []model.LiveTrade, c criteria.Criteria) []model.LiveTrade {
	sel := c.Selection()
	groups := make(map[string][]model.LiveTrade)
	for _, t := range trades {
		key := strings.Join(append(groupKey(t, sel), strings.ToUpper(t.Side)), "|")
		groups[key] = append(groups[key], t)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.LiveTrade, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		first := g[0]
		qty := decimal.Zero
		sum := decimal.Zero
		for _, t := range g {
			qty = qty.Add(t.Quantity)
			sum = sum.Add(t.Price)
		}
		merged := model.LiveTrade{
			TradeID:      "CONS-" + strings.ReplaceAll(k, "|", "-"),
			CurrencyPair: mixed,
			Side:         strings.ToUpper(first.Side),
			Counterparty: mixed,
			Book:         mixed,
			Quantity:     qty,
			Price:        sum.Div(decimal.NewFromInt(int64(len(g)))).Round(6),
			Timestamp:    first.Timestamp,
		}
		if sel.CurrencyPair {
			merged.CurrencyPair = first.CurrencyPair
		}
		if sel.Counterparty {
			merged.Counterparty = first.Counterparty
		}
		if sel.Book {
			merged.Book = first.Book
		}
		out = append(out, merged)
	}
	return out
}
