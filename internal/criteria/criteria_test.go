package criteria

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCombineTable(t *testing.T) {
	tests := []struct {
		a, b, c bool
		want    Criteria
	}{
		{true, true, true, AllCriteria},
		{true, true, false, CurrencyPairAndCounterparty},
		{true, false, true, CurrencyPairAndBook},
		{false, true, true, CounterpartyAndBook},
		{true, false, false, CurrencyPair},
		{false, true, false, Counterparty},
		{false, false, true, Book},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			got, err := Combine(tt.a, tt.b, tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombineRejectsEmpty(t *testing.T) {
	got, err := Combine(false, false, false)
	assert.True(t, errors.Is(err, ErrNoCriteria))
	assert.Empty(t, got)
}

func TestCombineIsBijective(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sel := Selection{
			CurrencyPair: rapid.Bool().Draw(t, "currencyPair"),
			Counterparty: rapid.Bool().Draw(t, "counterparty"),
			Book:         rapid.Bool().Draw(t, "book"),
		}

		c, err := sel.Criteria()
		if !sel.Submittable() {
			if !errors.Is(err, ErrNoCriteria) {
				t.Fatalf("empty selection: err = %v, want ErrNoCriteria", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("Criteria(%+v): %v", sel, err)
		}
		if back := c.Selection(); back != sel {
			t.Fatalf("round trip %+v -> %s -> %+v", sel, c, back)
		}
	})
}

func TestAllCriteriaDistinct(t *testing.T) {
	seen := map[Criteria]bool{}
	for _, c := range All() {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true

		parsed, err := Parse(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Len(t, seen, 7)
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("BY_TRADER")
	assert.Error(t, err)

	got, err := Parse(" currency_pair ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyPair, got)
}

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection()
	c, err := sel.Criteria()
	require.NoError(t, err)
	assert.Equal(t, CurrencyPair, c)
}

func TestToggleAndPreview(t *testing.T) {
	sel := DefaultSelection()
	assert.Equal(t, "Group by Currency Pair", sel.Preview())

	sel = sel.Toggle(FieldBook)
	assert.Equal(t, "Group by Currency Pair and Book", sel.Preview())

	sel = sel.Toggle(FieldCounterparty)
	assert.Equal(t, "Group by Currency Pair, Counterparty, and Book", sel.Preview())

	sel = Selection{}
	assert.False(t, sel.Submittable())
	assert.Equal(t, "No criteria selected", sel.Preview())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Currency Pair + Book", CurrencyPairAndBook.Label())
	assert.Equal(t, "Counterparty", Counterparty.Label())
	assert.Equal(t, "All Criteria", AllCriteria.Label())
	assert.Equal(t, "BY TRADER", Criteria("BY_TRADER").Label())
}
