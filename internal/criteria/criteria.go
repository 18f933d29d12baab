// Package criteria maps the consolidation toggles to the grouping value the
// backend expects.
package criteria

import (
	"errors"
	"fmt"
	"strings"
)

// Criteria is the literal grouping value submitted to the consolidate endpoint.
type Criteria string

const (
	CurrencyPair                Criteria = "CURRENCY_PAIR"
	Counterparty                Criteria = "COUNTERPARTY"
	Book                        Criteria = "BOOK"
	CurrencyPairAndCounterparty Criteria = "CURRENCY_PAIR_AND_COUNTERPARTY"
	CurrencyPairAndBook         Criteria = "CURRENCY_PAIR_AND_BOOK"
	CounterpartyAndBook         Criteria = "COUNTERPARTY_AND_BOOK"
	AllCriteria                 Criteria = "ALL_CRITERIA"
)

// ErrNoCriteria is returned when no toggle is set; submission must be blocked.
var ErrNoCriteria = errors.New("no criteria selected")

const (
	bitCurrencyPair = 1 << iota
	bitCounterparty
	bitBook
)

// byMask is indexed by the toggle bitmask (book, counterparty, currency pair).
// Index 0 is the invalid empty case.
var byMask = [8]Criteria{
	"",
	CurrencyPair,                // 001
	Counterparty,                // 010
	CurrencyPairAndCounterparty, // 011
	Book,                        // 100
	CurrencyPairAndBook,         // 101
	CounterpartyAndBook,         // 110
	AllCriteria,                 // 111
}

// All lists the seven valid criteria.
func All() []Criteria {
	return []Criteria{
		CurrencyPair, Counterparty, Book,
		CurrencyPairAndCounterparty, CurrencyPairAndBook, CounterpartyAndBook,
		AllCriteria,
	}
}

// Combine maps three independent toggles to a criteria value.
func Combine(currencyPair, counterparty, book bool) (Criteria, error) {
	mask := 0
	if currencyPair {
		mask |= bitCurrencyPair
	}
	if counterparty {
		mask |= bitCounterparty
	}
	if book {
		mask |= bitBook
	}
	if mask == 0 {
		return "", ErrNoCriteria
	}
	return byMask[mask], nil
}

// Parse validates a criteria literal.
func Parse(s string) (Criteria, error) {
	c := Criteria(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range All() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown consolidation criteria %q", s)
}

// Selection returns the toggles that produce c. It is the inverse of Combine.
func (c Criteria) Selection() Selection {
	for mask, v := range byMask {
		if mask != 0 && v == c {
			return Selection{
				CurrencyPair: mask&bitCurrencyPair != 0,
				Counterparty: mask&bitCounterparty != 0,
				Book:         mask&bitBook != 0,
			}
		}
	}
	return Selection{}
}

// Label returns the short display form, e.g. "Currency Pair + Book".
func (c Criteria) Label() string {
	switch c {
	case AllCriteria:
		return "All Criteria"
	case "":
		return ""
	}
	names := c.Selection().names()
	if len(names) == 0 {
		return strings.ReplaceAll(string(c), "_", " ")
	}
	return strings.Join(names, " + ")
}

func (c Criteria) String() string { return string(c) }

// Field identifies one consolidation toggle.
type Field int

const (
	FieldCurrencyPair Field = iota
	FieldCounterparty
	FieldBook
)

// Fields lists the toggles in display order.
var Fields = []Field{FieldCurrencyPair, FieldCounterparty, FieldBook}

func (f Field) String() string {
	switch f {
	case FieldCurrencyPair:
		return "Currency Pair"
	case FieldCounterparty:
		return "Counterparty"
	case FieldBook:
		return "Book"
	default:
		return "unknown"
	}
}

// Selection is the toggle state of the consolidation form.
type Selection struct {
	CurrencyPair bool
	Counterparty bool
	Book         bool
}

// DefaultSelection is the state a fresh form starts in.
func DefaultSelection() Selection {
	return Selection{CurrencyPair: true}
}

// Toggle flips one field.
func (s Selection) Toggle(f Field) Selection {
	switch f {
	case FieldCurrencyPair:
		s.CurrencyPair = !s.CurrencyPair
	case FieldCounterparty:
		s.Counterparty = !s.Counterparty
	case FieldBook:
		s.Book = !s.Book
	}
	return s
}

// Enabled reports whether a field is on.
func (s Selection) Enabled(f Field) bool {
	switch f {
	case FieldCurrencyPair:
		return s.CurrencyPair
	case FieldCounterparty:
		return s.Counterparty
	case FieldBook:
		return s.Book
	}
	return false
}

// Submittable reports whether at least one toggle is on.
func (s Selection) Submittable() bool {
	return s.CurrencyPair || s.Counterparty || s.Book
}

// Criteria combines the selection.
func (s Selection) Criteria() (Criteria, error) {
	return Combine(s.CurrencyPair, s.Counterparty, s.Book)
}

// Preview describes the grouping in words.
func (s Selection) Preview() string {
	names := s.names()
	switch len(names) {
	case 0:
		return "No criteria selected"
	case 1:
		return "Group by " + names[0]
	case 2:
		return fmt.Sprintf("Group by %s and %s", names[0], names[1])
	default:
		return fmt.Sprintf("Group by %s, %s, and %s", names[0], names[1], names[2])
	}
}

func (s Selection) names() []string {
	var names []string
	for _, f := range Fields {
		if s.Enabled(f) {
			names = append(names, f.String())
		}
	}
	return names
}
