package domain

import "github.com/shopspring/decimal"

// ImportSummary counts the outcome of one CSV import.
type ImportSummary struct {
	Created    int `json:"created"`
	Duplicated int `json:"duplicated"` // rows that reused an existing consumer
	Failed     int `json:"failed"`
}

// DebtFilter holds the optional listing filters. Nil or empty fields impose
// no constraint.
type DebtFilter struct {
	AgencyID     *int64
	MinBalance   *decimal.Decimal
	MaxBalance   *decimal.Decimal
	Status       string
	ConsumerName string
}

// Page is a limit/offset window over a result set.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)

// Normalize clamps the page to the allowed limits.
func (p Page) Normalize() Page {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
