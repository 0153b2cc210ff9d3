package repo

import (
	"strings"

	"gorm.io/gorm"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// likeEscape is the LIKE escape character. Backslash is not portable to MySQL.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, `%`, likeEscape+`%`, `_`, likeEscape+`_`)

// FilterDebts is a GORM scope that ANDs together every filter set in f.
// Relations are matched through IN-subqueries rather than joins so a debt
// with several matching consumers is returned once.
func FilterDebts(f domain.DebtFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AgencyID != nil {
			db = db.Where("debts.client_id IN (SELECT clients.id FROM clients WHERE clients.agency_id = ?)", *f.AgencyID)
		}
		if f.MinBalance != nil {
			db = db.Where("debts.balance >= ?", *f.MinBalance)
		}
		if f.MaxBalance != nil {
			db = db.Where("debts.balance <= ?", *f.MaxBalance)
		}
		if f.Status != "" {
			db = db.Where("debts.status = ?", f.Status)
		}
		if f.ConsumerName != "" {
			// The needle is lowered in Go, so it folds fully. LOWER() on the
			// column is Unicode-aware on postgres and mysql, but sqlite only
			// folds ASCII: there "josé" misses a stored "JOSÉ".
			pattern := "%" + likeEscaper.Replace(strings.ToLower(f.ConsumerName)) + "%"
			db = db.Where(
				`debts.id IN (SELECT debt_consumers.debt_id FROM debt_consumers
				JOIN consumers ON consumers.id = debt_consumers.consumer_id
				WHERE LOWER(consumers.name) LIKE ? ESCAPE '!')`,
				pattern,
			)
		}
		return db
	}
}

// Paginate applies a normalized limit/offset window.
func Paginate(p domain.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p = p.Normalize()
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}
