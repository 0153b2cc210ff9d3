package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

type GormDebtRepo struct {
	db *gorm.DB
}

func NewDebtRepo(db *gorm.DB) *GormDebtRepo {
	return &GormDebtRepo{db: db}
}

// Create inserts the debt row and its debt_consumers links. Client and
// Consumers must already be stored; they are referenced, never upserted.
func (r *GormDebtRepo) Create(ctx context.Context, db *gorm.DB, d *domain.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return db.WithContext(ctx).Omit("Client", "Consumers.*").Create(d).Error
}

func (r *GormDebtRepo) List(ctx context.Context, filter domain.DebtFilter, page domain.Page) ([]domain.Debt, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Debt{}).
		Scopes(FilterDebts(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var debts []domain.Debt
	err := r.db.WithContext(ctx).
		Scopes(FilterDebts(filter), Paginate(page)).
		Preload("Client.Agency").
		Preload("Consumers", func(db *gorm.DB) *gorm.DB {
			return db.Order("consumers.id ASC")
		}).
		Order("debts.id ASC").
		Find(&debts).Error
	if err != nil {
		return nil, 0, err
	}
	return debts, total, nil
}
