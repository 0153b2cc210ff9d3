package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

type GormAgencyRepo struct {
	db *gorm.DB
}

func NewAgencyRepo(db *gorm.DB) *GormAgencyRepo {
	return &GormAgencyRepo{db: db}
}

func (r *GormAgencyRepo) FindByID(ctx context.Context, id int64) (*domain.CollectionAgency, error) {
	var agency domain.CollectionAgency
	if err := r.db.WithContext(ctx).First(&agency, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAgencyNotFound
		}
		return nil, err
	}
	return &agency, nil
}

// FindDefault picks the oldest agency. Ids are assigned in insertion order.
func (r *GormAgencyRepo) FindDefault(ctx context.Context) (*domain.CollectionAgency, error) {
	var agency domain.CollectionAgency
	if err := r.db.WithContext(ctx).Order("id ASC").First(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoDefaultAgency
		}
		return nil, err
	}
	return &agency, nil
}

func (r *GormAgencyRepo) Create(ctx context.Context, agency *domain.CollectionAgency) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(agency).Error
}

func (r *GormAgencyRepo) List(ctx context.Context) ([]domain.CollectionAgency, error) {
	var agencies []domain.CollectionAgency
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&agencies).Error; err != nil {
		return nil, err
	}
	return agencies, nil
}

// ---------------------------------------------------------

type GormClientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) *GormClientRepo {
	return &GormClientRepo{db: db}
}

// GetOrCreate relies on the unique index on reference_no:
// INSERT ... ON CONFLICT (reference_no) DO NOTHING, then read the winner back.
func (r *GormClientRepo) GetOrCreate(ctx context.Context, db *gorm.DB, c *domain.Client) (bool, error) {
	return getOrCreate(ctx, db, c, "reference_no", c.ReferenceNo)
}

// ---------------------------------------------------------

type GormConsumerRepo struct {
	db *gorm.DB
}

func NewConsumerRepo(db *gorm.DB) *GormConsumerRepo {
	return &GormConsumerRepo{db: db}
}

func (r *GormConsumerRepo) GetOrCreate(ctx context.Context, db *gorm.DB, c *domain.Consumer) (bool, error) {
	return getOrCreate(ctx, db, c, "ssn", c.SSN)
}

// getOrCreate inserts row unless keyColumn already holds key. When the insert
// loses (RowsAffected == 0) the stored row is loaded into row instead.
// Concurrent callers never see a uniqueness violation.
func getOrCreate[T any](ctx context.Context, db *gorm.DB, row *T, keyColumn string, key string) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: keyColumn}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	var existing T
	if err := db.WithContext(ctx).Where(keyColumn+" = ?", key).First(&existing).Error; err != nil {
		return false, err
	}
	*row = existing
	return false, nil
}
