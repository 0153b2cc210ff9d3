package domain

import (
	"context"

	"gorm.io/gorm"
)

// AgencyRepository is the storage port for collection agencies.
type AgencyRepository interface {
	// FindByID returns ErrAgencyNotFound when no agency has the id.
	FindByID(ctx context.Context, id int64) (*CollectionAgency, error)

	// FindDefault returns the first agency by insertion order, or
	// ErrNoDefaultAgency when there is none.
	FindDefault(ctx context.Context) (*CollectionAgency, error)

	Create(ctx context.Context, agency *CollectionAgency) error
	List(ctx context.Context) ([]CollectionAgency, error)
}

// ClientRepository is the storage port for clients.
type ClientRepository interface {
	// GetOrCreate atomically inserts c unless a client with the same
	// ReferenceNo exists. On return c holds the stored row; created reports
	// whether it was inserted by this call. Writes go through db so callers
	// can run it inside a transaction.
	GetOrCreate(ctx context.Context, db *gorm.DB, c *Client) (created bool, err error)
}

// ConsumerRepository is the storage port for consumers, keyed by SSN.
type ConsumerRepository interface {
	GetOrCreate(ctx context.Context, db *gorm.DB, c *Consumer) (created bool, err error)
}

// DebtRepository is the storage port for debts.
type DebtRepository interface {
	// Create inserts the debt and links the consumers it carries.
	Create(ctx context.Context, db *gorm.DB, d *Debt) error

	// List returns the page of debts matching every filter, with Client,
	// Client.Agency and Consumers loaded, plus the total match count.
	List(ctx context.Context, filter DebtFilter, page Page) ([]Debt, int64, error)
}
