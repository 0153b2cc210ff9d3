package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionAgency performs debt collection on behalf of its clients.
// Table: collection_agencies
type CollectionAgency struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(255);not null;index"`

	Clients []Client `gorm:"foreignKey:AgencyID"`
}

func (CollectionAgency) TableName() string {
	return "collection_agencies"
}

// Client is an organisation that hires an agency to collect its debts.
// ReferenceNo is the external identifier used to match import rows.
type Client struct {
	ID          int64            `gorm:"primaryKey;autoIncrement"`
	Name        string           `gorm:"type:varchar(255);not null"`
	AgencyID    int64            `gorm:"not null;index"`
	Agency      CollectionAgency `gorm:"foreignKey:AgencyID"`
	ReferenceNo string           `gorm:"uniqueIndex;type:varchar(64);not null"`

	Debts []Debt `gorm:"foreignKey:ClientID"`
}

func (Client) TableName() string {
	return "clients"
}

// Consumer is the person or entity owing a debt.
type Consumer struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"type:varchar(255);not null;index"`
	Address  string `gorm:"type:text"`
	SSN      string `gorm:"column:ssn;uniqueIndex;type:varchar(11);not null"` // e.g. 123-45-6789
	IsEntity bool   `gorm:"not null;default:false"`
}

func (Consumer) TableName() string {
	return "consumers"
}

// Debt is an amount owed to a client by one or more consumers.
type Debt struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	Balance           decimal.Decimal `gorm:"type:decimal(10,2);not null;index"` // > 0
	Status            string          `gorm:"type:varchar(32);not null;index"`
	ClientReferenceNo string          `gorm:"type:varchar(64);not null;index"` // copy of Client.ReferenceNo
	CreatedAt         time.Time       `gorm:"index"`

	ClientID  int64      `gorm:"not null;index"`
	Client    Client     `gorm:"foreignKey:ClientID"`
	Consumers []Consumer `gorm:"many2many:debt_consumers;"`
}

func (Debt) TableName() string {
	return "debts"
}

// BalanceScale is the number of decimal places the balance column keeps.
const BalanceScale = 2

// Validate checks the invariants that must hold before a debt is persisted.
// The balance is judged at the stored scale, so 0.004 is not positive.
func (d *Debt) Validate() error {
	if d.Balance.Round(BalanceScale).LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveBalance
	}
	return nil
}

// Models lists every persisted entity, in migration order.
func Models() []interface{} {
	return []interface{}{
		&CollectionAgency{},
		&Client{},
		&Consumer{},
		&Debt{},
	}
}
