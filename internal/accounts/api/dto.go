package api

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// ListDebtsQuery holds the listing query string. Unknown parameters are
// ignored by the binder.
type ListDebtsQuery struct {
	AgencyID     string `form:"agency_id" binding:"omitempty,number"`
	MinBalance   string `form:"min_balance" binding:"omitempty,numeric"`
	MaxBalance   string `form:"max_balance" binding:"omitempty,numeric"`
	Status       string `form:"status"`
	ConsumerName string `form:"consumer_name"`
	Limit        int    `form:"limit" binding:"omitempty,min=0"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

func (q ListDebtsQuery) toFilter() (domain.DebtFilter, error) {
	f := domain.DebtFilter{
		Status:       q.Status,
		ConsumerName: q.ConsumerName,
	}
	if q.AgencyID != "" {
		id, err := strconv.ParseInt(q.AgencyID, 10, 64)
		if err != nil {
			return f, fmt.Errorf("agency_id: %w", err)
		}
		f.AgencyID = &id
	}
	if q.MinBalance != "" {
		v, err := decimal.NewFromString(q.MinBalance)
		if err != nil {
			return f, fmt.Errorf("min_balance: %w", err)
		}
		f.MinBalance = &v
	}
	if q.MaxBalance != "" {
		v, err := decimal.NewFromString(q.MaxBalance)
		if err != nil {
			return f, fmt.Errorf("max_balance: %w", err)
		}
		f.MaxBalance = &v
	}
	return f, nil
}

func (q ListDebtsQuery) page() domain.Page {
	return domain.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

type ConsumerResp struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsEntity bool   `json:"is_entity"`
}

// DebtResp is one listing entry. Balance keeps two decimals ("100.50");
// Client is the client id.
type DebtResp struct {
	ID        int64          `json:"id"`
	Balance   string         `json:"balance"`
	Status    string         `json:"status"`
	Client    int64          `json:"client"`
	Consumers []ConsumerResp `json:"consumers"`
}

func newDebtResp(d domain.Debt) DebtResp {
	consumers := make([]ConsumerResp, 0, len(d.Consumers))
	for _, c := range d.Consumers {
		consumers = append(consumers, ConsumerResp{ID: c.ID, Name: c.Name, IsEntity: c.IsEntity})
	}
	return DebtResp{
		ID:        d.ID,
		Balance:   d.Balance.StringFixed(2),
		Status:    d.Status,
		Client:    d.ClientID,
		Consumers: consumers,
	}
}

type ListDebtsResp struct {
	Count    int64      `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []DebtResp `json:"results"`
}

type UploadResp struct {
	Status  string               `json:"status"`
	Data    domain.ImportSummary `json:"data"`
	Message string               `json:"message"`
}

type CreateAgencyReq struct {
	Name string `json:"name" binding:"required,max=255"`
}

type AgencyResp struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
