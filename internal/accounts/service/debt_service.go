package service

import (
	"context"
	"strings"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// DebtService answers the filtered debt listing.
type DebtService struct {
	debtRepo domain.DebtRepository
}

func NewDebtService(debtRepo domain.DebtRepository) *DebtService {
	return &DebtService{debtRepo: debtRepo}
}

func (s *DebtService) List(ctx context.Context, filter domain.DebtFilter, page domain.Page) ([]domain.Debt, int64, error) {
	if filter.MinBalance != nil && filter.MaxBalance != nil && filter.MinBalance.GreaterThan(*filter.MaxBalance) {
		// Valid but empty; skip the round trip.
		return []domain.Debt{}, 0, nil
	}
	return s.debtRepo.List(ctx, filter, page.Normalize())
}

// AgencyService manages collection agencies administratively.
type AgencyService struct {
	agencyRepo domain.AgencyRepository
}

func NewAgencyService(agencyRepo domain.AgencyRepository) *AgencyService {
	return &AgencyService{agencyRepo: agencyRepo}
}

func (s *AgencyService) Create(ctx context.Context, name string) (*domain.CollectionAgency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrAgencyNameRequired
	}
	agency := &domain.CollectionAgency{Name: name}
	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

func (s *AgencyService) List(ctx context.Context) ([]domain.CollectionAgency, error) {
	return s.agencyRepo.List(ctx)
}
