package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// ImportLocker serialises imports. Acquire returns domain.ErrImportBusy when
// another import is running.
type ImportLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// ImportService turns uploaded debt files into clients, consumers and debts.
type ImportService struct {
	db           *gorm.DB // row transactions
	agencyRepo   domain.AgencyRepository
	clientRepo   domain.ClientRepository
	consumerRepo domain.ConsumerRepository
	debtRepo     domain.DebtRepository
	locker       ImportLocker
	logger       *zap.Logger
}

func NewImportService(
	db *gorm.DB,
	agencyRepo domain.AgencyRepository,
	clientRepo domain.ClientRepository,
	consumerRepo domain.ConsumerRepository,
	debtRepo domain.DebtRepository,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		db:           db,
		agencyRepo:   agencyRepo,
		clientRepo:   clientRepo,
		consumerRepo: consumerRepo,
		debtRepo:     debtRepo,
		logger:       logger,
	}
}

// WithLocker enables the import lock. A nil locker leaves imports unserialised.
func (s *ImportService) WithLocker(l ImportLocker) *ImportService {
	s.locker = l
	return s
}

type rowOutcome int

const (
	rowCreated rowOutcome = iota
	rowReusedConsumer
	rowFailed
)

// importRun caches agency lookups for the duration of one file.
type importRun struct {
	agencies      map[string]*domain.CollectionAgency
	defaultAgency *domain.CollectionAgency
}

// Import processes every row of the CSV document in r.
//
// Rows whose agency cannot be resolved, or whose balance is not positive,
// are counted as failed and leave nothing behind. Each accepted row is
// committed in its own transaction. A structural error (bad CSV, missing
// column, unparsable balance, storage failure) stops the import and is
// returned; rows committed before it stay committed.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (domain.ImportSummary, error) {
	var summary domain.ImportSummary

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx)
		if err != nil {
			return summary, err
		}
		defer release()
	}

	rows, err := parseDebtRows(r)
	if err != nil {
		return summary, err
	}

	run := &importRun{agencies: make(map[string]*domain.CollectionAgency)}
	for i, row := range rows {
		line := i + 2 // header is line 1

		outcome, err := s.importRow(ctx, run, line, row)
		if err != nil {
			s.logger.Error("csv import aborted",
				zap.Int("line", line),
				zap.Int("created", summary.Created),
				zap.Int("failed", summary.Failed),
				zap.Error(err),
			)
			return summary, err
		}

		switch outcome {
		case rowFailed:
			summary.Failed++
		case rowReusedConsumer:
			summary.Created++
			summary.Duplicated++
		default:
			summary.Created++
		}
	}

	s.logger.Info("csv import finished",
		zap.Int("rows", len(rows)),
		zap.Int("created", summary.Created),
		zap.Int("duplicated", summary.Duplicated),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *ImportService) importRow(ctx context.Context, run *importRun, line int, row debtRow) (rowOutcome, error) {
	log := s.logger.With(
		zap.Int("line", line),
		zap.String("client_reference_no", row.ClientReferenceNo),
	)

	// 1. Agency: explicit id, else the default agency.
	agency, err := s.resolveAgency(ctx, run, row.AgencyID)
	if errors.Is(err, domain.ErrAgencyNotFound) || errors.Is(err, domain.ErrNoDefaultAgency) {
		log.Warn("skipping row: agency not resolved", zap.String("agency_id", row.AgencyID), zap.Error(err))
		return rowFailed, nil
	}
	if err != nil {
		return 0, fmt.Errorf("line %d: resolving agency: %w", line, err)
	}

	// 2. Balance. Garbage is structural, a non-positive number is a row error.
	balance, err := decimal.NewFromString(row.Balance)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w %q", line, domain.ErrInvalidAmount, row.Balance)
	}
	debt := &domain.Debt{
		Balance: balance.Round(domain.BalanceScale),
		Status:  row.Status,
	}
	if err := debt.Validate(); err != nil {
		log.Warn("skipping row: invalid debt", zap.String("balance", row.Balance), zap.Error(err))
		return rowFailed, nil
	}

	// 3. Client, consumer and debt commit together.
	var clientCreated, consumerCreated bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client := &domain.Client{
			Name:        "Client " + row.ClientReferenceNo,
			AgencyID:    agency.ID,
			ReferenceNo: row.ClientReferenceNo,
		}
		if clientCreated, err = s.clientRepo.GetOrCreate(ctx, tx, client); err != nil {
			return fmt.Errorf("resolving client: %w", err)
		}

		consumer := &domain.Consumer{
			Name:     row.ConsumerName,
			Address:  row.ConsumerAddress,
			SSN:      row.SSN,
			IsEntity: false,
		}
		if consumerCreated, err = s.consumerRepo.GetOrCreate(ctx, tx, consumer); err != nil {
			return fmt.Errorf("resolving consumer: %w", err)
		}

		debt.ClientID = client.ID
		debt.ClientReferenceNo = client.ReferenceNo
		debt.Consumers = []domain.Consumer{*consumer}
		if err := s.debtRepo.Create(ctx, tx, debt); err != nil {
			return fmt.Errorf("creating debt: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", line, err)
	}

	if !clientCreated {
		log.Debug("reused existing client")
	}
	if !consumerCreated {
		log.Info("reused existing consumer", zap.Int64("debt_id", debt.ID))
		return rowReusedConsumer, nil
	}
	return rowCreated, nil
}

func (s *ImportService) resolveAgency(ctx context.Context, run *importRun, rawID string) (*domain.CollectionAgency, error) {
	if rawID == "" {
		if run.defaultAgency == nil {
			agency, err := s.agencyRepo.FindDefault(ctx)
			if err != nil {
				return nil, err
			}
			run.defaultAgency = agency
		}
		return run.defaultAgency, nil
	}

	if agency, ok := run.agencies[rawID]; ok {
		return agency, nil
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an id", domain.ErrAgencyNotFound, rawID)
	}
	agency, err := s.agencyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	run.agencies[rawID] = agency
	return agency, nil
}
