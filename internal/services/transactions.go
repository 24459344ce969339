package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gagyebu/internal/core"
	"gagyebu/internal/fx"
	"gagyebu/internal/ledger"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

// RateResolver is the lookup the valuation path depends on. Satisfied
// by fx.Resolver.
type RateResolver interface {
	Resolve(ctx context.Context, from, to, date string) (fx.Rate, error)
}

// TransactionService owns the write path: validation, dual-currency
// valuation at entry time, and persistence.
type TransactionService struct {
	store    store.TransactionStore
	resolver RateResolver
	logger   *log.Logger
}

func NewTransactionService(s store.TransactionStore, resolver RateResolver, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:    s,
		resolver: resolver,
		logger:   logger.WithComponent(log.ComponentLedger),
	}
}

// TransactionInput is the user-supplied part of a transaction. The
// valuation fields (rate, KRW and TRY amounts) are derived here, except
// for KRWOverride which, when set, is stored verbatim.
type TransactionInput struct {
	Date            string
	Type            core.TransactionType
	CategoryID      *uuid.UUID
	PaymentMethodID *uuid.UUID
	Currency        string
	OriginalAmount  decimal.Decimal
	KRWOverride     *decimal.Decimal
	Content         string
	Memo            string
	ReceiptURL      string
}

// Create valuates and persists a new transaction for the owner.
func (s *TransactionService) Create(ctx context.Context, ownerID uuid.UUID, input TransactionInput) (core.Transaction, error) {
	t, err := s.build(ctx, ownerID, input)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.store.CreateTransaction(ctx, t)
}

// Update re-valuates the transaction from the edited input. The stored
// KRW and TRY amounts are frozen again at edit time; earlier values are
// discarded.
func (s *TransactionService) Update(ctx context.Context, id, ownerID uuid.UUID, input TransactionInput) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id, ownerID)
	if err != nil {
		return core.Transaction{}, err
	}

	t, err := s.build(ctx, ownerID, input)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Delete removes the transaction permanently. There is no soft delete
// or undo.
func (s *TransactionService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.store.DeleteTransaction(ctx, id, ownerID)
}

func (s *TransactionService) Get(ctx context.Context, id, ownerID uuid.UUID) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, ownerID)
}

func (s *TransactionService) build(ctx context.Context, ownerID uuid.UUID, input TransactionInput) (core.Transaction, error) {
	date, err := core.ParseDate(input.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	rateKRW, rateTRY, err := s.rates(ctx, input.Currency, date.String())
	if err != nil {
		return core.Transaction{}, err
	}

	valuation := ledger.Valuate(input.OriginalAmount, input.Currency, rateKRW, rateTRY, input.KRWOverride)

	t := core.Transaction{
		OwnerID:         ownerID,
		Date:            date,
		Type:            input.Type,
		CategoryID:      input.CategoryID,
		PaymentMethodID: input.PaymentMethodID,
		Currency:        input.Currency,
		OriginalAmount:  input.OriginalAmount,
		ExchangeRate:    rateKRW,
		KRWAmount:       valuation.KRWAmount,
		TRYAmount:       valuation.TRYAmount,
		Content:         input.Content,
		Memo:            input.Memo,
		ReceiptURL:      input.ReceiptURL,
		CreatedAt:       time.Now().UTC(),
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// rates fetches both conversion rates for the transaction date in
// parallel. The KRW rate falls back to 1 when the rate service is
// unreachable so the entry can still be saved; a failed TRY lookup
// yields rate 0, which the valuation turns into an absent TRY amount.
func (s *TransactionService) rates(ctx context.Context, currency, date string) (decimal.Decimal, decimal.Decimal, error) {
	var rateKRW, rateTRY decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.resolver.Resolve(gctx, currency, core.HomeCurrency, date)
		if err != nil {
			if !errors.Is(err, core.ErrRateUnavailable) {
				return err
			}
			s.logger.WarnContext(gctx, "Home rate unavailable, falling back to 1",
				log.FieldCurrency, currency, log.FieldRateDate, date, log.FieldError, err)
			rateKRW = decimal.NewFromInt(1)
			return nil
		}
		rateKRW = r.Rate
		return nil
	})
	g.Go(func() error {
		r, err := s.resolver.Resolve(gctx, currency, core.SecondaryCurrency, date)
		if err != nil {
			if !errors.Is(err, core.ErrRateUnavailable) {
				return err
			}
			s.logger.WarnContext(gctx, "Secondary rate unavailable, storing no TRY amount",
				log.FieldCurrency, currency, log.FieldRateDate, date, log.FieldError, err)
			rateTRY = decimal.Zero
			return nil
		}
		rateTRY = r.Rate
		return nil
	})
	if err := g.Wait(); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return rateKRW, rateTRY, nil
}
