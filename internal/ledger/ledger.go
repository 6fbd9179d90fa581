// Package ledger keeps account balances in step with the transactions that
// reference them. Balances are only ever moved by signed deltas; they are
// never re-derived from the transaction history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

// Sign selects whether an effect is applied or undone.
type Sign int

const (
	Apply   Sign = 1
	Reverse Sign = -1
)

// Effect returns the signed delta a transaction of the given type and
// amount has on its source account. TRANSFER debits the source only; the
// destination account is not credited.
func Effect(amount decimal.Decimal, typ models.TransactionType, sign Sign) decimal.Decimal {
	var d decimal.Decimal
	switch typ {
	case models.TransactionIncome:
		d = amount
	case models.TransactionExpense, models.TransactionTransfer:
		d = amount.Neg()
	default:
		return decimal.Zero
	}
	if sign == Reverse {
		return d.Neg()
	}
	return d
}

// ApplyEffect returns balance moved by the transaction's effect in the direction of sign.
func ApplyEffect(balance, amount decimal.Decimal, typ models.TransactionType, sign Sign) decimal.Decimal {
	return balance.Add(Effect(amount, typ, sign))
}

// ReverseEffect returns balance with the transaction's effect undone.
func ReverseEffect(balance, amount decimal.Decimal, typ models.TransactionType) decimal.Decimal {
	return ApplyEffect(balance, amount, typ, Reverse)
}

// Replay sums the effects of the given live transactions on accountID. The
// stored balance minus Replay is the account's opening balance when no
// drift has occurred.
func Replay(transactions []models.Transaction, accountID string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.AccountID != accountID {
			continue
		}
		total = total.Add(Effect(t.Amount, t.Type, Apply))
	}
	return total
}

// Store is the persistence the ledger needs. AdjustBalance must be a single
// conditional read-modify-write and return models.ErrVersionConflict when it
// loses a race; the ledger retries it.
//
// Transaction records are written conditionally too. InsertTransaction fails
// with models.ErrAlreadyExists when the ID is taken. ReplaceTransaction and
// DeleteTransaction only succeed while the record still carries the version
// GetTransaction returned, and report models.ErrVersionConflict otherwise.
type Store interface {
	GetAccount(ctx context.Context, ownerID, id string) (models.Account, error)
	AdjustBalance(ctx context.Context, ownerID, accountID string, delta decimal.Decimal) (decimal.Decimal, error)
	GetCategory(ctx context.Context, ownerID, id string) (models.Category, error)
	GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error)
	InsertTransaction(ctx context.Context, t models.Transaction) error
	ReplaceTransaction(ctx context.Context, t models.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id, version string) error
}

// Ledger sequences balance effects around transaction writes.
type Ledger struct {
	store   Store
	retry   RetryOptions
	metrics *metrics.Metrics
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRetryOptions overrides the conflict retry settings.
func WithRetryOptions(opts RetryOptions) Option {
	return func(l *Ledger) { l.retry = opts }
}

// WithMetrics records adjustments and conflicts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a Ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, retry: DefaultRetryOptions()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create validates t, applies its effect to the owning account and inserts
// it. If the insert fails the effect is undone; an ID that is already booked
// fails with models.ErrAlreadyExists.
func (l *Ledger) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}
	if err := l.checkReferences(ctx, t); err != nil {
		return models.Transaction{}, err
	}

	delta := Effect(t.Amount, t.Type, Apply)
	if err := l.adjust(ctx, t.OwnerID, t.AccountID, delta, "create"); err != nil {
		return models.Transaction{}, err
	}

	if err := l.store.InsertTransaction(ctx, t); err != nil {
		return models.Transaction{}, l.rollback(ctx, fmt.Errorf("failed to save transaction: %w", err),
			undo{t.OwnerID, t.AccountID, delta.Neg()})
	}

	slog.Info("transaction created",
		"transaction_id", t.ID,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount", t.Amount.String(),
	)
	return t, nil
}

// Update replaces the stored transaction with t. The old effect is reversed
// on the old account and the new effect applied on the new one; if any step
// fails the balances are restored. The replace is conditional on the record
// read at the start, so a concurrent update or delete makes this one fail
// with ErrWriteConflict.
func (l *Ledger) Update(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}
	old, err := l.store.GetTransaction(ctx, t.OwnerID, t.ID)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := l.checkReferences(ctx, t); err != nil {
		return models.Transaction{}, err
	}

	reversal := Effect(old.Amount, old.Type, Reverse)
	application := Effect(t.Amount, t.Type, Apply)

	var applied []undo
	if old.AccountID == t.AccountID {
		// One conditional write keeps the pair atomic on a single account.
		net := reversal.Add(application)
		if !net.IsZero() {
			if err := l.adjust(ctx, t.OwnerID, t.AccountID, net, "update"); err != nil {
				return models.Transaction{}, err
			}
			applied = append(applied, undo{t.OwnerID, t.AccountID, net.Neg()})
		}
	} else {
		if err := l.adjust(ctx, old.OwnerID, old.AccountID, reversal, "update"); err != nil {
			return models.Transaction{}, err
		}
		applied = append(applied, undo{old.OwnerID, old.AccountID, reversal.Neg()})

		if err := l.adjust(ctx, t.OwnerID, t.AccountID, application, "update"); err != nil {
			return models.Transaction{}, l.rollback(ctx, err, applied...)
		}
		applied = append(applied, undo{t.OwnerID, t.AccountID, application.Neg()})
	}

	t.Version = old.Version
	if err := l.store.ReplaceTransaction(ctx, t); err != nil {
		return models.Transaction{}, l.rollback(ctx, recordError("save", t.ID, err), applied...)
	}
	t.Version = ""

	slog.Info("transaction updated",
		"transaction_id", t.ID,
		"old_account_id", old.AccountID,
		"account_id", t.AccountID,
		"old_amount", old.Amount.String(),
		"amount", t.Amount.String(),
	)
	return t, nil
}

// Delete reverses the transaction's effect and removes it. If the removal
// fails the effect is re-applied. The removal is conditional on the record
// read at the start.
func (l *Ledger) Delete(ctx context.Context, ownerID, id string) error {
	t, err := l.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return err
	}

	reversal := Effect(t.Amount, t.Type, Reverse)
	if err := l.adjust(ctx, t.OwnerID, t.AccountID, reversal, "delete"); err != nil {
		return err
	}

	if err := l.store.DeleteTransaction(ctx, ownerID, id, t.Version); err != nil {
		return l.rollback(ctx, recordError("delete", id, err),
			undo{t.OwnerID, t.AccountID, reversal.Neg()})
	}

	slog.Info("transaction deleted", "transaction_id", id, "account_id", t.AccountID)
	return nil
}

func (l *Ledger) checkReferences(ctx context.Context, t models.Transaction) error {
	if _, err := l.store.GetAccount(ctx, t.OwnerID, t.AccountID); err != nil {
		return err
	}
	if _, err := l.store.GetCategory(ctx, t.OwnerID, t.CategoryID); err != nil {
		return err
	}
	if t.TransferAccountID != "" {
		if _, err := l.store.GetAccount(ctx, t.OwnerID, t.TransferAccountID); err != nil {
			return fmt.Errorf("transfer %w", err)
		}
	}
	return nil
}

func (l *Ledger) adjust(ctx context.Context, ownerID, accountID string, delta decimal.Decimal, event string) error {
	err := WithConflictRetry(ctx, l.retry, func() error {
		_, err := l.store.AdjustBalance(ctx, ownerID, accountID, delta)
		if errors.Is(err, models.ErrVersionConflict) {
			l.metrics.ConflictRetried()
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrWriteConflict) {
			l.metrics.ConflictExhausted()
		}
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}
	l.metrics.BalanceAdjusted(event)
	return nil
}

// recordError reports a failed conditional write of a transaction record.
// Losing the race to another writer, including one that deleted the record,
// surfaces as ErrWriteConflict.
func recordError(op, id string, err error) error {
	if errors.Is(err, models.ErrVersionConflict) || errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to %s transaction %s: %w: %w", op, id, ErrWriteConflict, err)
	}
	return fmt.Errorf("failed to %s transaction %s: %w", op, id, err)
}

type undo struct {
	ownerID   string
	accountID string
	delta     decimal.Decimal
}

// rollback undoes already-applied deltas in reverse order and returns cause,
// joined with any error hit while undoing.
func (l *Ledger) rollback(ctx context.Context, cause error, steps ...undo) error {
	errs := []error{cause}
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if err := l.adjust(ctx, s.ownerID, s.accountID, s.delta, "rollback"); err != nil {
			slog.Error("failed to roll back balance",
				"account_id", s.accountID,
				"delta", s.delta.String(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
