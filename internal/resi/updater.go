package resi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/lock"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// Locker serialises work on a key. lock.Locker satisfies it.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Updater rewrites one stored line and re-derives its tariff and compensation.
type Updater struct {
	pipeline Pipeline
	tx       Transactor
	locker   Locker
	lockTTL  time.Duration
	logger   zerolog.Logger
}

// NewUpdater constructs an Updater. locker may be nil.
func NewUpdater(p Pipeline, tx Transactor, locker Locker, lockTTL time.Duration, logger zerolog.Logger) *Updater {
	return &Updater{pipeline: p, tx: tx, locker: locker, lockTTL: lockTTL, logger: logger}
}

// Update replaces the editable fields of line id. Every derived field is
// recomputed from the new values; stored derived values are never reused.
func (u *Updater) Update(ctx context.Context, id int64, in UpdateInput) (ReturnLine, error) {
	if errs := checkStruct(0, in); len(errs) > 0 {
		countUpdate("rejected")
		return ReturnLine{}, invalid(errs...)
	}

	ctx, span := obs.StartSpan(ctx, "resi.update", attribute.Int64("resi.return_line_id", id))
	defer span.End()

	var out ReturnLine
	run := func(ctx context.Context) error {
		var err error
		out, err = u.update(ctx, id, in)
		return err
	}
	var err error
	if u.locker != nil {
		err = u.locker.WithLock(ctx, lock.ReturnLineKey(id), u.lockTTL, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		obs.SpanError(span, err)
		countUpdate(updateOutcome(err))
		return ReturnLine{}, err
	}
	countUpdate("ok")
	return out, nil
}

func (u *Updater) update(ctx context.Context, id int64, in UpdateInput) (ReturnLine, error) {
	var updated dbgen.ReturnLine
	err := u.tx.InTx(ctx, func(s Store) error {
		if _, err := s.GetReturnLineForUpdate(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReturnLineNotFound
			}
			return persistence("load return line", err)
		}

		customer, err := u.pipeline.Customers.Resolve(ctx, in.CustomerCode)
		if err != nil {
			return err
		}
		product, err := u.pipeline.Products.Resolve(ctx, in.ProductCode)
		if err != nil {
			return err
		}

		depot := strings.TrimSpace(in.Depot)
		if depot == "" {
			depot, err = s.FindDepotByDivision(ctx, repo.Text(customer.Division))
			if errors.Is(err, pgx.ErrNoRows) || (err == nil && strings.TrimSpace(depot) == "") {
				return invalid(LineError{Field: "depot", Reason: "no depot known for division " + customer.Division})
			}
			if err != nil {
				return persistence("resolve depot", err)
			}
		}

		p, err := u.pipeline.price(ctx, customer, product, in.Quantity, nil)
		if err != nil {
			return err
		}

		returnDate, _ := repo.ParseDate(in.ReferenceDate)
		pickupDate, _ := repo.ParseDate(in.PickupDate)
		updated, err = s.UpdateReturnLine(ctx, dbgen.UpdateReturnLineParams{
			ID:                 id,
			ReferenceID:        repo.Text(in.ReferenceID),
			ReturnDate:         repo.Date(returnDate),
			DocumentNumber:     repo.Text(in.DocumentNumber),
			CustomerCode:       customer.Code,
			Carrier:            repo.Text(in.Carrier),
			ProductCode:        product.Code,
			ProductDescription: textOrNull(product.Description),
			Depot:              depot,
			Quantity:           in.Quantity,
			PickupDate:         repo.Date(pickupDate),
			TariffID:           p.key.String(),
			UnitRate:           repo.Numeric(p.rate),
			Compensation:       repo.Numeric(p.compensation),
		})
		if err != nil {
			return persistence("update return line", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReturnLineNotFound) {
			return ReturnLine{}, err
		}
		var verr *ValidationError
		var miss *ResolutionMiss
		if errors.As(err, &verr) || errors.As(err, &miss) {
			return ReturnLine{}, err
		}
		return ReturnLine{}, persistence("update return line", err)
	}

	log := obs.LoggerFrom(ctx, u.logger)
	log.Info().Int64("id", id).Str("tariff_id", updated.TariffID).Msg("return line updated")
	return toReturnLine(updated), nil
}

func updateOutcome(err error) string {
	switch {
	case errors.Is(err, ErrReturnLineNotFound):
		return "not_found"
	case errors.Is(err, lock.ErrNotAcquired):
		return "locked"
	}
	var verr *ValidationError
	var miss *ResolutionMiss
	if errors.As(err, &verr) || errors.As(err, &miss) {
		return "rejected"
	}
	return "error"
}
