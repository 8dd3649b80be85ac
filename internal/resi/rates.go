package resi

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// RateLookup finds the unit rate of a tariff. The first rate row wins;
// conflicting rates are logged and counted.
type RateLookup struct {
	store  ReferenceStore
	probe  int32
	logger zerolog.Logger
}

// NewRateLookup constructs a RateLookup from the resolver configuration.
func NewRateLookup(cfg ResolverConfig) *RateLookup {
	return &RateLookup{store: cfg.Store, probe: cfg.probe(), logger: cfg.Logger}
}

// Lookup returns the unit rate for key. A tariff without a rate yields
// (nil, nil): the line is still written, without compensation.
func (l *RateLookup) Lookup(ctx context.Context, key TariffKey) (*decimal.Decimal, error) {
	tariffID := key.String()
	rates, err := l.store.ListTariffRates(ctx, dbgen.ListTariffRatesParams{TariffID: tariffID, LimitValue: l.probe})
	if err != nil {
		return nil, persistence("lookup rate", err)
	}
	if len(rates) == 0 {
		countRateMiss()
		return nil, nil
	}
	if len(rates) > 1 {
		countAmbiguity(KindTariff)
		values := make([]string, 0, len(rates))
		for _, n := range rates {
			if d := repo.Decimal(n); d != nil {
				values = append(values, d.String())
			}
		}
		log := obs.LoggerFrom(ctx, l.logger)
		log.Warn().Str("tariff_id", tariffID).Strs("rates", values).Msg("tariff has several rates, using the first")
	}
	return repo.Decimal(rates[0]), nil
}
