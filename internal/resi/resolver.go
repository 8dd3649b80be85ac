package resi

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// DefaultAmbiguityProbe is how many distinct reference variants a lookup
// fetches to detect conflicting rows.
const DefaultAmbiguityProbe int32 = 5

// ResolverConfig groups resolver dependencies.
type ResolverConfig struct {
	Store          ReferenceStore
	Cache          *Cache
	AmbiguityProbe int32
	Logger         zerolog.Logger
}

func (c ResolverConfig) probe() int32 {
	if c.AmbiguityProbe < 1 {
		return DefaultAmbiguityProbe
	}
	return c.AmbiguityProbe
}

// CustomerResolver maps a customer code to its division and rate class.
//
// The first history row wins: profiles are ordered by their earliest history
// id. When more than one (division, rate_class) pair exists the conflict is
// logged and counted, and the first pair is still returned.
type CustomerResolver struct {
	cfg ResolverConfig
}

// NewCustomerResolver constructs a CustomerResolver.
func NewCustomerResolver(cfg ResolverConfig) *CustomerResolver {
	return &CustomerResolver{cfg: cfg}
}

// Resolve looks up code exactly as given. A miss returns a *ResolutionMiss
// wrapping ErrCustomerNotFound.
func (r *CustomerResolver) Resolve(ctx context.Context, code string) (Customer, error) {
	if strings.TrimSpace(code) == "" {
		return Customer{}, invalid(LineError{Field: "customer_code", Reason: "is required"})
	}
	log := obs.LoggerFrom(ctx, r.cfg.Logger)

	var cached Customer
	if ok, err := r.cfg.Cache.GetJSON(ctx, customerCacheKey(code), &cached); err != nil {
		log.Warn().Err(err).Str("customer_code", code).Msg("reference cache read failed")
	} else if ok {
		return cached, nil
	}

	rows, err := r.cfg.Store.ListCustomerProfiles(ctx, dbgen.ListCustomerProfilesParams{
		CustomerCode: code,
		LimitValue:   r.cfg.probe(),
	})
	if err != nil {
		return Customer{}, persistence("resolve customer", err)
	}
	if len(rows) == 0 {
		countMiss(KindCustomer)
		return Customer{}, &ResolutionMiss{Kind: KindCustomer, Code: code}
	}
	if len(rows) > 1 {
		countAmbiguity(KindCustomer)
		variants := make([]string, 0, len(rows))
		for _, row := range rows {
			variants = append(variants, row.Division+"/"+row.RateClass)
		}
		log.Warn().
			Str("customer_code", code).
			Strs("variants", variants).
			Msg("customer maps to several division/rate class pairs, using the first")
	}

	first := rows[0]
	c := Customer{
		Code:        code,
		Division:    first.Division,
		RateClass:   first.RateClass,
		DisplayName: repo.TextPtr(first.CustomerName),
	}
	if err := r.cfg.Cache.SetJSON(ctx, customerCacheKey(code), c); err != nil {
		log.Warn().Err(err).Str("customer_code", code).Msg("reference cache write failed")
	}
	return c, nil
}

// NormalizeProductCode trims and upper-cases a product code.
func NormalizeProductCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductResolver maps a product code to its class and description, treating
// whitespace and case variants of a stored code as one product.
type ProductResolver struct {
	cfg ResolverConfig
}

// NewProductResolver constructs a ProductResolver.
func NewProductResolver(cfg ResolverConfig) *ProductResolver {
	return &ProductResolver{cfg: cfg}
}

// Resolve tries an exact match on the normalised code, then a prefix match.
// Within a group the shortest stored variant is representative. A product
// without a class cannot be priced and counts as a miss.
func (r *ProductResolver) Resolve(ctx context.Context, raw string) (Product, error) {
	code := NormalizeProductCode(raw)
	if code == "" {
		return Product{}, invalid(LineError{Field: "product_code", Reason: "is required"})
	}
	log := obs.LoggerFrom(ctx, r.cfg.Logger)

	var cached Product
	if ok, err := r.cfg.Cache.GetJSON(ctx, productCacheKey(code), &cached); err != nil {
		log.Warn().Err(err).Str("product_code", code).Msg("reference cache read failed")
	} else if ok {
		return cached, nil
	}

	row, err := r.cfg.Store.FindProductExact(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		var prefixed dbgen.FindProductByPrefixRow
		prefixed, err = r.cfg.Store.FindProductByPrefix(ctx, likeEscaper.Replace(code))
		row = dbgen.FindProductExactRow(prefixed)
		if err == nil {
			log.Debug().Str("product_code", code).Str("matched", row.Code).Msg("product resolved by prefix")
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		countMiss(KindProduct)
		return Product{}, &ResolutionMiss{Kind: KindProduct, Code: code}
	}
	if err != nil {
		return Product{}, persistence("resolve product", err)
	}
	if !row.ProductClass.Valid || strings.TrimSpace(row.ProductClass.String) == "" {
		countMiss(KindProduct)
		log.Warn().Str("product_code", code).Msg("product has no class in shipment history")
		return Product{}, &ResolutionMiss{Kind: KindProduct, Code: code}
	}

	p := Product{
		Code:         code,
		StoredCode:   row.StoredCode,
		ProductClass: row.ProductClass.String,
		Description:  repo.TextPtr(row.ProductDescription),
	}
	if err := r.cfg.Cache.SetJSON(ctx, productCacheKey(code), p); err != nil {
		log.Warn().Err(err).Str("product_code", code).Msg("reference cache write failed")
	}
	return p, nil
}
