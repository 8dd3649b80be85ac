package resi

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// Lookup kinds accepted on the wire.
const (
	LookupCustomer = "cliente"
	LookupProduct  = "prodotto"
)

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Store          Store
	Tx             Transactor
	Cache          *Cache
	Locker         Locker
	LockTTL        time.Duration
	AmbiguityProbe int32
	Logger         zerolog.Logger
}

// Service is the entry point for return line operations.
type Service struct {
	store     Store
	cache     *Cache
	pipeline  Pipeline
	registrar *Registrar
	updater   *Updater
	logger    zerolog.Logger
}

// NewService builds the resolvers, registrar and updater around cfg.
func NewService(cfg ServiceConfig) *Service {
	rc := ResolverConfig{
		Store:          cfg.Store,
		Cache:          cfg.Cache,
		AmbiguityProbe: cfg.AmbiguityProbe,
		Logger:         cfg.Logger,
	}
	p := Pipeline{
		Customers: NewCustomerResolver(rc),
		Products:  NewProductResolver(rc),
		Rates:     NewRateLookup(rc),
	}
	return &Service{
		store:     cfg.Store,
		cache:     cfg.Cache,
		pipeline:  p,
		registrar: NewRegistrar(p, cfg.Tx, cfg.Logger),
		updater:   NewUpdater(p, cfg.Tx, cfg.Locker, cfg.LockTTL, cfg.Logger),
		logger:    cfg.Logger,
	}
}

// Lookup resolves a customer or product code. A miss is reported as
// Found=false rather than an error.
func (s *Service) Lookup(ctx context.Context, kind, code string) (LookupResult, error) {
	var (
		data any
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case LookupCustomer:
		data, err = s.pipeline.Customers.Resolve(ctx, code)
	case LookupProduct:
		data, err = s.pipeline.Products.Resolve(ctx, code)
	default:
		return LookupResult{}, invalid(LineError{Field: "type", Reason: "must be cliente or prodotto"})
	}
	var miss *ResolutionMiss
	if errors.As(err, &miss) {
		return LookupResult{Found: false}, nil
	}
	if err != nil {
		return LookupResult{}, err
	}
	return LookupResult{Found: true, Data: data}, nil
}

// Register stores a whole document atomically.
func (s *Service) Register(ctx context.Context, b Batch) (BatchResult, error) {
	return s.registrar.Register(ctx, b)
}

// Create stores a single line.
func (s *Service) Create(ctx context.Context, h Header, l Line) (ReturnLine, error) {
	return s.registrar.Create(ctx, h, l)
}

// Update rewrites line id and re-derives its tariff and compensation.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (ReturnLine, error) {
	return s.updater.Update(ctx, id, in)
}

// Get returns one stored line.
func (s *Service) Get(ctx context.Context, id int64) (ReturnLine, error) {
	row, err := s.store.GetReturnLine(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReturnLine{}, ErrReturnLineNotFound
	}
	if err != nil {
		return ReturnLine{}, persistence("get return line", err)
	}
	return toReturnLine(row), nil
}

// List returns one page of stored lines, newest first.
func (s *Service) List(ctx context.Context, p ListParams) (ListResult, error) {
	filter := dbgen.CountReturnLinesParams{
		DocumentNumber: repo.Text(p.DocumentNumber),
		CustomerCode:   repo.Text(p.CustomerCode),
	}
	total, err := s.store.CountReturnLines(ctx, filter)
	if err != nil {
		return ListResult{}, persistence("count return lines", err)
	}
	offset := int64(max(p.Page, 1)-1) * int64(p.PerPage)
	if offset > math.MaxInt32 {
		return ListResult{Items: []ReturnLine{}, Total: total, Page: p.Page, PerPage: p.PerPage}, nil
	}
	rows, err := s.store.ListReturnLines(ctx, dbgen.ListReturnLinesParams{
		DocumentNumber: filter.DocumentNumber,
		CustomerCode:   filter.CustomerCode,
		LimitValue:     int32(p.PerPage),
		OffsetValue:    int32(offset),
	})
	if err != nil {
		return ListResult{}, persistence("list return lines", err)
	}
	items := make([]ReturnLine, 0, len(rows))
	for _, row := range rows {
		items = append(items, toReturnLine(row))
	}
	return ListResult{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage}, nil
}

// Recompute re-derives line id from its own stored values, picking up
// reference data or rates that changed since it was written.
func (s *Service) Recompute(ctx context.Context, id int64) (ReturnLine, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return ReturnLine{}, err
	}
	return s.updater.Update(ctx, id, UpdateInput{
		CustomerCode:   current.CustomerCode,
		ProductCode:    current.ProductCode,
		Quantity:       current.Quantity,
		ReferenceDate:  deref(current.ReturnDate),
		ReferenceID:    deref(current.ReferenceID),
		DocumentNumber: deref(current.DocumentNumber),
		Carrier:        deref(current.Carrier),
		Depot:          current.Depot,
		PickupDate:     deref(current.PickupDate),
	})
}

// FlushCache drops every cached customer and product.
func (s *Service) FlushCache(ctx context.Context) (int, error) {
	return s.cache.Flush(ctx)
}

// Ambiguity lists a reference code that maps to more than one variant.
type Ambiguity struct {
	Kind     string `json:"kind" yaml:"kind"`
	Code     string `json:"code" yaml:"code"`
	Variants int32  `json:"variants" yaml:"variants"`
}

// AmbiguityReport lists customers with several division/rate class pairs
// and tariffs with several rates, at most limit of each.
func (s *Service) AmbiguityReport(ctx context.Context, limit int32) ([]Ambiguity, error) {
	if limit < 1 {
		limit = 100
	}
	customers, err := s.store.ListAmbiguousCustomers(ctx, limit)
	if err != nil {
		return nil, persistence("list ambiguous customers", err)
	}
	tariffs, err := s.store.ListAmbiguousTariffs(ctx, limit)
	if err != nil {
		return nil, persistence("list ambiguous tariffs", err)
	}
	out := make([]Ambiguity, 0, len(customers)+len(tariffs))
	for _, c := range customers {
		out = append(out, Ambiguity{Kind: KindCustomer, Code: c.CustomerCode, Variants: c.Variants})
	}
	for _, t := range tariffs {
		out = append(out, Ambiguity{Kind: KindTariff, Code: t.TariffID, Variants: t.Variants})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
