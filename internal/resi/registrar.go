package resi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// Pipeline groups the resolution steps shared by the registrar and the updater.
type Pipeline struct {
	Customers *CustomerResolver
	Products  *ProductResolver
	Rates     *RateLookup
}

// priced is a line whose derived fields are known.
type priced struct {
	product      Product
	quantity     int32
	key          TariffKey
	rate         *decimal.Decimal
	compensation *decimal.Decimal
}

type rateMemo map[TariffKey]*decimal.Decimal

func (p Pipeline) price(ctx context.Context, customer Customer, product Product, quantity int32, memo rateMemo) (priced, error) {
	key := NewTariffKey(customer, product)
	rate, ok := memo[key]
	if !ok {
		var err error
		rate, err = p.Rates.Lookup(ctx, key)
		if err != nil {
			return priced{}, err
		}
		if memo != nil {
			memo[key] = rate
		}
	}
	return priced{
		product:      product,
		quantity:     quantity,
		key:          key,
		rate:         rate,
		compensation: Compensation(quantity, rate),
	}, nil
}

// Registrar validates and stores whole documents.
type Registrar struct {
	pipeline Pipeline
	tx       Transactor
	logger   zerolog.Logger
}

// NewRegistrar constructs a Registrar.
func NewRegistrar(p Pipeline, tx Transactor, logger zerolog.Logger) *Registrar {
	return &Registrar{pipeline: p, tx: tx, logger: logger}
}

// document is a validated header with its resolved customer.
type document struct {
	header     Header
	customer   Customer
	returnDate pgtype.Date
	pickupDate pgtype.Date
}

// Register stores every line of b or none of them. Header problems abort
// before any line is looked at; a customer miss aborts the batch; line
// problems are all collected and returned together in a *ValidationError.
func (r *Registrar) Register(ctx context.Context, b Batch) (BatchResult, error) {
	ctx, span := obs.StartSpan(ctx, "resi.register",
		attribute.String("resi.customer_code", b.Header.CustomerCode),
		attribute.Int("resi.lines", len(b.Lines)),
	)
	defer span.End()
	res, err := r.register(ctx, b)
	obs.SpanError(span, err)
	return res, err
}

func (r *Registrar) register(ctx context.Context, b Batch) (BatchResult, error) {
	doc, lines, err := r.prepare(ctx, b.Header, b.Lines)
	if err != nil {
		countBatch(outcome(err))
		return BatchResult{}, err
	}

	params := dbgen.InsertReturnLinesParams{
		ReferenceIds:        make([]pgtype.Text, 0, len(lines)),
		ReturnDates:         make([]pgtype.Date, 0, len(lines)),
		DocumentNumbers:     make([]pgtype.Text, 0, len(lines)),
		CustomerCodes:       make([]string, 0, len(lines)),
		Carriers:            make([]pgtype.Text, 0, len(lines)),
		ProductCodes:        make([]string, 0, len(lines)),
		ProductDescriptions: make([]pgtype.Text, 0, len(lines)),
		Depots:              make([]string, 0, len(lines)),
		Quantities:          make([]int32, 0, len(lines)),
		PickupDates:         make([]pgtype.Date, 0, len(lines)),
		TariffIds:           make([]string, 0, len(lines)),
		UnitRates:           make([]pgtype.Numeric, 0, len(lines)),
		Compensations:       make([]pgtype.Numeric, 0, len(lines)),
	}
	for _, l := range lines {
		row := doc.createParams(l)
		params.ReferenceIds = append(params.ReferenceIds, row.ReferenceID)
		params.ReturnDates = append(params.ReturnDates, row.ReturnDate)
		params.DocumentNumbers = append(params.DocumentNumbers, row.DocumentNumber)
		params.CustomerCodes = append(params.CustomerCodes, row.CustomerCode)
		params.Carriers = append(params.Carriers, row.Carrier)
		params.ProductCodes = append(params.ProductCodes, row.ProductCode)
		params.ProductDescriptions = append(params.ProductDescriptions, row.ProductDescription)
		params.Depots = append(params.Depots, row.Depot)
		params.Quantities = append(params.Quantities, row.Quantity)
		params.PickupDates = append(params.PickupDates, row.PickupDate)
		params.TariffIds = append(params.TariffIds, row.TariffID)
		params.UnitRates = append(params.UnitRates, row.UnitRate)
		params.Compensations = append(params.Compensations, row.Compensation)
	}

	var ids []int64
	err = r.tx.InTx(ctx, func(s Store) error {
		inserted, err := s.InsertReturnLines(ctx, params)
		if err != nil {
			return err
		}
		if len(inserted) != len(lines) {
			return fmt.Errorf("inserted %d of %d lines", len(inserted), len(lines))
		}
		ids = inserted
		return nil
	})
	if err != nil {
		countBatch("error")
		return BatchResult{}, persistence("insert return lines", err)
	}

	countBatch("ok")
	countLinesWritten(len(ids))
	log := obs.LoggerFrom(ctx, r.logger)
	log.Info().
		Str("customer_code", doc.customer.Code).
		Str("document_number", doc.header.DocumentNumber).
		Int("lines", len(ids)).
		Msg("return batch registered")
	return BatchResult{InsertedCount: len(ids), IDs: ids}, nil
}

// Create stores a single line through the same validation and pricing as Register.
func (r *Registrar) Create(ctx context.Context, h Header, l Line) (ReturnLine, error) {
	doc, lines, err := r.prepare(ctx, h, []Line{l})
	if err != nil {
		countBatch(outcome(err))
		return ReturnLine{}, err
	}
	var created dbgen.ReturnLine
	err = r.tx.InTx(ctx, func(s Store) error {
		var err error
		created, err = s.CreateReturnLine(ctx, doc.createParams(lines[0]))
		return err
	})
	if err != nil {
		countBatch("error")
		return ReturnLine{}, persistence("create return line", err)
	}
	countBatch("ok")
	countLinesWritten(1)
	return toReturnLine(created), nil
}

func (r *Registrar) prepare(ctx context.Context, h Header, raw []Line) (document, []priced, error) {
	errs := checkStruct(0, h)
	if len(raw) == 0 {
		errs = append(errs, LineError{Field: "lines", Reason: "at least one line is required"})
	}
	if len(errs) > 0 {
		return document{}, nil, invalid(errs...)
	}
	doc := document{header: h}
	if t, err := repo.ParseDate(h.ReferenceDate); err == nil {
		doc.returnDate = repo.Date(t)
	}
	if t, err := repo.ParseDate(h.PickupDate); err == nil {
		doc.pickupDate = repo.Date(t)
	}

	customer, err := r.pipeline.Customers.Resolve(ctx, h.CustomerCode)
	if err != nil {
		return document{}, nil, err
	}
	doc.customer = customer

	memo := rateMemo{}
	lines := make([]priced, 0, len(raw))
	for i, l := range raw {
		n := i + 1
		if lineErrs := checkStruct(n, l); len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			continue
		}
		product, err := r.pipeline.Products.Resolve(ctx, l.ProductCode)
		var miss *ResolutionMiss
		var verr *ValidationError
		switch {
		case errors.As(err, &miss):
			errs = append(errs, LineError{Line: n, Field: "product_code", Reason: fmt.Sprintf("product code %q not found", miss.Code)})
			continue
		case errors.As(err, &verr):
			for _, le := range verr.Errors {
				le.Line = n
				errs = append(errs, le)
			}
			continue
		case err != nil:
			return document{}, nil, err
		}
		p, err := r.pipeline.price(ctx, customer, product, l.Quantity, memo)
		if err != nil {
			return document{}, nil, err
		}
		lines = append(lines, p)
	}
	if len(errs) > 0 {
		return document{}, nil, invalid(errs...)
	}
	return doc, lines, nil
}

func (d document) createParams(p priced) dbgen.CreateReturnLineParams {
	return dbgen.CreateReturnLineParams{
		ReferenceID:        repo.Text(d.header.ReferenceID),
		ReturnDate:         d.returnDate,
		DocumentNumber:     repo.Text(d.header.DocumentNumber),
		CustomerCode:       d.customer.Code,
		Carrier:            repo.Text(d.header.Carrier),
		ProductCode:        p.product.Code,
		ProductDescription: textOrNull(p.product.Description),
		Depot:              strings.TrimSpace(d.header.Depot),
		Quantity:           p.quantity,
		PickupDate:         d.pickupDate,
		TariffID:           p.key.String(),
		UnitRate:           repo.Numeric(p.rate),
		Compensation:       repo.Numeric(p.compensation),
	}
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return repo.Text(*s)
}

func outcome(err error) string {
	var verr *ValidationError
	var miss *ResolutionMiss
	switch {
	case errors.As(err, &verr):
		return "rejected"
	case errors.As(err, &miss):
		return "customer_miss"
	default:
		return "error"
	}
}
