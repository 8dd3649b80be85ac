package resi

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// ReferenceStore reads the shipment history and tariff tables.
type ReferenceStore interface {
	ListCustomerProfiles(ctx context.Context, arg dbgen.ListCustomerProfilesParams) ([]dbgen.ListCustomerProfilesRow, error)
	FindProductExact(ctx context.Context, code string) (dbgen.FindProductExactRow, error)
	FindProductByPrefix(ctx context.Context, prefix string) (dbgen.FindProductByPrefixRow, error)
	FindDepotByDivision(ctx context.Context, division pgtype.Text) (string, error)
	ListTariffRates(ctx context.Context, arg dbgen.ListTariffRatesParams) ([]pgtype.Numeric, error)
}

// LineStore reads and writes return lines.
type LineStore interface {
	InsertReturnLines(ctx context.Context, arg dbgen.InsertReturnLinesParams) ([]int64, error)
	CreateReturnLine(ctx context.Context, arg dbgen.CreateReturnLineParams) (dbgen.ReturnLine, error)
	GetReturnLine(ctx context.Context, id int64) (dbgen.ReturnLine, error)
	GetReturnLineForUpdate(ctx context.Context, id int64) (dbgen.ReturnLine, error)
	UpdateReturnLine(ctx context.Context, arg dbgen.UpdateReturnLineParams) (dbgen.ReturnLine, error)
	ListReturnLines(ctx context.Context, arg dbgen.ListReturnLinesParams) ([]dbgen.ReturnLine, error)
	CountReturnLines(ctx context.Context, arg dbgen.CountReturnLinesParams) (int64, error)
}

// ReportStore lists conflicting reference data.
type ReportStore interface {
	ListAmbiguousCustomers(ctx context.Context, limitValue int32) ([]dbgen.ListAmbiguousCustomersRow, error)
	ListAmbiguousTariffs(ctx context.Context, limitValue int32) ([]dbgen.ListAmbiguousTariffsRow, error)
}

// Store is the query surface the package needs; *dbgen.Queries satisfies it.
type Store interface {
	ReferenceStore
	LineStore
	ReportStore
}

// Transactor runs fn inside one database transaction. fn's store is bound to
// that transaction; an error from fn rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// PgTransactor adapts repo.TxRunner to Transactor.
type PgTransactor struct {
	Runner repo.TxRunner
}

// InTx implements Transactor.
func (t PgTransactor) InTx(ctx context.Context, fn func(Store) error) error {
	return t.Runner.WithTx(ctx, func(q *dbgen.Queries) error {
		return fn(q)
	})
}

var _ Store = (*dbgen.Queries)(nil)

func toReturnLine(row dbgen.ReturnLine) ReturnLine {
	return ReturnLine{
		ID:                 row.ID,
		ReferenceID:        repo.TextPtr(row.ReferenceID),
		ReturnDate:         repo.DateString(row.ReturnDate),
		DocumentNumber:     repo.TextPtr(row.DocumentNumber),
		CustomerCode:       row.CustomerCode,
		Carrier:            repo.TextPtr(row.Carrier),
		ProductCode:        row.ProductCode,
		ProductDescription: repo.TextPtr(row.ProductDescription),
		Depot:              row.Depot,
		Quantity:           row.Quantity,
		PickupDate:         repo.DateString(row.PickupDate),
		TariffID:           row.TariffID,
		UnitRate:           repo.Decimal(row.UnitRate),
		Compensation:       repo.Decimal(row.Compensation),
		CreatedAt:          repo.Timestamp(row.CreatedAt),
		UpdatedAt:          repo.Timestamp(row.UpdatedAt),
	}
}
