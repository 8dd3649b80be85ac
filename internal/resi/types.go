package resi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a customer resolved from shipment history.
type Customer struct {
	Code        string  `json:"code" yaml:"code"`
	Division    string  `json:"division" yaml:"division"`
	RateClass   string  `json:"rate_class" yaml:"rate_class"`
	DisplayName *string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}

// Product is a product resolved from shipment history. Code is the
// normalised input; StoredCode is the representative stored variant.
type Product struct {
	Code         string  `json:"code" yaml:"code"`
	StoredCode   string  `json:"stored_code" yaml:"stored_code"`
	ProductClass string  `json:"product_class" yaml:"product_class"`
	Description  *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Header is the shipping document (bolla) shared by every line of a batch.
type Header struct {
	Depot          string `json:"depot" validate:"notblank"`
	CustomerCode   string `json:"customer_code" validate:"notblank"`
	ReferenceDate  string `json:"reference_date" validate:"required,datetime=2006-01-02"`
	ReferenceID    string `json:"reference_id,omitempty" validate:"max=64"`
	DocumentNumber string `json:"document_number,omitempty" validate:"max=64"`
	Carrier        string `json:"carrier,omitempty" validate:"max=128"`
	PickupDate     string `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Line is one raw item of a batch.
type Line struct {
	ProductCode string `json:"product_code" validate:"notblank"`
	Quantity    int32  `json:"quantity" validate:"gt=0"`
}

// Batch is a full document submission.
type Batch struct {
	Header Header `json:"bolla"`
	Lines  []Line `json:"lines"`
}

// BatchResult reports the rows written by a batch.
type BatchResult struct {
	InsertedCount int     `json:"inserted_count" yaml:"inserted_count"`
	IDs           []int64 `json:"ids" yaml:"ids"`
}

// UpdateInput replaces every editable field of a return line. An empty Depot
// falls back to the depot of the customer's division.
type UpdateInput struct {
	CustomerCode   string `json:"customer_code" validate:"notblank"`
	ProductCode    string `json:"product_code" validate:"notblank"`
	Quantity       int32  `json:"quantity" validate:"gt=0"`
	ReferenceDate  string `json:"reference_date" validate:"required,datetime=2006-01-02"`
	ReferenceID    string `json:"reference_id,omitempty" validate:"max=64"`
	DocumentNumber string `json:"document_number,omitempty" validate:"max=64"`
	Carrier        string `json:"carrier,omitempty" validate:"max=128"`
	Depot          string `json:"depot,omitempty"`
	PickupDate     string `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReturnLine is a stored return line with its derived fields.
type ReturnLine struct {
	ID                 int64            `json:"id" yaml:"id"`
	ReferenceID        *string          `json:"reference_id,omitempty" yaml:"reference_id,omitempty"`
	ReturnDate         *string          `json:"reference_date,omitempty" yaml:"reference_date,omitempty"`
	DocumentNumber     *string          `json:"document_number,omitempty" yaml:"document_number,omitempty"`
	CustomerCode       string           `json:"customer_code" yaml:"customer_code"`
	Carrier            *string          `json:"carrier,omitempty" yaml:"carrier,omitempty"`
	ProductCode        string           `json:"product_code" yaml:"product_code"`
	ProductDescription *string          `json:"product_description,omitempty" yaml:"product_description,omitempty"`
	Depot              string           `json:"depot" yaml:"depot"`
	Quantity           int32            `json:"quantity" yaml:"quantity"`
	PickupDate         *string          `json:"pickup_date,omitempty" yaml:"pickup_date,omitempty"`
	TariffID           string           `json:"tariff_id" yaml:"tariff_id"`
	UnitRate           *decimal.Decimal `json:"unit_rate" yaml:"unit_rate"`
	Compensation       *decimal.Decimal `json:"compensation" yaml:"compensation"`
	CreatedAt          time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" yaml:"updated_at"`
}

// ListParams filters the return line listing.
type ListParams struct {
	DocumentNumber string
	CustomerCode   string
	Page           int
	PerPage        int
}

// ListResult is one page of return lines.
type ListResult struct {
	Items   []ReturnLine
	Total   int64
	Page    int
	PerPage int
}

// LookupResult answers a reference lookup.
type LookupResult struct {
	Found bool `json:"found" yaml:"found"`
	Data  any  `json:"data,omitempty" yaml:"data,omitempty"`
}
