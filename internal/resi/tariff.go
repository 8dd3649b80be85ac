package resi

import "github.com/shopspring/decimal"

// TariffKey identifies a compensation rate. Its String form is the tariff id
// stored on every return line.
type TariffKey struct {
	Division     string
	RateClass    string
	ProductClass string
}

// NewTariffKey composes the key of a resolved customer and product.
func NewTariffKey(c Customer, p Product) TariffKey {
	return TariffKey{Division: c.Division, RateClass: c.RateClass, ProductClass: p.ProductClass}
}

// String returns division-rate_class-product_class.
func (k TariffKey) String() string {
	return k.Division + "-" + k.RateClass + "-" + k.ProductClass
}

// Equal reports whether both keys name the same tariff.
func (k TariffKey) Equal(o TariffKey) bool {
	return k == o
}

// Compensation returns quantity × rate, or nil when no rate is known.
func Compensation(quantity int32, rate *decimal.Decimal) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	v := rate.Mul(decimal.NewFromInt32(quantity))
	return &v
}
