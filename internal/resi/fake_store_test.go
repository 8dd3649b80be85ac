package resi_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/repo"
	"github.com/noah-isme/backend-logistik/internal/resi"
)

// fakeStore mimics the sqlc queries over in-memory tables. Writes made
// through InTx are staged on a copy and only kept when fn succeeds.
type fakeStore struct {
	mu      sync.Mutex
	history []dbgen.ShipmentHistory
	rates   []dbgen.TariffRate
	lines   map[int64]dbgen.ReturnLine
	nextID  int64
	calls   map[string]int

	insertErr error
	updateErr error
}

var (
	_ resi.Store      = (*fakeStore)(nil)
	_ resi.Transactor = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{lines: map[int64]dbgen.ReturnLine{}, calls: map[string]int{}}
}

func (s *fakeStore) addHistory(customer, division, rateClass, product, productClass, description, depot string) *fakeStore {
	s.history = append(s.history, dbgen.ShipmentHistory{
		ID:                 int64(len(s.history) + 1),
		CustomerCode:       customer,
		Division:           nullable(division),
		RateClass:          nullable(rateClass),
		ProductCode:        product,
		ProductClass:       nullable(productClass),
		ProductDescription: nullable(description),
		Depot:              nullable(depot),
	})
	return s
}

func (s *fakeStore) addRate(tariffID, rate string) *fakeStore {
	d := decimal.RequireFromString(rate)
	s.rates = append(s.rates, dbgen.TariffRate{
		ID:       int64(len(s.rates) + 1),
		TariffID: tariffID,
		UnitRate: repo.Numeric(&d),
	})
	return s
}

func (s *fakeStore) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *fakeStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *fakeStore) track(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func nullable(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(resi.Store) error) error {
	s.mu.Lock()
	staged := &fakeStore{
		history:   s.history,
		rates:     s.rates,
		lines:     make(map[int64]dbgen.ReturnLine, len(s.lines)),
		nextID:    s.nextID,
		calls:     s.calls,
		insertErr: s.insertErr,
		updateErr: s.updateErr,
	}
	for id, l := range s.lines {
		staged.lines[id] = l
	}
	s.mu.Unlock()

	if err := fn(staged); err != nil {
		return err
	}
	s.mu.Lock()
	s.lines = staged.lines
	s.nextID = staged.nextID
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) ListCustomerProfiles(_ context.Context, arg dbgen.ListCustomerProfilesParams) ([]dbgen.ListCustomerProfilesRow, error) {
	s.track("ListCustomerProfiles")
	seen := map[string]bool{}
	out := []dbgen.ListCustomerProfilesRow{}
	for _, h := range s.history {
		if h.CustomerCode != arg.CustomerCode || !h.Division.Valid || !h.RateClass.Valid {
			continue
		}
		pair := h.Division.String + "\x00" + h.RateClass.String
		if seen[pair] {
			continue
		}
		seen[pair] = true
		out = append(out, dbgen.ListCustomerProfilesRow{
			Division:     h.Division.String,
			RateClass:    h.RateClass.String,
			CustomerName: h.CustomerName,
		})
		if int32(len(out)) == arg.LimitValue {
			break
		}
	}
	return out, nil
}

func normalized(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *fakeStore) productGroup(match func(string) bool) map[string][]dbgen.ShipmentHistory {
	groups := map[string][]dbgen.ShipmentHistory{}
	for _, h := range s.history {
		key := normalized(h.ProductCode)
		if match(key) {
			groups[key] = append(groups[key], h)
		}
	}
	return groups
}

func summarize(code string, rows []dbgen.ShipmentHistory) dbgen.FindProductExactRow {
	sorted := append([]dbgen.ShipmentHistory(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].ProductCode) != len(sorted[j].ProductCode) {
			return len(sorted[i].ProductCode) < len(sorted[j].ProductCode)
		}
		return sorted[i].ID < sorted[j].ID
	})
	row := dbgen.FindProductExactRow{Code: code, StoredCode: sorted[0].ProductCode}
	for _, h := range sorted {
		if !row.ProductClass.Valid && h.ProductClass.Valid {
			row.ProductClass = h.ProductClass
		}
		if !row.ProductDescription.Valid && h.ProductDescription.Valid {
			row.ProductDescription = h.ProductDescription
		}
	}
	return row
}

func (s *fakeStore) FindProductExact(_ context.Context, code string) (dbgen.FindProductExactRow, error) {
	s.track("FindProductExact")
	rows := s.productGroup(func(k string) bool { return k == code })[code]
	if len(rows) == 0 {
		return dbgen.FindProductExactRow{}, pgx.ErrNoRows
	}
	return summarize(code, rows), nil
}

var likeUnescaper = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`)

func (s *fakeStore) FindProductByPrefix(_ context.Context, prefix string) (dbgen.FindProductByPrefixRow, error) {
	s.track("FindProductByPrefix")
	p := likeUnescaper.Replace(prefix)
	groups := s.productGroup(func(k string) bool { return strings.HasPrefix(k, p) })
	if len(groups) == 0 {
		return dbgen.FindProductByPrefixRow{}, pgx.ErrNoRows
	}
	keys := make([]string, 0, len(groups))
	minLen := map[string]int{}
	for k, rows := range groups {
		keys = append(keys, k)
		for _, h := range rows {
			if l, ok := minLen[k]; !ok || len(h.ProductCode) < l {
				minLen[k] = len(h.ProductCode)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if minLen[keys[i]] != minLen[keys[j]] {
			return minLen[keys[i]] < minLen[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return dbgen.FindProductByPrefixRow(summarize(keys[0], groups[keys[0]])), nil
}

func (s *fakeStore) FindDepotByDivision(_ context.Context, division pgtype.Text) (string, error) {
	s.track("FindDepotByDivision")
	for i := len(s.history) - 1; i >= 0; i-- {
		h := s.history[i]
		if h.Division == division && h.Depot.Valid && strings.TrimSpace(h.Depot.String) != "" {
			return h.Depot.String, nil
		}
	}
	return "", pgx.ErrNoRows
}

func (s *fakeStore) ListTariffRates(_ context.Context, arg dbgen.ListTariffRatesParams) ([]pgtype.Numeric, error) {
	s.track("ListTariffRates")
	var seen []decimal.Decimal
	out := []pgtype.Numeric{}
	for _, r := range s.rates {
		if r.TariffID != arg.TariffID || !r.UnitRate.Valid {
			continue
		}
		d := *repo.Decimal(r.UnitRate)
		dup := false
		for _, v := range seen {
			if v.Equal(d) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, d)
		out = append(out, r.UnitRate)
		if int32(len(out)) == arg.LimitValue {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) ListAmbiguousCustomers(_ context.Context, limit int32) ([]dbgen.ListAmbiguousCustomersRow, error) {
	pairs := map[string]map[string]bool{}
	for _, h := range s.history {
		if !h.Division.Valid || !h.RateClass.Valid {
			continue
		}
		if pairs[h.CustomerCode] == nil {
			pairs[h.CustomerCode] = map[string]bool{}
		}
		pairs[h.CustomerCode][h.Division.String+"-"+h.RateClass.String] = true
	}
	out := []dbgen.ListAmbiguousCustomersRow{}
	for code, set := range pairs {
		if len(set) > 1 {
			out = append(out, dbgen.ListAmbiguousCustomersRow{CustomerCode: code, Variants: int32(len(set))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerCode < out[j].CustomerCode })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListAmbiguousTariffs(_ context.Context, limit int32) ([]dbgen.ListAmbiguousTariffsRow, error) {
	ids := map[string]bool{}
	for _, r := range s.rates {
		ids[r.TariffID] = true
	}
	out := []dbgen.ListAmbiguousTariffsRow{}
	for id := range ids {
		rates, _ := s.ListTariffRates(context.Background(), dbgen.ListTariffRatesParams{TariffID: id, LimitValue: 1 << 20})
		if len(rates) > 1 {
			out = append(out, dbgen.ListAmbiguousTariffsRow{TariffID: id, Variants: int32(len(rates))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TariffID < out[j].TariffID })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) insert(row dbgen.ReturnLine) dbgen.ReturnLine {
	s.nextID++
	row.ID = s.nextID
	now := time.Now().UTC()
	row.CreatedAt = pgtype.Timestamptz{Time: now, Valid: true}
	row.UpdatedAt = row.CreatedAt
	s.lines[row.ID] = row
	return row
}

func (s *fakeStore) InsertReturnLines(_ context.Context, arg dbgen.InsertReturnLinesParams) ([]int64, error) {
	s.track("InsertReturnLines")
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	ids := make([]int64, 0, len(arg.ProductCodes))
	for i := range arg.ProductCodes {
		row := s.insert(dbgen.ReturnLine{
			ReferenceID:        arg.ReferenceIds[i],
			ReturnDate:         arg.ReturnDates[i],
			DocumentNumber:     arg.DocumentNumbers[i],
			CustomerCode:       arg.CustomerCodes[i],
			Carrier:            arg.Carriers[i],
			ProductCode:        arg.ProductCodes[i],
			ProductDescription: arg.ProductDescriptions[i],
			Depot:              arg.Depots[i],
			Quantity:           arg.Quantities[i],
			PickupDate:         arg.PickupDates[i],
			TariffID:           arg.TariffIds[i],
			UnitRate:           arg.UnitRates[i],
			Compensation:       arg.Compensations[i],
		})
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *fakeStore) CreateReturnLine(_ context.Context, arg dbgen.CreateReturnLineParams) (dbgen.ReturnLine, error) {
	s.track("CreateReturnLine")
	if s.insertErr != nil {
		return dbgen.ReturnLine{}, s.insertErr
	}
	return s.insert(dbgen.ReturnLine{
		ReferenceID:        arg.ReferenceID,
		ReturnDate:         arg.ReturnDate,
		DocumentNumber:     arg.DocumentNumber,
		CustomerCode:       arg.CustomerCode,
		Carrier:            arg.Carrier,
		ProductCode:        arg.ProductCode,
		ProductDescription: arg.ProductDescription,
		Depot:              arg.Depot,
		Quantity:           arg.Quantity,
		PickupDate:         arg.PickupDate,
		TariffID:           arg.TariffID,
		UnitRate:           arg.UnitRate,
		Compensation:       arg.Compensation,
	}), nil
}

func (s *fakeStore) GetReturnLine(_ context.Context, id int64) (dbgen.ReturnLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.lines[id]
	if !ok {
		return dbgen.ReturnLine{}, pgx.ErrNoRows
	}
	return row, nil
}

func (s *fakeStore) GetReturnLineForUpdate(ctx context.Context, id int64) (dbgen.ReturnLine, error) {
	s.track("GetReturnLineForUpdate")
	return s.GetReturnLine(ctx, id)
}

func (s *fakeStore) UpdateReturnLine(_ context.Context, arg dbgen.UpdateReturnLineParams) (dbgen.ReturnLine, error) {
	s.track("UpdateReturnLine")
	if s.updateErr != nil {
		return dbgen.ReturnLine{}, s.updateErr
	}
	row, ok := s.lines[arg.ID]
	if !ok {
		return dbgen.ReturnLine{}, pgx.ErrNoRows
	}
	row.ReferenceID = arg.ReferenceID
	row.ReturnDate = arg.ReturnDate
	row.DocumentNumber = arg.DocumentNumber
	row.CustomerCode = arg.CustomerCode
	row.Carrier = arg.Carrier
	row.ProductCode = arg.ProductCode
	row.ProductDescription = arg.ProductDescription
	row.Depot = arg.Depot
	row.Quantity = arg.Quantity
	row.PickupDate = arg.PickupDate
	row.TariffID = arg.TariffID
	row.UnitRate = arg.UnitRate
	row.Compensation = arg.Compensation
	row.UpdatedAt = pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	s.lines[arg.ID] = row
	return row, nil
}

func (s *fakeStore) filtered(doc, customer pgtype.Text) []dbgen.ReturnLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []dbgen.ReturnLine{}
	for _, row := range s.lines {
		if doc.Valid && row.DocumentNumber != doc {
			continue
		}
		if customer.Valid && row.CustomerCode != customer.String {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *fakeStore) ListReturnLines(_ context.Context, arg dbgen.ListReturnLinesParams) ([]dbgen.ReturnLine, error) {
	s.track("ListReturnLines")
	rows := s.filtered(arg.DocumentNumber, arg.CustomerCode)
	start := min(int(arg.OffsetValue), len(rows))
	end := min(start+int(arg.LimitValue), len(rows))
	return rows[start:end], nil
}

func (s *fakeStore) CountReturnLines(_ context.Context, arg dbgen.CountReturnLinesParams) (int64, error) {
	return int64(len(s.filtered(arg.DocumentNumber, arg.CustomerCode))), nil
}

var errStorage = errors.New("storage unavailable")

// referenceFixture is the shipment history most tests run against.
func referenceFixture() *fakeStore {
	return newFakeStore().
		addHistory("C100", "W007", "A", "X1", "P2", "Crate 40x60", "D01").
		addHistory("C100", "W007", "A", "x1  ", "P2", "", "D01").
		addHistory("C200", "W009", "B", "Y22", "P3", "Pallet", "D09").
		addHistory("C200", "W009", "B", "Y22 LONG", "P4", "", "").
		addHistory("C300", "W011", "C", "NOCLASS", "", "", "D11").
		addRate("W007-A-P2", "3.50").
		addRate("W009-B-P3", "1.25").
		addRate("W009-B-P2", "2.00")
}
