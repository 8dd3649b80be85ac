package main

import (
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-logistik/internal/obs"
)

type historyRow struct {
	Customer     string
	Division     string
	RateClass    string
	CustomerName string
	Product      string
	ProductClass string
	Description  string
	Depot        string
	ShippedAt    string
}

type rateRow struct {
	TariffID string
	UnitRate string
}

// shipmentHistory is a small sample of the shipment history feed, including
// the spacing and case variants found in real product codes.
var shipmentHistory = []historyRow{
	{"C100", "W007", "A", "Alimentari Bianchi", "X1", "P2", "Cassa 40x60", "D01", "2024-01-08"},
	{"C100", "W007", "A", "Alimentari Bianchi", "x1 ", "P2", "", "D01", "2024-01-15"},
	{"C100", "W007", "A", "Alimentari Bianchi", "PAL-EUR", "P1", "Pallet EUR", "D01", "2024-01-15"},
	{"C200", "W009", "B", "Ortofrutta Verdi", "Y22", "P3", "Bins 120", "D09", "2024-02-01"},
	{"C200", "W009", "B", "Ortofrutta Verdi", "Y22 PLUS", "P4", "Bins 120 rinforzato", "D09", "2024-02-03"},
	{"C300", "W011", "C", "Caseificio Neri", "X1", "P2", "", "D11", "2024-02-10"},
	{"C300", "W012", "A", "Caseificio Neri", "PAL-EUR", "P1", "", "D12", "2024-03-02"},
}

var tariffRates = []rateRow{
	{"W007-A-P2", "3.5000"},
	{"W007-A-P1", "12.0000"},
	{"W009-B-P3", "1.2500"},
	{"W009-B-P4", "1.8000"},
	{"W011-C-P2", "3.1000"},
}

func main() {
	reset := flag.Bool("reset", false, "truncate reference tables before seeding")
	flag.Parse()

	logger := obs.NewLogger("console", "info")
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if *reset {
		if _, err := db.Exec(`TRUNCATE shipment_history, tariff_rates RESTART IDENTITY`); err != nil {
			logger.Fatal().Err(err).Msg("truncate reference tables")
		}
	}

	seedHistory(db, logger)
	seedRates(db, logger)

	logger.Info().Msg("seeding completed")
}

func seedHistory(db *sql.DB, logger zerolog.Logger) {
	logger.Info().Int("rows", len(shipmentHistory)).Msg("seeding shipment history")
	for _, h := range shipmentHistory {
		_, err := db.Exec(`
			INSERT INTO shipment_history (customer_code, division, rate_class, customer_name,
				product_code, product_class, product_description, depot, shipped_at)
			SELECT $1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9::date
			WHERE NOT EXISTS (
				SELECT 1 FROM shipment_history
				WHERE customer_code = $1 AND product_code = $5 AND shipped_at = $9::date
			)
		`, h.Customer, h.Division, h.RateClass, h.CustomerName, h.Product, h.ProductClass, h.Description, h.Depot, h.ShippedAt)
		if err != nil {
			logger.Error().Err(err).Str("customer_code", h.Customer).Str("product_code", h.Product).Msg("seed shipment history")
		}
	}
}

func seedRates(db *sql.DB, logger zerolog.Logger) {
	logger.Info().Int("rows", len(tariffRates)).Msg("seeding tariff rates")
	for _, r := range tariffRates {
		_, err := db.Exec(`
			INSERT INTO tariff_rates (tariff_id, unit_rate)
			SELECT $1, $2::numeric
			WHERE NOT EXISTS (SELECT 1 FROM tariff_rates WHERE tariff_id = $1)
		`, r.TariffID, r.UnitRate)
		if err != nil {
			logger.Error().Err(err).Str("tariff_id", r.TariffID).Msg("seed tariff rate")
		}
	}
}
