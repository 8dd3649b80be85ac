package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/noah-isme/backend-logistik/internal/app"
	"github.com/noah-isme/backend-logistik/internal/obs"
)

// migrate applies or rolls back the schema in internal/db/migrations.
// Usage: migrate [-path dir] up|down|version|force N
func main() {
	path := flag.String("path", "internal/db/migrations", "migrations directory")
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	logger := obs.NewLogger("console", "info")
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	m, err := migrate.New("file://"+*path, driverURL(dbURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("open migrations")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrations")
		}
	}()

	cmd := flag.Arg(0)
	switch cmd {
	case "", "up":
		err = app.RunMigrations(m)
	case "down":
		err = m.Steps(-*steps)
	case "force":
		var v int
		if _, scanErr := fmt.Sscanf(flag.Arg(1), "%d", &v); scanErr != nil {
			logger.Fatal().Str("arg", flag.Arg(1)).Msg("force needs a version number")
		}
		err = m.Force(v)
	case "version":
	default:
		logger.Fatal().Str("command", cmd).Msg("unknown command")
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal().Err(err).Msg("read schema version")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
}

// driverURL points a postgres URL at the pgx v5 migrate driver.
func driverURL(dbURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(dbURL, scheme)
		}
	}
	return dbURL
}
