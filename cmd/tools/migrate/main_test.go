package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/logistik?sslmode=disable", driverURL("postgres://u:p@db:5432/logistik?sslmode=disable"))
	require.Equal(t, "pgx5://db/logistik", driverURL("postgresql://db/logistik"))
	require.Equal(t, "pgx5://db/logistik", driverURL("pgx5://db/logistik"))
}
