package main

import (
	"context"
	"fmt"
	"os"

	"github.com/noah-isme/backend-logistik/internal/app"
	"github.com/noah-isme/backend-logistik/internal/config"
	"github.com/noah-isme/backend-logistik/internal/obs"
)

func main() {
	root := newRootCmd(openDeps)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDeps(ctx context.Context) (backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return backend{}, nil, err
	}
	logger := obs.NewLogger("console", cfg.LogLevel)
	deps, err := app.New(ctx, cfg, logger, app.Options{ApplicationName: "resictl"})
	if err != nil {
		return backend{}, nil, err
	}
	return backend{Ops: deps.Resi, Audit: deps.Audit}, deps.Close, nil
}
