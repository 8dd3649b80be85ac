package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/backend-logistik/internal/audit"
	"github.com/noah-isme/backend-logistik/internal/resi"
)

// operations is the part of resi.Service the CLI drives.
type operations interface {
	AmbiguityReport(ctx context.Context, limit int32) ([]resi.Ambiguity, error)
	Recompute(ctx context.Context, id int64) (resi.ReturnLine, error)
	Lookup(ctx context.Context, kind, code string) (resi.LookupResult, error)
	FlushCache(ctx context.Context) (int, error)
}

type recorder interface {
	RecordEntry(ctx context.Context, e audit.Entry) error
}

type backend struct {
	Ops   operations
	Audit recorder
}

type opener func(ctx context.Context) (backend, func(), error)

type rootOptions struct {
	output  string
	timeout time.Duration
	open    opener
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}
	root := &cobra.Command{
		Use:           "resictl",
		Short:         "Operator tasks for non-invoiced return lines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newAmbiguityCmd(opts),
		newRecomputeCmd(opts),
		newLookupCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, b backend) (any, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()
	b, closeFn, err := o.open(ctx)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	out, err := fn(ctx, b)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), o.output, out)
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newAmbiguityCmd(opts *rootOptions) *cobra.Command {
	var limit int32
	cmd := &cobra.Command{
		Use:   "ambiguity",
		Short: "List customers and tariffs whose reference rows disagree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, b backend) (any, error) {
				report, err := b.Ops.AmbiguityReport(ctx, limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"count": len(report), "items": report}, nil
			})
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 100, "maximum entries per kind")
	return cmd
}

func newRecomputeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <id>",
		Short: "Re-derive the tariff and compensation of a stored line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid return line id %q", args[0])
			}
			return opts.run(cmd, func(ctx context.Context, b backend) (any, error) {
				line, err := b.Ops.Recompute(ctx, id)
				if err != nil {
					return nil, err
				}
				record(ctx, cmd.ErrOrStderr(), b.Audit, audit.Entry{
					Action:       "resi.recompute",
					ResourceType: "return_line",
					ResourceID:   args[0],
					Metadata:     map[string]any{"tariff_id": line.TariffID},
				})
				return line, nil
			})
		},
	}
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <cliente|prodotto> <code>",
		Short: "Resolve a customer or product code against shipment history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Ops.Lookup(ctx, args[0], args[1])
			})
		},
	}
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Manage the reference cache"}
	cache.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached customer and product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, b backend) (any, error) {
				removed, err := b.Ops.FlushCache(ctx)
				if err != nil {
					return nil, err
				}
				record(ctx, cmd.ErrOrStderr(), b.Audit, audit.Entry{
					Action:       "resi.cache.flush",
					ResourceType: "reference_cache",
					Metadata:     map[string]any{"removed": removed},
				})
				return map[string]int{"removed": removed}, nil
			})
		},
	})
	return cache
}

func record(ctx context.Context, errOut io.Writer, r recorder, e audit.Entry) {
	if r == nil {
		return
	}
	e.Actor = audit.Actor{Kind: audit.ActorKindSystem, Subject: operator()}
	if err := r.RecordEntry(ctx, e); err != nil {
		fmt.Fprintf(errOut, "warning: audit entry not recorded: %v\n", err)
	}
}

func operator() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "resictl"
}
