package obs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxQueryKey struct{}

type queryState struct {
	span      trace.Span
	operation string
	sql       string
	start     time.Time
}

// PGXTracer implements pgx.QueryTracer. It opens a span per statement, records
// latency into Metrics when set and logs statements slower than SlowThreshold.
type PGXTracer struct {
	Metrics       *DBMetrics
	Logger        *zerolog.Logger
	SlowThreshold time.Duration
}

// TraceQueryStart starts a span for the SQL statement.
func (t PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := sqlOperation(data.SQL)
	ctx, span := otel.Tracer("db.pgx").Start(ctx, "pgx."+strings.ToLower(op), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", truncateSQL(data.SQL)),
		attribute.String("db.operation", op),
	)
	return context.WithValue(ctx, ctxQueryKey{}, &queryState{
		span:      span,
		operation: op,
		sql:       data.SQL,
		start:     time.Now(),
	})
}

// TraceQueryEnd ends the span and records any error.
func (t PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	state, ok := ctx.Value(ctxQueryKey{}).(*queryState)
	if !ok {
		return
	}
	elapsed := time.Since(state.start)
	result := "ok"
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		result = "error"
		state.span.RecordError(data.Err)
		state.span.SetStatus(codes.Error, data.Err.Error())
	}
	state.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	state.span.End()

	if t.Metrics != nil && t.Metrics.QueryDur != nil {
		t.Metrics.QueryDur.WithLabelValues(state.operation, result).Observe(DurationMillis(elapsed))
	}
	if t.Logger != nil && t.SlowThreshold > 0 && elapsed >= t.SlowThreshold {
		t.Logger.Warn().
			Str("operation", state.operation).
			Dur("duration", elapsed).
			Str("sql", truncateSQL(state.sql)).
			Msg("slow query")
	}
}

func sqlOperation(sql string) string {
	fields := strings.Fields(stripSQLCComment(sql))
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

// sqlc prefixes every statement with "-- name: Query :kind".
func stripSQLCComment(sql string) string {
	trimmed := strings.TrimSpace(sql)
	for strings.HasPrefix(trimmed, "--") {
		idx := strings.IndexByte(trimmed, '\n')
		if idx < 0 {
			return ""
		}
		trimmed = strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > 300 {
		return trimmed[:300] + "..."
	}
	return trimmed
}
