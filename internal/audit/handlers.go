package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/noah-isme/backend-logistik/internal/common"
	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

// LogEntry is the JSON view of a stored audit row.
type LogEntry struct {
	ID           int64           `json:"id"`
	ActorKind    string          `json:"actor_kind"`
	ActorUserID  *string         `json:"actor_user_id,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   *string         `json:"resource_id,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Status       int32           `json:"status"`
	RequestID    *string         `json:"request_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Handler exposes HTTP endpoints for working with audit logs.
type Handler struct {
	Store Store
}

// List returns a paginated list of audit logs, optionally filtered by resource_type.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_NOT_CONFIGURED", "audit store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	rows, err := h.Store.ListAuditLogs(r.Context(), dbgen.ListAuditLogsParams{
		ResourceType: repo.Text(r.URL.Query().Get("resource_type")),
		LimitValue:   int32(perPage),
		OffsetValue:  int32(common.Offset(page, perPage)),
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "unable to fetch audit logs", nil)
		return
	}
	out := make([]LogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, LogEntry{
			ID:           row.ID,
			ActorKind:    row.ActorKind,
			ActorUserID:  repo.TextPtr(row.ActorUserID),
			Action:       row.Action,
			ResourceType: row.ResourceType,
			ResourceID:   repo.TextPtr(row.ResourceID),
			Method:       row.Method,
			Path:         row.Path,
			Status:       row.Status,
			RequestID:    repo.TextPtr(row.RequestID),
			Metadata:     json.RawMessage(row.Metadata),
			CreatedAt:    repo.Timestamp(row.CreatedAt),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out, "page": page, "per_page": perPage})
}
