package audit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-logistik/internal/common"
)

const maxCapturedBody = 16 << 10

// HTTPRecorder writes an audit entry after a request has been handled.
// Failed requests are recorded too; the status column tells them apart.
type HTTPRecorder struct {
	Service   *Service
	OnError   func(error)
	ActorFunc func(*http.Request) Actor
}

// HTTPConfig customises the entry produced for a route.
type HTTPConfig struct {
	Action          string
	ResourceType    string
	ResourceIDParam string
	// ResourceIDFromBody reads the id out of the response body when the
	// route has no id parameter, as for creations.
	ResourceIDFromBody func(body []byte) string
	MetadataFunc       func(*http.Request, int) map[string]any
	ActorFunc          func(*http.Request) Actor
	// SkipStatus suppresses the entry for matching response codes.
	SkipStatus func(int) bool
}

// Middleware returns a chi middleware recording one entry per request.
func (r HTTPRecorder) Middleware(cfg HTTPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.Service == nil || !r.Service.Enabled {
				next.ServeHTTP(w, req)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, capture: cfg.ResourceIDFromBody != nil}
			next.ServeHTTP(rec, req)
			status := rec.Status()
			if cfg.SkipStatus != nil && cfg.SkipStatus(status) {
				return
			}

			actor := r.actor(req)
			if cfg.ActorFunc != nil {
				actor = cfg.ActorFunc(req)
			}
			resourceID := ""
			if cfg.ResourceIDParam != "" {
				resourceID = chi.URLParam(req, cfg.ResourceIDParam)
			}
			if resourceID == "" && rec.capture && status < http.StatusBadRequest {
				resourceID = cfg.ResourceIDFromBody(rec.body.Bytes())
			}
			var metadata []byte
			if cfg.MetadataFunc != nil {
				if payload := cfg.MetadataFunc(req, status); payload != nil {
					metadata, _ = json.Marshal(payload)
				}
			}

			if err := r.Service.Record(req.Context(), actor, cfg.Action, cfg.ResourceType, resourceID, req, status, metadata); err != nil && r.OnError != nil {
				r.OnError(err)
			}
		})
	}
}

// ReturnLineIDs extracts "id" or the comma-joined "ids" of a return line
// creation response.
func ReturnLineIDs(body []byte) string {
	var payload struct {
		ID  int64   `json:"id"`
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.ID > 0 {
		return strconv.FormatInt(payload.ID, 10)
	}
	parts := make([]string, 0, len(payload.IDs))
	for _, id := range payload.IDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func (r HTTPRecorder) actor(req *http.Request) Actor {
	if r.ActorFunc != nil {
		return r.ActorFunc(req)
	}
	if subject, ok := common.UserID(req.Context()); ok {
		return Actor{Kind: ActorKindOperator, Subject: subject}
	}
	return Actor{Kind: ActorKindAnonymous}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	capture bool
	body    bytes.Buffer
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.capture && s.body.Len() < maxCapturedBody {
		s.body.Write(b[:min(len(b), maxCapturedBody-s.body.Len())])
	}
	return s.ResponseWriter.Write(b)
}
