package resi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-logistik/internal/common"
	"github.com/noah-isme/backend-logistik/internal/lock"
	"github.com/noah-isme/backend-logistik/internal/obs"
)

// Error codes specific to return lines.
const (
	CodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	CodeProductNotFound  = "PRODUCT_NOT_FOUND"
	CodeLocked           = "RECORD_LOCKED"
)

// CreateRequest is the body of a single-line creation.
type CreateRequest struct {
	Header Header `json:"bolla"`
	Line
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Service        *Service
	Logger         zerolog.Logger
	DefaultPerPage int
}

// Handler exposes return line operations over HTTP.
type Handler struct {
	svc     *Service
	logger  zerolog.Logger
	perPage int
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	perPage := cfg.DefaultPerPage
	if perPage <= 0 {
		perPage = 50
	}
	return &Handler{svc: cfg.Service, logger: cfg.Logger, perPage: perPage}
}

// Routes mounts the read endpoints and the given mutation routes on r.
// mutate wraps handlers that change data, e.g. with idempotency or audit.
func (h *Handler) Routes(r chi.Router, mutate func(http.Handler) http.Handler) {
	if mutate == nil {
		mutate = func(next http.Handler) http.Handler { return next }
	}
	r.Get("/lookup", h.Lookup)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(mutate).Post("/batch", h.Batch)
	r.With(mutate).Post("/", h.Create)
	r.With(mutate).Put("/{id}", h.Update)
}

// Lookup answers GET /lookup?type=cliente|prodotto&code=.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Lookup(r.Context(), q.Get("type"), q.Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, res)
}

// Batch registers a whole document.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req Batch
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, res)
}

// Create stores one line.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	line, err := h.svc.Create(r.Context(), req.Header, req.Line)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, line)
}

// Update rewrites one line.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateInput
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	line, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, line)
}

// Get returns one line.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	line, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, line)
}

// List returns a page of lines filtered by document_number and customer_code.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.perPage)
	q := r.URL.Query()
	res, err := h.svc.List(r.Context(), ListParams{
		DocumentNumber: q.Get("document_number"),
		CustomerCode:   q.Get("customer_code"),
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONPage(w, res.Items, common.NewPagination(res.Page, res.PerPage, res.Total))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid return line id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *ValidationError
		miss *ResolutionMiss
		perr *PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		common.JSONValidation(w, verr.Errors)
	case errors.As(err, &miss):
		code := CodeProductNotFound
		if miss.Kind == KindCustomer {
			code = CodeCustomerNotFound
		}
		common.JSONError(w, http.StatusBadRequest, code, miss.Error(), nil)
	case errors.Is(err, ErrReturnLineNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "return line not found", nil)
	case errors.Is(err, lock.ErrNotAcquired):
		common.JSONError(w, http.StatusConflict, CodeLocked, "return line is being edited, retry later", nil)
	default:
		if common.WriteAppError(w, err) {
			return
		}
		log := obs.LoggerFrom(r.Context(), h.logger)
		evt := log.Error().Err(err)
		if errors.As(err, &perr) {
			evt = evt.Str("op", perr.Op)
		}
		evt.Msg("return line request failed")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal server error", nil)
	}
}
