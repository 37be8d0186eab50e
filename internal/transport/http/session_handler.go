package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"basketlens/internal/basket"
	apierrors "basketlens/internal/errors"
	"basketlens/internal/exporter"
	"basketlens/internal/middleware"
	"basketlens/internal/services"
)

const maxResultLimit = 10000

type sessionIDKey struct{}

// AnalysisRequest is the optional body of POST /api/sessions/{id}/summary.
// Zero thresholds select the configured defaults.
type AnalysisRequest struct {
	MinSupport    float64  `json:"min_support,omitempty" validate:"omitempty,threshold"`
	MinConfidence float64  `json:"min_confidence,omitempty" validate:"omitempty,threshold"`
	Items         []string `json:"items,omitempty" validate:"omitempty,max=500,dive,itemlabel"`
	Sort          string   `json:"sort,omitempty" validate:"omitempty,oneof=lift confidence support"`
	Limit         int      `json:"limit,omitempty" validate:"gte=-1,lte=10000"`
}

// SessionHandler serves analysis sessions and their mining results
type SessionHandler struct {
	service      AnalysisServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
	body         *middleware.ValidationMiddleware
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SessionHandler {
	logger = logger.With(slog.String("component", "session_handler"))
	return &SessionHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		body:         middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// Routes returns the session routes
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateSession)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Get("/itemsets", h.GetItemsets)
		r.Get("/rules", h.GetRules)
		r.Get("/network", h.GetNetwork)
		r.Get("/summary", h.GetSummary)
		r.Post("/summary", h.PostSummary)
		r.Get("/export/{kind}.{format}", h.Export)
	})

	return r
}

// SessionCtx validates the session id path parameter and stores it in the context
func (h *SessionHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.SessionNotFoundError(id))
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey{}).(string)
	return id
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "session request failed",
		slog.String("operation", op),
		slog.String("session_id", sessionID(r)),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, translateError(err, sessionID(r)))
}

// threshold reads an optional threshold query parameter. A present value must lie
// in (0, 1]; absence yields zero, which selects the configured default.
func (h *SessionHandler) threshold(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	if r.URL.Query().Get(name) == "" {
		return 0, true
	}
	v, ok := h.query.ValidateFloat(w, r, name, 0)
	if !ok {
		return 0, false
	}
	if err := basket.ValidateThreshold(name, v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return 0, false
	}
	return v, true
}

// miningParams parses min_support, min_confidence, sort, limit and items
func (h *SessionHandler) miningParams(w http.ResponseWriter, r *http.Request, defaultLimit int) (services.MiningParams, bool) {
	var p services.MiningParams
	var ok bool

	if p.MinSupport, ok = h.threshold(w, r, "min_support"); !ok {
		return p, false
	}
	if p.MinConfidence, ok = h.threshold(w, r, "min_confidence"); !ok {
		return p, false
	}

	sort, ok := h.query.ValidateEnum(w, r, "sort",
		[]string{string(basket.ByLift), string(basket.ByConfidence), string(basket.BySupport)},
		string(basket.ByLift))
	if !ok {
		return p, false
	}
	p.Sort = basket.RuleMetric(sort)

	if p.Limit, ok = h.query.ValidateInt(w, r, "limit", -1, maxResultLimit, defaultLimit); !ok {
		return p, false
	}
	if p.Items, ok = h.query.ValidateItems(w, r, "items"); !ok {
		return p, false
	}
	return p, true
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.OpenSession(r.Context())
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	render.Status(r, http.StatusCreated)
	respondData(w, r, info)
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.SessionInfo(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, "info", err)
		return
	}
	respondData(w, r, info)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseSession(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	render.NoContent(w, r)
}

// GetItemsets handles GET /api/sessions/{id}/itemsets
func (h *SessionHandler) GetItemsets(w http.ResponseWriter, r *http.Request) {
	params, ok := h.miningParams(w, r, 0)
	if !ok {
		return
	}

	res, err := h.service.Itemsets(r.Context(), sessionID(r), params)
	if err != nil {
		h.fail(w, r, "itemsets", err)
		return
	}
	respondResult(w, r, res, len(res.Itemsets), res.Empty, res.Message)
}

// GetRules handles GET /api/sessions/{id}/rules
func (h *SessionHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	params, ok := h.miningParams(w, r, 0)
	if !ok {
		return
	}

	res, err := h.service.Rules(r.Context(), sessionID(r), params)
	if err != nil {
		h.fail(w, r, "rules", err)
		return
	}
	respondResult(w, r, res, len(res.Rules), res.Empty, res.Message)
}

// GetNetwork handles GET /api/sessions/{id}/network
func (h *SessionHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	params, ok := h.miningParams(w, r, 0)
	if !ok {
		return
	}

	res, err := h.service.Network(r.Context(), sessionID(r), params)
	if err != nil {
		h.fail(w, r, "network", err)
		return
	}
	respondResult(w, r, res, len(res.Network.Edges), res.Empty, res.Message)
}

// GetSummary handles GET /api/sessions/{id}/summary
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	params, ok := h.miningParams(w, r, 0)
	if !ok {
		return
	}
	h.summarize(w, r, params)
}

// PostSummary handles POST /api/sessions/{id}/summary with an AnalysisRequest body
func (h *SessionHandler) PostSummary(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !h.body.DecodeJSON(w, r, &req) {
		return
	}

	metric, err := basket.ParseRuleMetric(req.Sort)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.summarize(w, r, services.MiningParams{
		MinSupport:    req.MinSupport,
		MinConfidence: req.MinConfidence,
		Items:         req.Items,
		Sort:          metric,
		Limit:         req.Limit,
	})
}

func (h *SessionHandler) summarize(w http.ResponseWriter, r *http.Request, params services.MiningParams) {
	res, err := h.service.Summarize(r.Context(), sessionID(r), params)
	if err != nil {
		h.fail(w, r, "summary", err)
		return
	}
	respondResult(w, r, res, res.RuleCount, res.Empty, res.Message)
}

// Export handles GET /api/sessions/{id}/export/{kind}.{format}. Unless a limit is
// given the complete ranked result is exported.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	params, ok := h.miningParams(w, r, -1)
	if !ok {
		return
	}

	var table exporter.Table
	switch kind {
	case "itemsets":
		res, err := h.service.Itemsets(r.Context(), sessionID(r), params)
		if err != nil {
			h.fail(w, r, "export", err)
			return
		}
		table = exporter.ItemsetTable(res.Itemsets)
	case "rules":
		res, err := h.service.Rules(r.Context(), sessionID(r), params)
		if err != nil {
			h.fail(w, r, "export", err)
			return
		}
		table = exporter.RuleTable(res.Rules)
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", "kind must be one of: itemsets, rules"))
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, table); err != nil {
		h.fail(w, r, "export", err)
		return
	}

	filename := fmt.Sprintf("%s-%s%s", kind, sessionID(r)[:8], format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}
