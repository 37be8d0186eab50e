package http

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "basketlens/internal/errors"
	"basketlens/internal/middleware"
)

const (
	defaultFrequencyLimit = 20
	maxFrequencyLimit     = 1000
	defaultRecordLimit    = 100
	maxRecordLimit        = 5000
)

// DatasetHandler serves exploration queries over the loaded transaction log
type DatasetHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	logger = logger.With(slog.String("component", "dataset_handler"))
	return &DatasetHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetOverview)
	r.Get("/overview", h.GetOverview)
	r.Get("/items", h.GetItems)
	r.Get("/item-frequency", h.GetItemFrequency)
	r.Get("/pairs", h.GetPairs)
	r.Get("/basket-sizes", h.GetBasketSizes)
	r.Get("/records", h.GetRecords)

	return r
}

func (h *DatasetHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "dataset query failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, translateError(err, ""))
}

// GetOverview handles GET /api/dataset/overview
func (h *DatasetHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.fail(w, r, "overview", err)
		return
	}
	respondData(w, r, info)
}

// GetItems handles GET /api/dataset/items
func (h *DatasetHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items(r.Context())
	if err != nil {
		h.fail(w, r, "items", err)
		return
	}
	respondList(w, r, items, len(items))
}

// GetItemFrequency handles GET /api/dataset/item-frequency?limit=
func (h *DatasetHandler) GetItemFrequency(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, maxFrequencyLimit, defaultFrequencyLimit)
	if !ok {
		return
	}

	freq, err := h.service.ItemFrequency(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "item_frequency", err)
		return
	}
	respondList(w, r, freq, len(freq))
}

// GetPairs handles GET /api/dataset/pairs?limit=&items=
func (h *DatasetHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, maxFrequencyLimit, defaultFrequencyLimit)
	if !ok {
		return
	}
	items, ok := h.query.ValidateItems(w, r, "items")
	if !ok {
		return
	}

	pairs, err := h.service.PairCooccurrence(r.Context(), items, limit)
	if err != nil {
		h.fail(w, r, "pairs", err)
		return
	}
	respondList(w, r, pairs, len(pairs))
}

// GetBasketSizes handles GET /api/dataset/basket-sizes?items=
func (h *DatasetHandler) GetBasketSizes(w http.ResponseWriter, r *http.Request) {
	items, ok := h.query.ValidateItems(w, r, "items")
	if !ok {
		return
	}

	sizes, err := h.service.BasketSizes(r.Context(), items)
	if err != nil {
		h.fail(w, r, "basket_sizes", err)
		return
	}
	respondList(w, r, sizes, len(sizes))
}

// GetRecords handles GET /api/dataset/records?offset=&limit=
func (h *DatasetHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	offset, ok := h.query.ValidateInt(w, r, "offset", 0, math.MaxInt32, 0)
	if !ok {
		return
	}
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, maxRecordLimit, defaultRecordLimit)
	if !ok {
		return
	}

	page, err := h.service.Records(r.Context(), offset, limit)
	if err != nil {
		h.fail(w, r, "records", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   page.Records,
		"count":  len(page.Records),
		"offset": page.Offset,
		"limit":  page.Limit,
		"total":  page.Total,
	})
}
