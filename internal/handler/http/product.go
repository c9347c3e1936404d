package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/serializer"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/service"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/httputil"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/pagination"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/validator"
)

// ProductSyncer is the part of service.SyncService the admin API drives.
type ProductSyncer interface {
	PreviewProduct(ctx context.Context, code string) (*serializer.ProductPayload, error)
	SynchronizeProduct(ctx context.Context, code string) error
	RemoveProduct(ctx context.Context, code string) error
	SynchronizeAll(ctx context.Context, batchSize int) (service.SyncReport, error)
	ListProducts(ctx context.Context, page, perPage int) (pagination.Result[string], error)
}

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service ProductSyncer
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc ProductSyncer, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / response DTOs ---

// SynchronizeAllRequest is the optional JSON body of a full synchronization.
// A zero batch size uses the configured default.
type SynchronizeAllRequest struct {
	BatchSize int `json:"batch_size" validate:"omitempty,gte=1,lte=1000"`
}

// AcceptedResponse acknowledges a published product message.
type AcceptedResponse struct {
	Code   string `json:"code"`
	Action string `json:"action"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	result, err := h.service.ListProducts(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// PreviewProduct handles GET /api/v1/products/{code}/payload. The mapped
// record is written as is, exactly as it would be published.
func (h *ProductHandler) PreviewProduct(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.PreviewProduct(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, payload)
}

// SynchronizeProduct handles POST /api/v1/products/{code}/synchronize
func (h *ProductHandler) SynchronizeProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.service.SynchronizeProduct(r.Context(), code); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, AcceptedResponse{Code: code, Action: "synchronize"})
}

// RemoveProduct handles DELETE /api/v1/products/{code}
func (h *ProductHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.service.RemoveProduct(r.Context(), code); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, AcceptedResponse{Code: code, Action: "remove"})
}

// SynchronizeAll handles POST /api/v1/products/synchronize. It runs in the
// request and answers with the report once every product was attempted.
func (h *ProductHandler) SynchronizeAll(w http.ResponseWriter, r *http.Request) {
	var req SynchronizeAllRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.service.SynchronizeAll(r.Context(), req.BatchSize)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, report)
}
