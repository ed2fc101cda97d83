package socios

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
)

// Handler serves the reference list endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the reference routes on the /api router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/minas", h.listMinas)
	r.Get("/compradores", h.listCompradores)
	r.Get("/volqueteros", h.listVolqueteros)
	r.Get("/terceros", h.listTerceros)
	r.Get("/rodmar-cuentas", h.listCuentas)
}

func (h *Handler) listMinas(w http.ResponseWriter, r *http.Request) {
	minas, err := h.service.ListMinas(r.Context())
	if err != nil {
		h.logger.Error("list minas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, minas)
}

func (h *Handler) listCompradores(w http.ResponseWriter, r *http.Request) {
	compradores, err := h.service.ListCompradores(r.Context())
	if err != nil {
		h.logger.Error("list compradores", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, compradores)
}

func (h *Handler) listVolqueteros(w http.ResponseWriter, r *http.Request) {
	volqueteros, err := h.service.ListVolqueteros(r.Context())
	if err != nil {
		h.logger.Error("list volqueteros", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, volqueteros)
}

func (h *Handler) listTerceros(w http.ResponseWriter, r *http.Request) {
	terceros, err := h.service.ListTerceros(r.Context())
	if err != nil {
		h.logger.Error("list terceros", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, terceros)
}

func (h *Handler) listCuentas(w http.ResponseWriter, r *http.Request) {
	cuentas, err := h.service.ListCuentas(r.Context())
	if err != nil {
		h.logger.Error("list cuentas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cuentas)
}
