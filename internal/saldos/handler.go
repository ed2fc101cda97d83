package saldos

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// Handler serves the balance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers balance routes under /api/saldos.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{tipo}", h.resumen)
	r.Get("/{tipo}/{id}", h.saldo)
}

func (h *Handler) saldo(w http.ResponseWriter, r *http.Request) {
	tipo, err := socios.ParsePartyType(chi.URLParam(r, "tipo"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	out, err := h.service.Saldo(r.Context(), tipo, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "socio not found")
			return
		}
		h.logger.Error("saldo socio", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) resumen(w http.ResponseWriter, r *http.Request) {
	tipo, err := socios.ParsePartyType(chi.URLParam(r, "tipo"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	out, err := h.service.Resumen(r.Context(), tipo)
	if err != nil {
		h.logger.Error("resumen saldos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
