package viajes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
)

// Handler serves the trip endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers trip routes under /api/viajes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/restaurar", h.restore)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Patch("/{id}/hide", h.hide)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListViajesRequest{IncludeHidden: r.URL.Query().Get("includeHidden") == "true"}
	req.Page, req.PerPage = shared.PageFromRequest(r)
	req.MinaID = queryID(r, "minaId")
	req.CompradorID = queryID(r, "compradorId")
	req.VolqueteroID = queryID(r, "volqueteroId")
	if estado := r.URL.Query().Get("estado"); estado != "" {
		e := Estado(estado)
		req.Estado = &e
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list viajes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid viaje id")
		return
	}
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondViajeError(w, h.logger, "get viaje", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CrearViajeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	v, err := h.service.Crear(r.Context(), req)
	if err != nil {
		respondViajeError(w, h.logger, "create viaje", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid viaje id")
		return
	}
	var req ActualizarViajeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	v, err := h.service.Actualizar(r.Context(), id, req)
	if err != nil {
		respondViajeError(w, h.logger, "update viaje", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) hide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid viaje id")
		return
	}
	if err := h.service.Ocultar(r.Context(), id); err != nil {
		respondViajeError(w, h.logger, "hide viaje", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"oculto": true})
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	var req RestaurarRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	n, err := h.service.Restaurar(r.Context(), req)
	if err != nil {
		respondViajeError(w, h.logger, "restore viajes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"restaurados": n})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryID(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func respondViajeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "viaje not found")
		return
	}
	logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
