package transacciones

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// Handler serves the transaction endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers transaction routes under /api/transacciones.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/pendientes", h.listPendientes)
	r.Get("/export", h.exportCSV)
	r.Get("/socio/{tipo}/{id}", h.listPorSocio)
	r.Post("/socio/{tipo}/{id}/restaurar", h.restorePorSocio)
	r.Get("/cuenta/{nombre}", h.listPorCuenta)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/hide", h.hide)
	r.Patch("/{id}/completar", h.completar)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListTransaccionesRequest{IncludeHidden: includeHidden(r)}
	req.Page, req.PerPage = shared.PageFromRequest(r)
	if estado := r.URL.Query().Get("estado"); estado != "" {
		e := Estado(estado)
		req.Estado = &e
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list transacciones", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listPendientes(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPendientes(r.Context())
	if err != nil {
		h.logger.Error("list pendientes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) listPorSocio(w http.ResponseWriter, r *http.Request) {
	ref, err := socioRef(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	page, perPage := shared.PageFromRequest(r)
	resp, err := h.service.ListPorSocio(r.Context(), ref, includeHidden(r), page, perPage)
	if err != nil {
		respondTransaccionError(w, h.logger, "list por socio", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listPorCuenta(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	resp, err := h.service.ListPorCuenta(r.Context(), chi.URLParam(r, "nombre"), includeHidden(r), page, perPage)
	if err != nil {
		respondTransaccionError(w, h.logger, "list por cuenta", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaccion id")
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondTransaccionError(w, h.logger, "get transaccion", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CrearTransaccionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	t, err := h.service.Crear(r.Context(), req)
	if err != nil {
		respondTransaccionError(w, h.logger, "create transaccion", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaccion id")
		return
	}
	var req ActualizarTransaccionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	t, err := h.service.Actualizar(r.Context(), id, req)
	if err != nil {
		respondTransaccionError(w, h.logger, "update transaccion", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaccion id")
		return
	}
	if err := h.service.Eliminar(r.Context(), id); err != nil {
		respondTransaccionError(w, h.logger, "delete transaccion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) hide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaccion id")
		return
	}
	if err := h.service.Ocultar(r.Context(), id); err != nil {
		respondTransaccionError(w, h.logger, "hide transaccion", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"oculto": true})
}

func (h *Handler) completar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaccion id")
		return
	}
	var req CompletarRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	t, err := h.service.Completar(r.Context(), id, req)
	if err != nil {
		respondTransaccionError(w, h.logger, "completar transaccion", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) restorePorSocio(w http.ResponseWriter, r *http.Request) {
	ref, err := socioRef(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	n, err := h.service.RestaurarSocio(r.Context(), ref)
	if err != nil {
		respondTransaccionError(w, h.logger, "restore por socio", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"restaurados": n})
}

func includeHidden(r *http.Request) bool {
	return r.URL.Query().Get("includeHidden") == "true"
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func socioRef(r *http.Request) (SocioRef, error) {
	tipo, err := socios.ParsePartyType(chi.URLParam(r, "tipo"))
	if err != nil {
		return SocioRef{}, err
	}
	return SocioRef{Tipo: tipo, ID: chi.URLParam(r, "id")}, nil
}

func respondTransaccionError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "transaccion not found")
		return
	}
	logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
