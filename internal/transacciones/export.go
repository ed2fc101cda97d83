package transacciones

import (
	"bufio"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// exportCSV streams the full transaction listing as CSV. Rows flush in
// batches so large exports do not buffer entirely in memory.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	req := ListTransaccionesRequest{IncludeHidden: includeHidden(r)}
	if estado := r.URL.Query().Get("estado"); estado != "" {
		e := Estado(estado)
		req.Estado = &e
	}

	items, err := h.service.repo.ListAll(r.Context(), BalanceFilter{})
	if err != nil {
		h.logger.Error("export transacciones", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacciones.csv"`)

	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true

	header := []string{"id", "fecha", "origen_tipo", "origen_id", "destino_tipo", "destino_id",
		"monto", "metodo_pago", "concepto", "estado", "oculto"}
	if err := writer.Write(header); err != nil {
		h.logger.Error("export transacciones header", slog.Any("error", err))
		return
	}

	pending := 0
	for _, t := range items {
		if req.Estado != nil && t.Estado != *req.Estado {
			continue
		}
		if !req.IncludeHidden && t.Oculto {
			continue
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Fecha.Format(time.DateOnly),
			string(t.Origen.Tipo), t.Origen.ID,
			string(t.Destino.Tipo), t.Destino.ID,
			t.Monto.String(),
			t.MetodoPago,
			t.Concepto,
			string(t.Estado),
			strconv.FormatBool(t.Oculto),
		}
		if err := writer.Write(row); err != nil {
			h.logger.Error("export transacciones row", slog.Any("error", err))
			return
		}
		pending++
		if pending >= csvFlushEvery {
			writer.Flush()
			if err := buf.Flush(); err != nil {
				return
			}
			pending = 0
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("export transacciones flush", slog.Any("error", err))
		return
	}
	_ = buf.Flush()
}
