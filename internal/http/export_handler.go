package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	queries   bookingQueries
	responder responder
	logger    *slog.Logger
}

func NewExportHandler(queries bookingQueries, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{queries: queries, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// Bookings streams every booking as an XLSX workbook. Administrators only.
func (h *ExportHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if !principal.IsAdmin() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	views, err := h.queries.ListBookings(r.Context(), principal, application.BookingQuery{})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookingsXLSX(&buf, views); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ExportHandler", "Bookings", "rows", len(views)).
		InfoContext(r.Context(), "bookings exported")
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
