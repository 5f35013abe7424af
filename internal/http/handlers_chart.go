package http

import (
	"errors"
	"net/http"
	"strconv"

	"expensetracker/internal/charts"
	applog "expensetracker/internal/log"
)

// handleExpenseChart renders the held expenses as a per-category PNG chart.
// ?kind=bar switches from the default pie.
func (s *Server) handleExpenseChart(w http.ResponseWriter, r *http.Request) {
	_, state, ledger := s.workspace(r)
	if !state.Loaded() {
		if err := ledger.Load(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Charting partially loaded data", applog.FieldError, err)
		}
	}

	img, err := s.charts.CategoryTotals(charts.ParseKind(r.URL.Query().Get("kind")), state.Expenses(), state.Categories())
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Failed to render chart", err, applog.OpRender, nil)
		s.internalError(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
