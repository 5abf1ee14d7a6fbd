package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/export"
)

// ChartResponse is the indicator series of one ticker
type ChartResponse struct {
	Ticker string            `json:"ticker"`
	Mode   contracts.Mode    `json:"mode"`
	Rows   []export.ChartRow `json:"rows"`
}

// Chart returns the full indicator series for one ticker
// GET /api/chart/{ticker}?mode=momentum
func (h *ScreenHandler) Chart(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	orchestrator, err := h.orchestrator(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sets, err := orchestrator.Chart(r.Context(), ticker)
	if err != nil {
		var insufficient contracts.InsufficientHistoryError
		switch {
		case errors.Is(err, contracts.ErrNoData):
			respondError(w, http.StatusNotFound, "No data for "+ticker)
		case errors.As(err, &insufficient):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to build chart")
			respondError(w, http.StatusBadGateway, "Failed to retrieve chart data")
		}
		return
	}

	respondJSON(w, http.StatusOK, ChartResponse{
		Ticker: ticker,
		Mode:   orchestrator.Mode(),
		Rows:   export.Rows(ticker, sets),
	})
}
