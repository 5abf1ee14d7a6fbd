package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

const maxTopN = 5

// ScreenHandler handles screening and chart endpoints.
// Only one screening run executes at a time.
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	screeners   map[contracts.Mode]*brain.Orchestrator
	defaultMode contracts.Mode
	base        brain.RunConfig
	busy        chan struct{}
	logger      *logger.Logger
}

// NewScreenHandler creates a screen handler.
// base carries the universe and strategy identity; the first orchestrator's mode is the default.
func NewScreenHandler(base brain.RunConfig, log *logger.Logger, orchestrators ...*brain.Orchestrator) (*ScreenHandler, error) {
	if len(orchestrators) == 0 {
		return nil, fmt.Errorf("at least one orchestrator is required")
	}

	screeners := make(map[contracts.Mode]*brain.Orchestrator, len(orchestrators))
	for _, o := range orchestrators {
		screeners[o.Mode()] = o
	}

	return &ScreenHandler{
		screeners:   screeners,
		defaultMode: orchestrators[0].Mode(),
		base:        base,
		busy:        make(chan struct{}, 1),
		logger:      log,
	}, nil
}

// Screen runs a full screening pass and returns rankings
// GET /api/screen?mode=opportunity&top=3
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	orchestrator, config, err := h.resolve(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.acquire() {
		respondError(w, http.StatusConflict, "A screening run is already in progress")
		return
	}
	defer h.release()

	result, err := orchestrator.Run(r.Context(), config, nil)
	if err != nil {
		if r.Context().Err() != nil {
			h.logger.WithError(err).Warn("Client went away during screening run")
			return
		}
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, http.StatusInternalServerError, "Screening run failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// resolve picks the orchestrator and run config from the query string
func (h *ScreenHandler) resolve(r *http.Request) (*brain.Orchestrator, brain.RunConfig, error) {
	config := h.base
	query := r.URL.Query()

	orchestrator, err := h.orchestrator(query.Get("mode"))
	if err != nil {
		return nil, config, err
	}

	if raw := query.Get("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top < 1 || top > maxTopN {
			return nil, config, fmt.Errorf("top must be an integer in 1..%d", maxTopN)
		}
		config.TopN = top
	}

	return orchestrator, config, nil
}

func (h *ScreenHandler) orchestrator(rawMode string) (*brain.Orchestrator, error) {
	mode := h.defaultMode
	if rawMode != "" {
		parsed, err := contracts.ParseMode(rawMode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	o, ok := h.screeners[mode]
	if !ok {
		return nil, fmt.Errorf("mode %s is not enabled on this server", mode)
	}
	return o, nil
}

func (h *ScreenHandler) acquire() bool {
	select {
	case h.busy <- struct{}{}:
		return true
	default:
		return false
	}
}

func (h *ScreenHandler) release() {
	<-h.busy
}
