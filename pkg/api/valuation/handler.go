package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ipo_valuation/pkg/core/extract"
	"ipo_valuation/pkg/core/instrument"
	"ipo_valuation/pkg/core/scenario"
	coreValuation "ipo_valuation/pkg/core/valuation"

	"github.com/google/uuid"
)

const (
	endpointInstruments = "instruments"
	endpointScenarios   = "scenarios"
	endpointExtract     = "extract"
)

// Handler serves the waterfall endpoints. Extractor is optional; without one
// the extract endpoint answers 503.
type Handler struct {
	Config    instrument.Config
	Extractor extract.Extractor
}

// NewHandler creates a new valuation handler
func NewHandler(cfg instrument.Config, extractor extract.Extractor) *Handler {
	return &Handler{Config: cfg, Extractor: extractor}
}

// InstrumentRequest is the body of POST /api/ipo/instruments.
// Seeds left at zero are computed from the base valuation.
type InstrumentRequest struct {
	Assumptions      instrument.IPOAssumptions `json:"assumptions"`
	BaseValuation    float64                   `json:"base_valuation,omitempty"`
	TheoreticalPrice float64                   `json:"theoretical_price,omitempty"`
	OfferPrice       float64                   `json:"offer_price,omitempty"`
	DCF              *coreValuation.DCFSeed    `json:"dcf,omitempty"` // Used when base_valuation is absent
	// Fills valuation_multiples when the assumptions carry none
	Peers []coreValuation.PeerComparable `json:"peers,omitempty"`
}

type InstrumentResponse struct {
	RunID  string                             `json:"run_id"`
	Seeds  coreValuation.Seeds                `json:"seeds"`
	Result *instrument.InstrumentEngineResult `json:"result"`
}

// ScenarioRequest is the body of POST /api/ipo/scenarios. Explicit scenarios
// win; otherwise the discount x anchor-scale grid is swept.
type ScenarioRequest struct {
	InstrumentRequest
	Scenarios    []scenario.Scenario `json:"scenarios,omitempty"`
	Discounts    []float64           `json:"discounts,omitempty"`
	AnchorScales []float64           `json:"anchor_scales,omitempty"`
}

type ScenarioResponse struct {
	RunID    string             `json:"run_id"`
	Outcomes []scenario.Outcome `json:"outcomes"`
}

// ExtractRequest is the body of POST /api/ipo/extract
type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	RunID       string                     `json:"run_id"`
	Assumptions *instrument.IPOAssumptions `json:"assumptions"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *Handler) HandleInstruments(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engineRuns.WithLabelValues(endpointInstruments).Inc()

	var req InstrumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, endpointInstruments, fmt.Errorf("invalid request body: %w", err), true)
		return
	}

	runID := uuid.New().String()
	fmt.Printf("[VALUATION] Run %s: %s\n", runID, req.Assumptions.CompanyName)

	input, seeds, err := h.engineInput(req)
	if err != nil {
		writeError(w, endpointInstruments, err, false)
		return
	}

	start := time.Now()
	res, err := instrument.Run(input, h.Config)
	engineDuration.WithLabelValues(endpointInstruments).Observe(time.Since(start).Seconds())
	if err != nil {
		fmt.Printf("[VALUATION] Run %s failed: %v\n", runID, err)
		writeError(w, endpointInstruments, err, false)
		return
	}
	fmt.Printf("[VALUATION] Run %s: offer %.4f -> adjusted %.4f over %.4fM shares\n",
		runID, res.TentativeOfferPrice, res.AdjustedOfferPrice, res.AdjustedShareCount)

	writeJSON(w, http.StatusOK, InstrumentResponse{RunID: runID, Seeds: seeds, Result: res})
}

func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engineRuns.WithLabelValues(endpointScenarios).Inc()

	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, endpointScenarios, fmt.Errorf("invalid request body: %w", err), true)
		return
	}

	input, _, err := h.engineInput(req.InstrumentRequest)
	if err != nil {
		writeError(w, endpointScenarios, err, false)
		return
	}

	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		discounts := req.Discounts
		if len(discounts) == 0 {
			discounts = []float64{h.Config.IPODiscount}
		}
		scenarios = scenario.Grid(discounts, req.AnchorScales)
	}

	runID := uuid.New().String()
	fmt.Printf("[VALUATION] Sweep %s: %d scenarios on %d workers\n", runID, len(scenarios), h.Config.SweepWorkers)

	start := time.Now()
	outcomes, err := scenario.Sweep(r.Context(), input, scenarios, h.Config, h.Config.SweepWorkers)
	engineDuration.WithLabelValues(endpointScenarios).Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, endpointScenarios, err, false)
		return
	}

	writeJSON(w, http.StatusOK, ScenarioResponse{RunID: runID, Outcomes: outcomes})
}

// HandleExtract turns prospectus text into normalized assumptions through the LLM extractor
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engineRuns.WithLabelValues(endpointExtract).Inc()

	if h.Extractor == nil {
		engineErrors.WithLabelValues(endpointExtract, "unavailable").Inc()
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no extraction provider configured"})
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, endpointExtract, fmt.Errorf("invalid request body: %w", err), true)
		return
	}
	if req.Text == "" {
		writeError(w, endpointExtract, fmt.Errorf("text is required"), true)
		return
	}

	runID := uuid.New().String()
	fmt.Printf("[EXTRACT] Run %s: %d chars\n", runID, len(req.Text))

	start := time.Now()
	a, err := h.Extractor.Extract(r.Context(), req.Text)
	engineDuration.WithLabelValues(endpointExtract).Observe(time.Since(start).Seconds())
	if err != nil {
		fmt.Printf("[EXTRACT] Run %s failed: %v\n", runID, err)
		writeError(w, endpointExtract, err, false)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{RunID: runID, Assumptions: a})
}

func (h *Handler) engineInput(req InstrumentRequest) (instrument.EngineInput, coreValuation.Seeds, error) {
	base, err := coreValuation.ResolveBase(req.BaseValuation, req.DCF, req.Assumptions.PreIPOSharesMillions)
	if err != nil {
		return instrument.EngineInput{}, coreValuation.Seeds{}, err
	}
	a := coreValuation.WithPeerMultiples(req.Assumptions, req.Peers)
	return coreValuation.PrepareInput(a, coreValuation.Seeds{
		BaseValuation:    base,
		TheoreticalPrice: req.TheoreticalPrice,
		OfferPrice:       req.OfferPrice,
	}, h.Config)
}

// writeError maps ValuationError and decode failures to 400, everything else to 500
func writeError(w http.ResponseWriter, endpoint string, err error, decode bool) {
	var verr *instrument.ValuationError
	switch {
	case decode:
		engineErrors.WithLabelValues(endpoint, "decode").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &verr):
		engineErrors.WithLabelValues(endpoint, "valuation").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	default:
		engineErrors.WithLabelValues(endpoint, "internal").Inc()
		fmt.Printf("[ERROR] %s: %v\n", endpoint, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[WARNING] Failed to encode response: %v\n", err)
	}
}
