package config

import (
	"encoding/json"
	"net/http"

	"ipo_valuation/pkg/core/instrument"
)

type Response struct {
	Engine     instrument.Config `json:"engine"`
	Source     string            `json:"source"`
	Triggers   []string          `json:"trigger_types"`
	Liability  []string          `json:"liability_types"`
	PriceTypes []string          `json:"price_types"`
	Multiples  []string          `json:"multiple_types"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config instrument.Config
	Source string // Path the config was loaded from
}

// NewHandler creates a new config handler
func NewHandler(cfg instrument.Config, source string) *Handler {
	return &Handler{
		Config: cfg,
		Source: source,
	}
}

// HandleConfig reports the active engine tunables and the accepted variant tags
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := Response{
		Engine:     h.Config,
		Source:     h.Source,
		Triggers:   tags(instrument.AllTriggerTypes()),
		Liability:  tags(instrument.AllLiabilityTypes()),
		PriceTypes: tags(instrument.AllPriceTypes()),
		Multiples:  tags(instrument.AllMultipleTypes()),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func tags[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
