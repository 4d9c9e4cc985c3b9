package main

import (
	"encoding/json"
	"fmt"
	"os"

	"ipo_valuation/pkg/core/instrument"
	"ipo_valuation/pkg/core/valuation"
)

// request mirrors the API body of POST /api/ipo/instruments
type request struct {
	Assumptions      instrument.IPOAssumptions  `json:"assumptions"`
	BaseValuation    float64                    `json:"base_valuation,omitempty"`
	TheoreticalPrice float64                    `json:"theoretical_price,omitempty"`
	OfferPrice       float64                    `json:"offer_price,omitempty"`
	DCF              *valuation.DCFSeed         `json:"dcf,omitempty"`
	Peers            []valuation.PeerComparable `json:"peers,omitempty"`
}

func (r request) seeds() (valuation.Seeds, error) {
	base, err := valuation.ResolveBase(r.BaseValuation, r.DCF, r.Assumptions.PreIPOSharesMillions)
	if err != nil {
		return valuation.Seeds{}, err
	}
	return valuation.Seeds{
		BaseValuation:    base,
		TheoreticalPrice: r.TheoreticalPrice,
		OfferPrice:       r.OfferPrice,
	}, nil
}

// readPayload returns --data, or the contents of --file
func readPayload() ([]byte, error) {
	switch {
	case rootFlags.data != "" && rootFlags.file != "":
		return nil, fmt.Errorf("use either --data or --file, not both")
	case rootFlags.data != "":
		return []byte(rootFlags.data), nil
	case rootFlags.file != "":
		b, err := os.ReadFile(rootFlags.file)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("no data provided: pass --data or --file")
	}
}

func readRequest() (request, error) {
	var req request
	b, err := readPayload()
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	req.Assumptions = valuation.WithPeerMultiples(req.Assumptions, req.Peers)
	return req, nil
}

func loadConfig() (instrument.Config, error) {
	path := rootFlags.configPath
	if path == "" {
		path = os.Getenv("ENGINE_CONFIG")
	}
	if path == "" {
		path = "config/engine.yaml"
	}
	cfg, err := instrument.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	return instrument.ApplyEnvOverrides(cfg)
}
