package main

import (
	"fmt"
	"net/http"
	"os"

	"ipo_valuation/pkg/api/config"
	"ipo_valuation/pkg/api/valuation"
	"ipo_valuation/pkg/core/extract"
	"ipo_valuation/pkg/core/instrument"
	"ipo_valuation/pkg/core/llm"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("[CONFIG] No .env file, using process environment")
	}

	configPath := os.Getenv("ENGINE_CONFIG")
	if configPath == "" {
		configPath = "config/engine.yaml"
	}
	cfg, err := instrument.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("[FATAL] Failed to load engine config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	cfg, err = instrument.ApplyEnvOverrides(cfg)
	if err != nil {
		fmt.Printf("[FATAL] Invalid environment override: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[CONFIG] Loaded %s: discount %.2f, max boost %.2f, iterations %d, workers %d\n",
		configPath, cfg.IPODiscount, cfg.MaxDemandBoost, cfg.Iterations, cfg.SweepWorkers)

	mux := http.NewServeMux()

	// Config endpoints
	configHandler := config.NewHandler(cfg, configPath)
	mux.HandleFunc("/api/ipo/config", configHandler.HandleConfig)

	// Assumption extraction needs a model key
	var extractor extract.Extractor
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		provider := llm.NewGeminiProvider(key, os.Getenv("GEMINI_MODEL"))
		extractor = extract.NewLLMExtractor(provider)
		fmt.Printf("[CONFIG] Extraction enabled with %s\n", provider.Model)
	} else {
		fmt.Println("[CONFIG] GEMINI_API_KEY not set, /api/ipo/extract disabled")
	}

	// Valuation endpoints
	valuationHandler := valuation.NewHandler(cfg, extractor)
	mux.HandleFunc("/api/ipo/instruments", valuationHandler.HandleInstruments)
	mux.HandleFunc("/api/ipo/scenarios", valuationHandler.HandleScenarios)
	mux.HandleFunc("/api/ipo/extract", valuationHandler.HandleExtract)

	mux.Handle("/metrics", promhttp.Handler())

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - GET  /api/ipo/config")
	fmt.Println("  - POST /api/ipo/instruments")
	fmt.Println("  - POST /api/ipo/scenarios")
	fmt.Println("  - POST /api/ipo/extract")
	fmt.Println("  - GET  /metrics")

	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
