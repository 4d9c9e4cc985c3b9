package instrument

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Config holds the engine tunables. Loaded from config/engine.yaml; keys
// omitted from the file keep their DefaultConfig value.
type Config struct {
	GrowthPremiumThreshold float64 `yaml:"growth_premium_threshold" json:"growth_premium_threshold"` // Revenue growth above which the premium applies
	GrowthPremium          float64 `yaml:"growth_premium" json:"growth_premium"`
	IPODiscount            float64 `yaml:"ipo_discount" json:"ipo_discount"` // Used when the assumptions carry none
	MaxDemandBoost         float64 `yaml:"max_demand_boost" json:"max_demand_boost"`
	Iterations             int     `yaml:"iterations" json:"iterations"` // 1 = single pass
	Tolerance              float64 `yaml:"tolerance" json:"tolerance"`
	SweepWorkers           int     `yaml:"sweep_workers" json:"sweep_workers"`
}

// DefaultConfig returns the single-pass engine defaults
func DefaultConfig() Config {
	return Config{
		GrowthPremiumThreshold: 2.0,
		GrowthPremium:          0.0,
		IPODiscount:            0.15,
		MaxDemandBoost:         0.20,
		Iterations:             1,
		Tolerance:              1e-6,
		SweepWorkers:           4,
	}
}

// withDefaults fills the loop and pool settings only. Zero is a real value for
// the threshold, premium and boost cap; callers building a Config by hand
// start from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Iterations < 1 {
		c.Iterations = def.Iterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = def.Tolerance
	}
	if c.SweepWorkers < 1 {
		c.SweepWorkers = def.SweepWorkers
	}
	return c
}

// Validate rejects out-of-domain tunables
func (c Config) Validate() error {
	if c.IPODiscount < 0 || c.IPODiscount >= 1 {
		return newValuationError("config.ipo_discount", c.IPODiscount, "must be within [0, 1)")
	}
	if c.GrowthPremium < 0 {
		return newValuationError("config.growth_premium", c.GrowthPremium, "must not be negative")
	}
	if c.MaxDemandBoost < 0 {
		return newValuationError("config.max_demand_boost", c.MaxDemandBoost, "must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse engine config: %w", err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies IPO_DISCOUNT and SWEEP_WORKERS on top of a loaded config
func ApplyEnvOverrides(cfg Config) (Config, error) {
	if v := os.Getenv("IPO_DISCOUNT"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("IPO_DISCOUNT: %w", err)
		}
		cfg.IPODiscount = d
	}
	if v := os.Getenv("SWEEP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SWEEP_WORKERS: %w", err)
		}
		cfg.SweepWorkers = n
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
