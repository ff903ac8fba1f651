package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gophi/domain/distance"
	"gophi/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Phi    PhiConfig
	Cache  CacheConfig
	Server ServerConfig
	Log    LogConfig
}

// SystemCuts selects how the SIA search partitions a system.
type SystemCuts string

const (
	SystemCuts30Style      SystemCuts = "3.0_STYLE"
	SystemCutsConceptStyle SystemCuts = "CONCEPT_STYLE"
)

// PhiConfig holds the options that change what the engine computes or how
// it schedules work.
type PhiConfig struct {
	Measure                              distance.Measure
	UseSmallPhiDifferenceForCESDistance  bool
	CutOneApproximation                  bool
	SystemCuts                           SystemCuts
	SingleMicroNodesWithSelfloopsHavePhi bool
	PickSmallestPurview                  bool

	ParallelCutEvaluation     bool
	ParallelConceptEvaluation bool
	ParallelComplexEvaluation bool
	// NumberOfCores is signed: negative values count back from NumCPU+1.
	NumberOfCores int

	CacheSIAs     bool
	CacheConcepts bool

	Precision int
}

// CacheConfig holds the persistent SIA store settings
type CacheConfig struct {
	Enabled bool
	Driver  string // sqlite | postgres
	DSN     string
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port    string
	GinMode string
	Timeout time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Phi: DefaultPhi(),
		Cache: CacheConfig{
			Enabled: false,
			Driver:  "sqlite",
			DSN:     "file:gophi-cache.db?_pragma=busy_timeout(5000)",
		},
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
			Timeout: 5 * time.Minute,
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// DefaultPhi returns the reference engine options.
func DefaultPhi() PhiConfig {
	return PhiConfig{
		Measure:                              distance.MeasureEMD,
		UseSmallPhiDifferenceForCESDistance:  false,
		CutOneApproximation:                  false,
		SystemCuts:                           SystemCuts30Style,
		SingleMicroNodesWithSelfloopsHavePhi: true,
		PickSmallestPurview:                  false,
		ParallelCutEvaluation:                true,
		ParallelConceptEvaluation:            false,
		ParallelComplexEvaluation:            false,
		NumberOfCores:                        -1,
		CacheSIAs:                            false,
		CacheConcepts:                        true,
		Precision:                            distance.DefaultPrecision,
	}
}

// Load reads configuration from PHI_-prefixed environment variables on top
// of the defaults and validates it
func Load() (*Config, error) {
	config := Default()

	phi, err := loadPhiConfig(config.Phi)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load engine configuration")
	}
	config.Phi = *phi
	config.Cache = *loadCacheConfig(config.Cache)
	config.Server = *loadServerConfig(config.Server)
	config.Log = LogConfig{Level: getEnvOrDefault("LOG_LEVEL", config.Log.Level)}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadPhiConfig(d PhiConfig) (*PhiConfig, error) {
	measure := d.Measure
	if raw := os.Getenv("PHI_MEASURE"); raw != "" {
		m, err := distance.ParseMeasure(raw)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		measure = m
	}

	return &PhiConfig{
		Measure:                              measure,
		UseSmallPhiDifferenceForCESDistance:  getEnvBoolOrDefault("PHI_USE_SMALL_PHI_DIFFERENCE_FOR_CES_DISTANCE", d.UseSmallPhiDifferenceForCESDistance),
		CutOneApproximation:                  getEnvBoolOrDefault("PHI_CUT_ONE_APPROXIMATION", d.CutOneApproximation),
		SystemCuts:                           SystemCuts(strings.ToUpper(getEnvOrDefault("PHI_SYSTEM_CUTS", string(d.SystemCuts)))),
		SingleMicroNodesWithSelfloopsHavePhi: getEnvBoolOrDefault("PHI_SINGLE_MICRO_NODES_WITH_SELFLOOPS_HAVE_PHI", d.SingleMicroNodesWithSelfloopsHavePhi),
		PickSmallestPurview:                  getEnvBoolOrDefault("PHI_PICK_SMALLEST_PURVIEW", d.PickSmallestPurview),
		ParallelCutEvaluation:                getEnvBoolOrDefault("PHI_PARALLEL_CUT_EVALUATION", d.ParallelCutEvaluation),
		ParallelConceptEvaluation:            getEnvBoolOrDefault("PHI_PARALLEL_CONCEPT_EVALUATION", d.ParallelConceptEvaluation),
		ParallelComplexEvaluation:            getEnvBoolOrDefault("PHI_PARALLEL_COMPLEX_EVALUATION", d.ParallelComplexEvaluation),
		NumberOfCores:                        getEnvIntOrDefault("PHI_NUMBER_OF_CORES", d.NumberOfCores),
		CacheSIAs:                            getEnvBoolOrDefault("PHI_CACHE_SIAS", d.CacheSIAs),
		CacheConcepts:                        getEnvBoolOrDefault("PHI_CACHE_CONCEPTS", d.CacheConcepts),
		Precision:                            getEnvIntOrDefault("PHI_PRECISION", d.Precision),
	}, nil
}

func loadCacheConfig(d CacheConfig) *CacheConfig {
	return &CacheConfig{
		Enabled: getEnvBoolOrDefault("PHI_CACHE_STORE_ENABLED", d.Enabled),
		Driver:  strings.ToLower(getEnvOrDefault("PHI_CACHE_DRIVER", d.Driver)),
		DSN:     getEnvOrDefault("PHI_CACHE_DSN", d.DSN),
	}
}

func loadServerConfig(d ServerConfig) *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", d.Port),
		GinMode: getEnvOrDefault("GIN_MODE", d.GinMode),
		Timeout: getEnvDurationOrDefault("PHI_REQUEST_TIMEOUT", d.Timeout),
	}
}

// Validate checks every option for a usable value
func (c *Config) Validate() error {
	if err := c.Phi.Validate(); err != nil {
		return err
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "sqlite", "postgres":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unknown cache driver %q", c.Cache.Driver))
		}
		if c.Cache.DSN == "" {
			return errors.ConfigInvalid("cache DSN is required when the cache store is enabled")
		}
	}
	return nil
}

// Validate checks the engine options
func (p PhiConfig) Validate() error {
	if _, err := distance.ParseMeasure(string(p.Measure)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	switch p.SystemCuts {
	case SystemCuts30Style, SystemCutsConceptStyle:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown SYSTEM_CUTS %q", p.SystemCuts))
	}
	if p.NumberOfCores == 0 {
		return errors.ConfigInvalid("NUMBER_OF_CORES cannot be 0")
	}
	if p.Precision < 0 || p.Precision > 15 {
		return errors.ConfigInvalid(fmt.Sprintf("PRECISION %d out of range [0, 15]", p.Precision))
	}
	return nil
}

// Workers resolves NUMBER_OF_CORES against the machine.
func (p PhiConfig) Workers() int {
	return resolveWorkers(p.NumberOfCores, runtime.NumCPU())
}

func resolveWorkers(cores, cpus int) int {
	if cores > 0 {
		return cores
	}
	n := cpus + 1 + cores
	if n < 1 {
		return 1
	}
	return n
}

// Cache kinds, each with its own dependency set.
const (
	KindConcept = "concept"
	KindSIA     = "sia"
)

// DependencyValues lists the options a cached result of kind depends on.
// Options that only affect scheduling are left out.
func (p PhiConfig) DependencyValues(kind string) map[string]interface{} {
	deps := map[string]interface{}{
		"MEASURE":               string(p.Measure),
		"PRECISION":             p.Precision,
		"PICK_SMALLEST_PURVIEW": p.PickSmallestPurview,
	}
	if kind == KindSIA {
		deps["CUT_ONE_APPROXIMATION"] = p.CutOneApproximation
		deps["SYSTEM_CUTS"] = string(p.SystemCuts)
		deps["SINGLE_MICRO_NODES_WITH_SELFLOOPS_HAVE_PHI"] = p.SingleMicroNodesWithSelfloopsHavePhi
		deps["USE_SMALL_PHI_DIFFERENCE_FOR_CES_DISTANCE"] = p.UseSmallPhiDifferenceForCESDistance
	}
	return deps
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
