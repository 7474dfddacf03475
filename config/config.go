/*
config.go - Environment configuration

PURPOSE:
  One place where the process reads its environment. A .env file is
  loaded best-effort, typed getters supply defaults, and the assembled
  Config is validated before anything downstream runs with it.

VARIABLES:
  AUDIT_DATA_DIR               input directory (default data/sample)
  AUDIT_OUT_DIR                output directory (default outputs)
  AUDIT_DB_PATH                SQLite export path, empty disables it
  AUDIT_ADDR                   HTTP listen address for serve mode
  AUDIT_ENV                    development | staging | production
  AUDIT_LOG_LEVEL              debug | info | warn | error
  AUDIT_TOLERANCE_UNITS        mismatch rule tolerance
  AUDIT_RISK_TOLERANCE_UNITS   reconciliation risk-flag tolerance
  AUDIT_LSL_ELIGIBILITY_YEARS  LSL eligibility milestone
  AUDIT_LSL_FULL_YEARS         LSL full-entitlement milestone
  AUDIT_LSL_LOW_FLOOR_UNITS    suspiciously-low balance floor
  AUDIT_HOURS_PER_DAY          heuristic band conversion
  AUDIT_HOURS_PER_YEAR         salary to hourly-rate conversion
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-audit/audit"
)

// Config carries everything the process reads from its environment.
// Zero values never survive Load; every field has a default.
type Config struct {
	DataDir     string `validate:"required"`
	OutDir      string `validate:"required"`
	DBPath      string
	Addr        string `validate:"required"`
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	ToleranceUnits     float64 `validate:"gt=0"`
	RiskToleranceUnits float64 `validate:"gt=0"`
	EligibilityYears   float64 `validate:"gt=0"`
	FullYears          float64 `validate:"gtefield=EligibilityYears"`
	LowFloorUnits      float64 `validate:"gt=0"`
	HoursPerDay        float64 `validate:"gt=0"`
	HoursPerYear       float64 `validate:"gt=0"`
}

// envName maps Config fields back to the variables users actually set,
// so validation failures name the knob and not the Go field.
var envName = map[string]string{
	"DataDir":            "AUDIT_DATA_DIR",
	"OutDir":             "AUDIT_OUT_DIR",
	"DBPath":             "AUDIT_DB_PATH",
	"Addr":               "AUDIT_ADDR",
	"Environment":        "AUDIT_ENV",
	"LogLevel":           "AUDIT_LOG_LEVEL",
	"ToleranceUnits":     "AUDIT_TOLERANCE_UNITS",
	"RiskToleranceUnits": "AUDIT_RISK_TOLERANCE_UNITS",
	"EligibilityYears":   "AUDIT_LSL_ELIGIBILITY_YEARS",
	"FullYears":          "AUDIT_LSL_FULL_YEARS",
	"LowFloorUnits":      "AUDIT_LSL_LOW_FLOOR_UNITS",
	"HoursPerDay":        "AUDIT_HOURS_PER_DAY",
	"HoursPerYear":       "AUDIT_HOURS_PER_YEAR",
}

// Load reads .env (if present), assembles a Config from the environment
// with defaults matching the standing review configuration, and
// validates it. The returned Config is safe to use only when err is nil.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	defaults := audit.DefaultParams()
	cfg := Config{
		DataDir:     getEnv("AUDIT_DATA_DIR", "data/sample"),
		OutDir:      getEnv("AUDIT_OUT_DIR", "outputs"),
		DBPath:      getEnv("AUDIT_DB_PATH", ""),
		Addr:        getEnv("AUDIT_ADDR", ":8080"),
		Environment: getEnv("AUDIT_ENV", "development"),
		LogLevel:    getEnv("AUDIT_LOG_LEVEL", "info"),

		ToleranceUnits:     getEnvFloat("AUDIT_TOLERANCE_UNITS", defaults.Tolerance.InexactFloat64()),
		RiskToleranceUnits: getEnvFloat("AUDIT_RISK_TOLERANCE_UNITS", defaults.RiskTolerance.InexactFloat64()),
		EligibilityYears:   getEnvFloat("AUDIT_LSL_ELIGIBILITY_YEARS", defaults.EligibilityYears),
		FullYears:          getEnvFloat("AUDIT_LSL_FULL_YEARS", defaults.FullYears),
		LowFloorUnits:      getEnvFloat("AUDIT_LSL_LOW_FLOOR_UNITS", defaults.LowFloorUnits.InexactFloat64()),
		HoursPerDay:        getEnvFloat("AUDIT_HOURS_PER_DAY", defaults.HoursPerDay),
		HoursPerYear:       getEnvFloat("AUDIT_HOURS_PER_YEAR", defaults.HoursPerYear),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the assembled Config. Failures name the offending
// environment variables.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		name := envName[ve.StructField()]
		if name == "" {
			name = ve.StructField()
		}
		parts = append(parts, fmt.Sprintf("%s fails %q", name, ve.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

// Params converts the numeric knobs into the threshold set the audit
// packages consume.
func (c Config) Params() audit.Params {
	return audit.Params{
		Tolerance:        decimal.NewFromFloat(c.ToleranceUnits),
		RiskTolerance:    decimal.NewFromFloat(c.RiskToleranceUnits),
		EligibilityYears: c.EligibilityYears,
		FullYears:        c.FullYears,
		HoursPerDay:      c.HoursPerDay,
		LowFloorUnits:    decimal.NewFromFloat(c.LowFloorUnits),
		HoursPerYear:     c.HoursPerYear,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
