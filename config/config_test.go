package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/config"
)

// clearEnv blanks every variable Load reads so tests see defaults
// regardless of the environment the suite runs in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUDIT_DATA_DIR", "AUDIT_OUT_DIR", "AUDIT_DB_PATH", "AUDIT_ADDR",
		"AUDIT_ENV", "AUDIT_LOG_LEVEL", "AUDIT_TOLERANCE_UNITS",
		"AUDIT_RISK_TOLERANCE_UNITS", "AUDIT_LSL_ELIGIBILITY_YEARS",
		"AUDIT_LSL_FULL_YEARS", "AUDIT_LSL_LOW_FLOOR_UNITS",
		"AUDIT_HOURS_PER_DAY", "AUDIT_HOURS_PER_YEAR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsMatchStandingConfiguration(t *testing.T) {
	// GIVEN: No configuration in the environment
	clearEnv(t)

	// WHEN: Loading
	cfg, err := config.Load()

	// THEN: Every knob lands on its documented default
	require.NoError(t, err)
	assert.Equal(t, "data/sample", cfg.DataDir)
	assert.Equal(t, "outputs", cfg.OutDir)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.01, cfg.ToleranceUnits)
	assert.Equal(t, 0.25, cfg.RiskToleranceUnits)
	assert.Equal(t, 7.0, cfg.EligibilityYears)
	assert.Equal(t, 10.0, cfg.FullYears)
	assert.Equal(t, 20.0, cfg.LowFloorUnits)
	assert.Equal(t, 7.6, cfg.HoursPerDay)
	assert.Equal(t, 1976.0, cfg.HoursPerYear)
}

func TestLoad_EnvironmentOverridesWin(t *testing.T) {
	// GIVEN: Overrides for paths and one numeric knob
	clearEnv(t)
	t.Setenv("AUDIT_DATA_DIR", "/srv/extracts/2024-06")
	t.Setenv("AUDIT_OUT_DIR", "/srv/audit")
	t.Setenv("AUDIT_DB_PATH", "/srv/audit/audit.db")
	t.Setenv("AUDIT_TOLERANCE_UNITS", "0.5")
	t.Setenv("AUDIT_LOG_LEVEL", "debug")

	// WHEN: Loading
	cfg, err := config.Load()

	// THEN: Overrides stick and untouched knobs keep defaults
	require.NoError(t, err)
	assert.Equal(t, "/srv/extracts/2024-06", cfg.DataDir)
	assert.Equal(t, "/srv/audit", cfg.OutDir)
	assert.Equal(t, "/srv/audit/audit.db", cfg.DBPath)
	assert.Equal(t, 0.5, cfg.ToleranceUnits)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10.0, cfg.FullYears)
}

func TestLoad_UnparseableNumberFallsBackToDefault(t *testing.T) {
	// GIVEN: A tolerance that does not parse
	clearEnv(t)
	t.Setenv("AUDIT_TOLERANCE_UNITS", "loose")

	// WHEN: Loading
	cfg, err := config.Load()

	// THEN: The default survives rather than poisoning the run
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.ToleranceUnits)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	// GIVEN: A log level outside the allowed set
	clearEnv(t)
	t.Setenv("AUDIT_LOG_LEVEL", "chatty")

	// WHEN: Loading
	_, err := config.Load()

	// THEN: Validation fails naming the variable
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_LOG_LEVEL")
}

func TestLoad_FullYearsMayNotUndercutEligibility(t *testing.T) {
	// GIVEN: A full-entitlement milestone below the eligibility milestone
	clearEnv(t)
	t.Setenv("AUDIT_LSL_FULL_YEARS", "5")

	// WHEN: Loading
	_, err := config.Load()

	// THEN: Validation fails naming the variable
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_LSL_FULL_YEARS")
}

func TestParams_ConvertsKnobsToThresholds(t *testing.T) {
	// GIVEN: A loaded default configuration
	clearEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	// WHEN: Converting to audit thresholds
	params := cfg.Params()

	// THEN: Decimal knobs round-trip exactly
	assert.True(t, params.Tolerance.Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, params.RiskTolerance.Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, params.LowFloorUnits.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 7.0, params.EligibilityYears)
	assert.Equal(t, 10.0, params.FullYears)
	assert.Equal(t, 7.6, params.HoursPerDay)
	assert.Equal(t, 1976.0, params.HoursPerYear)
}

func TestNewLogger_FormatterFollowsEnvironment(t *testing.T) {
	// GIVEN: Production and development configurations
	prod := config.Config{Environment: "production", LogLevel: "warn"}
	dev := config.Config{Environment: "development", LogLevel: "debug"}

	// WHEN: Building loggers
	prodLog := config.NewLogger(prod)
	devLog := config.NewLogger(dev)

	// THEN: Production logs JSON at warn, development logs text at debug
	assert.IsType(t, &logrus.JSONFormatter{}, prodLog.Formatter)
	assert.Equal(t, logrus.WarnLevel, prodLog.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, devLog.Formatter)
	assert.Equal(t, logrus.DebugLevel, devLog.GetLevel())
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	// GIVEN: A configuration that skipped validation
	cfg := config.Config{Environment: "development", LogLevel: "nope"}

	// WHEN: Building the logger
	log := config.NewLogger(cfg)

	// THEN: It falls back to info instead of panicking
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
