package contract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/skillpulse/skillpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit     = 25
	MaxResultLimit         = 1000
	DefaultPageSize        = 100
	MaxPageSize            = 1000
	DefaultPrecision       = 1
	DefaultInactiveDays    = 90
	DefaultMinScore        = 60.0
	DefaultProviderRetries = 3
	DefaultProviderTimeout = 30 * time.Second
	DefaultCacheTTL        = 5 * time.Minute
	DefaultLearnersTTL     = 2 * time.Minute
)

// DateFormat is the accepted short date representation for --as-of.
const DateFormat = "2006-01-02"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ErrMissingProviderURL is returned when a data command runs without a provider.
var ErrMissingProviderURL = errors.New("provider-url is required (set --provider-url or SKILLPULSE_PROVIDER_URL)")

// WeightsRawInput holds the custom ROI weights from the YAML config file.
// Use float64 pointers so that omitted weights keep their defaults.
type WeightsRawInput struct {
	CertRate *float64 `mapstructure:"cert_rate"`
	PassRate *float64 `mapstructure:"pass_rate"`
	Adoption *float64 `mapstructure:"adoption"`
	Usage    *float64 `mapstructure:"usage"`
}

// ThresholdsRawInput holds the insight and gating thresholds from the YAML config file.
type ThresholdsRawInput struct {
	CertRateLow        *float64 `mapstructure:"cert_rate_low"`
	CertRateStrong     *float64 `mapstructure:"cert_rate_strong"`
	PassRateLow        *float64 `mapstructure:"pass_rate_low"`
	NoShowHigh         *float64 `mapstructure:"no_show_high"`
	CopilotLow         *float64 `mapstructure:"copilot_low"`
	CopilotStrong      *float64 `mapstructure:"copilot_strong"`
	DropOffHigh        *float64 `mapstructure:"drop_off_high"`
	CompletionDaysSlow *float64 `mapstructure:"completion_days_slow"`
	MinScore           *float64 `mapstructure:"min_score"`
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	ProviderURL         string
	ProviderFallbackURL string
	ProviderTimeout     time.Duration
	ProviderRetries     int
	PageSize            int

	CacheTTL    time.Duration
	LearnersTTL time.Duration

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Segment  schema.Segment
	Priority schema.Priority
	Search   string
	Limit    int
	Offset   int
	AllPages bool

	AsOf         time.Time // zero means wall clock
	InactiveDays int
	MinScore     float64
	Watch        time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string

	Weights    schema.ROIWeights
	Thresholds schema.InsightThresholds
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	ProviderURL         string `mapstructure:"provider-url"`
	ProviderFallbackURL string `mapstructure:"provider-fallback-url"`
	ProviderTimeout     string `mapstructure:"provider-timeout"`
	ProviderRetries     int    `mapstructure:"provider-retries"`
	PageSize            int    `mapstructure:"page-size"`
	CacheTTL            string `mapstructure:"cache-ttl"`
	LearnersTTL         string `mapstructure:"learners-ttl"`
	Output              string `mapstructure:"output"`
	OutputFile          string `mapstructure:"output-file"`
	Precision           int    `mapstructure:"precision"`
	Width               int    `mapstructure:"width"`
	Color               string `mapstructure:"color"`
	AsOf                string `mapstructure:"as-of"`
	InactiveDays        int    `mapstructure:"inactive-days"`
	CacheBackend        string `mapstructure:"cache-backend"`
	CacheDBConnect      string `mapstructure:"cache-db-connect"`
	SnapshotBackend     string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect   string `mapstructure:"snapshot-db-connect"`
	LogLevel            string `mapstructure:"log-level"`
	LogFormat           string `mapstructure:"log-format"`

	// --- Fields from learnersCmd.Flags() ---
	Segment  string `mapstructure:"segment"`
	Search   string `mapstructure:"search"`
	Limit    int    `mapstructure:"limit"`
	Offset   int    `mapstructure:"offset"`
	AllPages bool   `mapstructure:"all"`

	// --- Fields from insightsCmd.Flags() ---
	Priority string `mapstructure:"priority"`

	// --- Fields from summaryCmd.Flags() ---
	Watch string `mapstructure:"watch"`

	// --- Fields from checkCmd.Flags() ---
	MinScore float64 `mapstructure:"min-score"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Insight thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Now returns the evaluation time: the configured as-of time, or the wall clock.
func (c *Config) Now() time.Time {
	if !c.AsOf.IsZero() {
		return c.AsOf
	}
	return time.Now()
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processProvider(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// RequireProvider checks that a provider URL is configured.
func RequireProvider(cfg *Config) error {
	if cfg.ProviderURL == "" {
		return ErrMissingProviderURL
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and snapshot backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Snapshot Backend Validation ---
	cfg.SnapshotBackend = schema.DatabaseBackend(strings.ToLower(input.SnapshotBackend))
	if cfg.SnapshotBackend == "" {
		return nil
	}
	if _, ok := schema.ValidSnapshotBackends[cfg.SnapshotBackend]; !ok {
		return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return err
	}

	// Cache and snapshots must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.SnapshotBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		snapshotDBPath := cfg.SnapshotDBConnect
		if snapshotDBPath == "" {
			snapshotDBPath = GetSnapshotDBFilePath()
		}
		if cacheDBPath == snapshotDBPath {
			return fmt.Errorf("cache and snapshot storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all output and selection fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Search = strings.TrimSpace(input.Search)
	cfg.AllPages = input.AllPages
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	if input.Offset < 0 {
		return fmt.Errorf("offset cannot be negative (received %d)", input.Offset)
	}
	cfg.Offset = input.Offset

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Output)
	}

	cfg.Segment = schema.SegmentAll
	if input.Segment != "" {
		cfg.Segment = schema.Segment(strings.ToLower(strings.ReplaceAll(input.Segment, "-", "_")))
		if _, ok := schema.ValidSegments[cfg.Segment]; !ok {
			return fmt.Errorf("invalid segment '%s'. must be all, at_risk, rising_star, ready_to_advance, inactive, high_value", input.Segment)
		}
	}

	if input.Priority != "" {
		cfg.Priority = schema.Priority(strings.ToLower(input.Priority))
		if _, ok := schema.ValidPriorities[cfg.Priority]; !ok {
			return fmt.Errorf("invalid priority '%s'. must be high, medium, low, success", input.Priority)
		}
	}

	if input.InactiveDays <= 0 {
		return fmt.Errorf("inactive-days must be greater than 0 (received %d)", input.InactiveDays)
	}
	cfg.InactiveDays = input.InactiveDays

	if input.AsOf != "" {
		asOf, err := ParseAsOf(input.AsOf)
		if err != nil {
			return err
		}
		cfg.AsOf = asOf
	}

	return nil
}

// processProvider validates the provider URLs and client settings.
func processProvider(cfg *Config, input *ConfigRawInput) error {
	cfg.ProviderURL = strings.TrimRight(strings.TrimSpace(input.ProviderURL), "/")
	cfg.ProviderFallbackURL = strings.TrimRight(strings.TrimSpace(input.ProviderFallbackURL), "/")

	for _, raw := range []string{cfg.ProviderURL, cfg.ProviderFallbackURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid provider URL '%s'. must be an absolute http(s) URL", raw)
		}
	}
	if cfg.ProviderURL == "" && cfg.ProviderFallbackURL != "" {
		return fmt.Errorf("provider-fallback-url requires provider-url")
	}

	if input.ProviderRetries < 0 {
		return fmt.Errorf("provider-retries cannot be negative (received %d)", input.ProviderRetries)
	}
	cfg.ProviderRetries = input.ProviderRetries

	if input.PageSize <= 0 || input.PageSize > MaxPageSize {
		return fmt.Errorf("page-size must be greater than 0 and cannot exceed %d (received %d)", MaxPageSize, input.PageSize)
	}
	cfg.PageSize = input.PageSize

	return nil
}

// processDurations parses every duration flag.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.ProviderTimeout, err = parsePositiveDuration("provider-timeout", input.ProviderTimeout, DefaultProviderTimeout); err != nil {
		return err
	}
	if cfg.CacheTTL, err = parsePositiveDuration("cache-ttl", input.CacheTTL, DefaultCacheTTL); err != nil {
		return err
	}
	if cfg.LearnersTTL, err = parsePositiveDuration("learners-ttl", input.LearnersTTL, DefaultLearnersTTL); err != nil {
		return err
	}
	if input.Watch != "" {
		if cfg.Watch, err = parsePositiveDuration("watch", input.Watch, 0); err != nil {
			return err
		}
	}
	return nil
}

// parsePositiveDuration parses a Go duration string, using the fallback when empty.
func parsePositiveDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", name, raw)
	}
	return d, nil
}

// ProcessWeightsRawInput merges custom weights over the defaults.
// If validateSum is true, it validates that the final weights sum to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput, validateSum bool) (schema.ROIWeights, error) {
	defaults := schema.GetDefaultWeights()
	result := schema.ROIWeights{
		CertRate: defaults[schema.BreakdownCertRate],
		PassRate: defaults[schema.BreakdownPassRate],
		Adoption: defaults[schema.BreakdownAdoption],
		Usage:    defaults[schema.BreakdownUsage],
	}

	if weights.CertRate != nil {
		result.CertRate = *weights.CertRate
	}
	if weights.PassRate != nil {
		result.PassRate = *weights.PassRate
	}
	if weights.Adoption != nil {
		result.Adoption = *weights.Adoption
	}
	if weights.Usage != nil {
		result.Usage = *weights.Usage
	}

	for key, w := range map[schema.BreakdownKey]float64{
		schema.BreakdownCertRate: result.CertRate,
		schema.BreakdownPassRate: result.PassRate,
		schema.BreakdownAdoption: result.Adoption,
		schema.BreakdownUsage:    result.Usage,
	} {
		if w < 0 {
			return schema.ROIWeights{}, fmt.Errorf("weight %s cannot be negative (received %.3f)", key, w)
		}
	}

	sum := result.CertRate + result.PassRate + result.Adoption + result.Usage
	if validateSum && (sum < 0.999 || sum > 1.001) {
		return schema.ROIWeights{}, fmt.Errorf("ROI weights must sum to 1.0, got %.3f", sum)
	}

	return result, nil
}

// processCustomWeights converts the raw input into the final cfg.Weights.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processThresholds merges configured insight thresholds over the defaults.
// The --min-score flag takes precedence over thresholds.min_score.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	t := schema.DefaultInsightThresholds()
	raw := input.Thresholds

	overrides := []struct {
		name  string
		value *float64
		dest  *float64
	}{
		{"cert_rate_low", raw.CertRateLow, &t.CertRateLow},
		{"cert_rate_strong", raw.CertRateStrong, &t.CertRateStrong},
		{"pass_rate_low", raw.PassRateLow, &t.PassRateLow},
		{"no_show_high", raw.NoShowHigh, &t.NoShowHigh},
		{"copilot_low", raw.CopilotLow, &t.CopilotLow},
		{"copilot_strong", raw.CopilotStrong, &t.CopilotStrong},
		{"drop_off_high", raw.DropOffHigh, &t.DropOffHigh},
	}
	for _, o := range overrides {
		if o.value == nil {
			continue
		}
		if *o.value < 0.0 || *o.value > 100.0 {
			return fmt.Errorf("threshold %s must be between 0.0 and 100.0 (received %.2f)", o.name, *o.value)
		}
		*o.dest = *o.value
	}

	if raw.CompletionDaysSlow != nil {
		if *raw.CompletionDaysSlow < 0 {
			return fmt.Errorf("threshold completion_days_slow cannot be negative (received %.2f)", *raw.CompletionDaysSlow)
		}
		t.CompletionDaysSlow = *raw.CompletionDaysSlow
	}
	cfg.Thresholds = t

	cfg.MinScore = DefaultMinScore
	if raw.MinScore != nil {
		cfg.MinScore = *raw.MinScore
	}
	if input.MinScore > 0 {
		cfg.MinScore = input.MinScore
	}
	if cfg.MinScore < 0.0 || cfg.MinScore > 100.0 {
		return fmt.Errorf("min-score must be between 0.0 and 100.0 (received %.2f)", cfg.MinScore)
	}

	return nil
}

// ParseAsOf parses an RFC3339 timestamp or a YYYY-MM-DD date.
func ParseAsOf(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of '%s'. Expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// RevalidateFilters applies segment, priority and as-of overrides to an already processed config.
// Empty values keep the current setting.
func RevalidateFilters(cfg *Config, segment, priority, asOf string) error {
	if segment != "" {
		s := schema.Segment(strings.ToLower(strings.ReplaceAll(segment, "-", "_")))
		if _, ok := schema.ValidSegments[s]; !ok {
			return fmt.Errorf("invalid segment '%s'. must be all, at_risk, rising_star, ready_to_advance, inactive, high_value", segment)
		}
		cfg.Segment = s
	}
	if priority != "" {
		p := schema.Priority(strings.ToLower(priority))
		if _, ok := schema.ValidPriorities[p]; !ok {
			return fmt.Errorf("invalid priority '%s'. must be high, medium, low, success", priority)
		}
		cfg.Priority = p
	}
	if asOf != "" {
		t, err := ParseAsOf(asOf)
		if err != nil {
			return err
		}
		cfg.AsOf = t
	}
	return nil
}
