package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/schema"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		ProviderURL:     "https://api.example.com/v1",
		ProviderRetries: DefaultProviderRetries,
		PageSize:        DefaultPageSize,
		Output:          "text",
		Precision:       DefaultPrecision,
		Color:           "yes",
		Limit:           DefaultResultLimit,
		InactiveDays:    DefaultInactiveDays,
		CacheBackend:    "sqlite",
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.example.com/v1", cfg.ProviderURL)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.SegmentAll, cfg.Segment)
				assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
				assert.Equal(t, DefaultLearnersTTL, cfg.LearnersTTL)
				assert.Equal(t, DefaultProviderTimeout, cfg.ProviderTimeout)
				assert.Equal(t, DefaultMinScore, cfg.MinScore)
				assert.Equal(t, schema.DefaultInsightThresholds(), cfg.Thresholds)
				assert.InDelta(t, 0.4, cfg.Weights.Adoption, 1e-9)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name:   "trailing slash is trimmed from provider url",
			mutate: func(in *ConfigRawInput) { in.ProviderURL = "https://api.example.com/v1/" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.example.com/v1", cfg.ProviderURL)
			},
		},
		{
			name:        "provider url without scheme",
			mutate:      func(in *ConfigRawInput) { in.ProviderURL = "api.example.com" },
			expectError: true,
		},
		{
			name: "fallback without primary",
			mutate: func(in *ConfigRawInput) {
				in.ProviderURL = ""
				in.ProviderFallbackURL = "https://backup.example.com"
			},
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "yaml" },
			expectError: true,
		},
		{
			name:        "invalid precision",
			mutate:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: true,
		},
		{
			name:        "zero limit",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "negative offset",
			mutate:      func(in *ConfigRawInput) { in.Offset = -1 },
			expectError: true,
		},
		{
			name:        "page size too large",
			mutate:      func(in *ConfigRawInput) { in.PageSize = MaxPageSize + 1 },
			expectError: true,
		},
		{
			name:   "segment accepts dashes",
			mutate: func(in *ConfigRawInput) { in.Segment = "At-Risk" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SegmentAtRisk, cfg.Segment)
			},
		},
		{
			name:        "unknown segment",
			mutate:      func(in *ConfigRawInput) { in.Segment = "dormant" },
			expectError: true,
		},
		{
			name:        "unknown priority",
			mutate:      func(in *ConfigRawInput) { in.Priority = "urgent" },
			expectError: true,
		},
		{
			name:   "custom ttl",
			mutate: func(in *ConfigRawInput) { in.CacheTTL = "10m"; in.LearnersTTL = "30s" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
				assert.Equal(t, 30*time.Second, cfg.LearnersTTL)
			},
		},
		{
			name:        "negative ttl",
			mutate:      func(in *ConfigRawInput) { in.CacheTTL = "-1m" },
			expectError: true,
		},
		{
			name:        "unparseable timeout",
			mutate:      func(in *ConfigRawInput) { in.ProviderTimeout = "soon" },
			expectError: true,
		},
		{
			name:   "as-of date",
			mutate: func(in *ConfigRawInput) { in.AsOf = "2024-06-01" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), cfg.Now())
			},
		},
		{
			name:        "bad as-of",
			mutate:      func(in *ConfigRawInput) { in.AsOf = "June 1st" },
			expectError: true,
		},
		{
			name:        "zero inactive days",
			mutate:      func(in *ConfigRawInput) { in.InactiveDays = 0 },
			expectError: true,
		},
		{
			name:        "bad color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name: "custom weights that sum to one",
			mutate: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{CertRate: floatPtr(0.25), PassRate: floatPtr(0.25), Adoption: floatPtr(0.25), Usage: floatPtr(0.25)}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.ROIWeights{CertRate: 0.25, PassRate: 0.25, Adoption: 0.25, Usage: 0.25}, cfg.Weights)
			},
		},
		{
			name:        "weights that do not sum to one",
			mutate:      func(in *ConfigRawInput) { in.Weights = WeightsRawInput{CertRate: floatPtr(0.5)} },
			expectError: true,
		},
		{
			name: "threshold override",
			mutate: func(in *ConfigRawInput) {
				in.Thresholds = ThresholdsRawInput{NoShowHigh: floatPtr(10), MinScore: floatPtr(70)}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10.0, cfg.Thresholds.NoShowHigh)
				assert.Equal(t, 20.0, cfg.Thresholds.CertRateLow)
				assert.Equal(t, 70.0, cfg.MinScore)
			},
		},
		{
			name: "min-score flag beats config file",
			mutate: func(in *ConfigRawInput) {
				in.Thresholds = ThresholdsRawInput{MinScore: floatPtr(70)}
				in.MinScore = 80
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 80.0, cfg.MinScore)
			},
		},
		{
			name:        "threshold out of range",
			mutate:      func(in *ConfigRawInput) { in.Thresholds = ThresholdsRawInput{CopilotLow: floatPtr(120)} },
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "mongodb" },
			expectError: true,
		},
		{
			name: "redis cache backend",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "redis"
				in.CacheDBConnect = "redis://localhost:6379/0"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.RedisBackend, cfg.CacheBackend)
			},
		},
		{
			name:        "redis is not a snapshot backend",
			mutate:      func(in *ConfigRawInput) { in.SnapshotBackend = "redis"; in.SnapshotDBConnect = "redis://localhost:6379/0" },
			expectError: true,
		},
		{
			name: "cache and snapshots on the same sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.SnapshotBackend = "sqlite"
				in.CacheDBConnect = filepath.Join("tmp", "shared.db")
				in.SnapshotDBConnect = filepath.Join("tmp", "shared.db")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestRequireProvider(t *testing.T) {
	assert.ErrorIs(t, RequireProvider(&Config{}), ErrMissingProviderURL)
	assert.NoError(t, RequireProvider(&Config{ProviderURL: "http://localhost:8080"}))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/skillpulse", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/skillpulse", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=skillpulse", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"redis valid", schema.RedisBackend, "redis://localhost:6379/0", false},
		{"redis tls", schema.RedisBackend, "rediss://cache.internal:6380", false},
		{"redis bare host", schema.RedisBackend, "localhost:6379", true},
		{"redis empty", schema.RedisBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessWeightsRawInput(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		w, err := ProcessWeightsRawInput(WeightsRawInput{}, true)
		require.NoError(t, err)
		assert.Equal(t, schema.ROIWeights{CertRate: 0.2, PassRate: 0.2, Adoption: 0.4, Usage: 0.2}, w)
	})

	t.Run("within tolerance", func(t *testing.T) {
		_, err := ProcessWeightsRawInput(WeightsRawInput{Adoption: floatPtr(0.4005)}, true)
		assert.NoError(t, err)
	})

	t.Run("sum unchecked", func(t *testing.T) {
		w, err := ProcessWeightsRawInput(WeightsRawInput{Usage: floatPtr(0.9)}, false)
		require.NoError(t, err)
		assert.Equal(t, 0.9, w.Usage)
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := ProcessWeightsRawInput(WeightsRawInput{CertRate: floatPtr(-0.2), Adoption: floatPtr(0.8)}, false)
		assert.Error(t, err)
	})
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Limit: 10, Segment: schema.SegmentInactive}
	clone := cfg.Clone()
	clone.Limit = 50
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, schema.SegmentInactive, clone.Segment)
}

func TestParseAsOf(t *testing.T) {
	ts, err := ParseAsOf("2024-03-10T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, ts.Hour())

	_, err = ParseAsOf("10/03/2024")
	assert.Error(t, err)
}

func TestRevalidateFilters(t *testing.T) {
	t.Run("applies overrides", func(t *testing.T) {
		cfg := &Config{Segment: schema.SegmentAll}
		require.NoError(t, RevalidateFilters(cfg, "Rising-Star", "HIGH", "2024-06-01"))
		assert.Equal(t, schema.SegmentRisingStar, cfg.Segment)
		assert.Equal(t, schema.PriorityHigh, cfg.Priority)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), cfg.AsOf)
	})

	t.Run("empty keeps settings", func(t *testing.T) {
		cfg := &Config{Segment: schema.SegmentInactive, Priority: schema.PriorityLow}
		require.NoError(t, RevalidateFilters(cfg, "", "", ""))
		assert.Equal(t, schema.SegmentInactive, cfg.Segment)
		assert.Equal(t, schema.PriorityLow, cfg.Priority)
		assert.True(t, cfg.AsOf.IsZero())
	})

	tests := []struct {
		name                    string
		segment, priority, asOf string
		errContains             string
	}{
		{"bad segment", "dormant", "", "", "invalid segment"},
		{"bad priority", "", "urgent", "", "invalid priority"},
		{"bad as-of", "", "", "yesterday", "invalid as-of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RevalidateFilters(&Config{}, tt.segment, tt.priority, tt.asOf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
