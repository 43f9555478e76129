package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("CONTEST_JWT_SECRET", "secret")
	t.Setenv("CONTEST_DATABASE_URL", "postgres://localhost/contest")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.Equal(t, "allow", cfg.SubmissionDuplicatePolicy)
	require.Equal(t, 30*time.Second, cfg.ActiveContestCacheTTL)
	require.Equal(t, 60*time.Second, cfg.AITimeout)
	require.Equal(t, 1500, cfg.AIMaxTokens)
	require.Equal(t, 1, cfg.AIRateLimitBurst)
	require.Zero(t, cfg.RateLimitMax, "request rate limiting is opt-in")
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("CONTEST_JWT_SECRET", "secret")
	t.Setenv("CONTEST_DATABASE_DRIVER", "Mongo")
	t.Setenv("CONTEST_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CONTEST_AI_PROVIDER", "azure")
	t.Setenv("CONTEST_OPENAI_API_KEY", "key")
	t.Setenv("CONTEST_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("CONTEST_OPENAI_DEPLOYMENT", "gpt4")
	t.Setenv("CONTEST_SUBMISSION_DUPLICATE_POLICY", "reject")
	t.Setenv("CONTEST_SUBMISSION_COOLDOWN", "30s")
	t.Setenv("CONTEST_APP_PORT", ":9090")
	t.Setenv("CONTEST_AI_RATE_LIMIT_BURST", "3")
	t.Setenv("CONTEST_RATE_LIMIT_MAX", "10")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DriverMongo, cfg.DatabaseDriver)
	require.Equal(t, "coding_contest", cfg.MongoDatabase)
	require.Equal(t, AIProviderAzure, cfg.AIProvider)
	require.True(t, cfg.AnalyzerEnabled())
	require.Equal(t, "reject", cfg.SubmissionDuplicatePolicy)
	require.Equal(t, 30*time.Second, cfg.SubmissionCooldown)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 3, cfg.AIRateLimitBurst)
	require.Equal(t, 10, cfg.RateLimitMax)
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("CONTEST_DATABASE_URL", "postgres://localhost/contest")
	_, err := Load()
	require.ErrorContains(t, err, "jwt secret")

	t.Setenv("CONTEST_JWT_SECRET", "secret")
	t.Setenv("CONTEST_JWT_TTL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "jwt.ttl")

	t.Setenv("CONTEST_JWT_TTL", "1h")
	t.Setenv("CONTEST_DATABASE_DRIVER", "oracle")
	_, err = Load()
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestAnalyzerDisabledWithoutKey(t *testing.T) {
	cfg := Config{AIProvider: AIProviderOpenAI}
	require.False(t, cfg.AnalyzerEnabled())

	cfg = Config{AIProvider: AIProviderNone, OpenAIAPIKey: "key"}
	require.False(t, cfg.AnalyzerEnabled())
}
