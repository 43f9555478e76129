package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Supported analyzer providers.
const (
	AIProviderNone   = "none"
	AIProviderOpenAI = "openai"
	AIProviderAzure  = "azure"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName  string
	AppEnv   string
	AppPort  string
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	RedisURL       string
	NATSURL        string
	EventsChannel  string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	AIProvider       string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIEndpoint   string
	OpenAIAPIVersion string
	OpenAIDeployment string
	AITemperature    float32
	AIMaxTokens      int
	AITimeout        time.Duration
	AIRateLimitRPS   float64
	AIRateLimitBurst int

	SubmissionDuplicatePolicy string
	SubmissionCooldown        time.Duration
	ActiveContestCacheTTL     time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AnalyzerEnabled reports whether a real model backs plagiarism analysis.
func (c Config) AnalyzerEnabled() bool {
	return c.AIProvider != AIProviderNone && c.OpenAIAPIKey != ""
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret must be provided"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt ttl must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database url is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database url is required for the sqlite driver"))
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("mongo uri and database are required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}

	switch c.AIProvider {
	case AIProviderNone, AIProviderOpenAI:
	case AIProviderAzure:
		if c.OpenAIAPIKey != "" && (c.OpenAIEndpoint == "" || c.OpenAIDeployment == "") {
			errs = append(errs, errors.New("azure provider needs an endpoint and a deployment"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ai provider %q", c.AIProvider))
	}

	switch c.SubmissionDuplicatePolicy {
	case "allow", "reject":
	default:
		errs = append(errs, fmt.Errorf("unsupported submission duplicate policy %q", c.SubmissionDuplicatePolicy))
	}

	return errors.Join(errs...)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CONTEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeContest")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("mongo.database", "coding_contest")
	v.SetDefault("events.channel", "codecontest")
	v.SetDefault("jwt.issuer", "codecontest-api")
	v.SetDefault("jwt.ttl", "60m")
	v.SetDefault("ai.provider", AIProviderOpenAI)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.api_version", "2024-02-01")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.max_tokens", 1500)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.rate_limit_rps", 2)
	v.SetDefault("ai.rate_limit_burst", 1)
	v.SetDefault("submission.duplicate_policy", "allow")
	v.SetDefault("submission.cooldown", "0s")
	v.SetDefault("contest.active_cache_ttl", "30s")
	v.SetDefault("rate_limit.max", 0)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("cors.allow_origins", "*")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "ai.timeout", "submission.cooldown", "contest.active_cache_ttl", "rate_limit.window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:  v.GetString("app.name"),
		AppEnv:   v.GetString("app.env"),
		AppPort:  v.GetString("app.port"),
		LogLevel: strings.ToLower(v.GetString("log.level")),

		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:    v.GetString("database.url"),
		MongoURI:       v.GetString("mongo.uri"),
		MongoDatabase:  v.GetString("mongo.database"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		EventsChannel:  v.GetString("events.channel"),

		JWTSecret: v.GetString("jwt.secret"),
		JWTIssuer: v.GetString("jwt.issuer"),
		JWTTTL:    durations["jwt.ttl"],

		AIProvider:       strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIModel:      v.GetString("openai.model"),
		OpenAIEndpoint:   v.GetString("openai.endpoint"),
		OpenAIAPIVersion: v.GetString("openai.api_version"),
		OpenAIDeployment: v.GetString("openai.deployment"),
		AITemperature:    float32(v.GetFloat64("ai.temperature")),
		AIMaxTokens:      v.GetInt("ai.max_tokens"),
		AITimeout:        durations["ai.timeout"],
		AIRateLimitRPS:   v.GetFloat64("ai.rate_limit_rps"),
		AIRateLimitBurst: v.GetInt("ai.rate_limit_burst"),

		SubmissionDuplicatePolicy: strings.ToLower(strings.TrimSpace(v.GetString("submission.duplicate_policy"))),
		SubmissionCooldown:        durations["submission.cooldown"],
		ActiveContestCacheTTL:     durations["contest.active_cache_ttl"],

		RateLimitMax:    v.GetInt("rate_limit.max"),
		RateLimitWindow: durations["rate_limit.window"],
		CORSOrigins:     v.GetString("cors.allow_origins"),
	}

	if cfg.AIProvider == "" {
		cfg.AIProvider = AIProviderNone
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
