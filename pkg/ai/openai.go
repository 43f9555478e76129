package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecontest",
		Subsystem: "ai",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of AI plagiarism analysis requests",
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecontest",
		Subsystem: "ai",
		Name:      "analysis_failures_total",
		Help:      "Number of AI plagiarism analysis failures",
	}, []string{"provider", "model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI analyzer.
type OpenAIConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	APIVersion  string
	Deployment  string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	RateLimit   float64
	Burst       int
	Logger      zerolog.Logger
}

// OpenAIAnalyzer implements Analyzer against the OpenAI or Azure OpenAI chat completion API.
type OpenAIAnalyzer struct {
	client  *openai.Client
	cfg     OpenAIConfig
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewOpenAIAnalyzer builds a new analyzer using the provided configuration.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	var config openai.ClientConfig
	switch cfg.Provider {
	case ProviderOpenAI:
		config = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			config.BaseURL = cfg.BaseURL
		}
	case ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure openai endpoint is required")
		}
		config = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			config.APIVersion = cfg.APIVersion
		}
		if cfg.Deployment != "" {
			deployment := cfg.Deployment
			config.AzureModelMapperFunc = func(string) string { return deployment }
		}
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIAnalyzer{
		client:  openai.NewClientWithConfig(config),
		cfg:     cfg,
		limiter: limiter,
		tracer:  otel.Tracer("github.com/noah-isme/codecontest-api/pkg/ai/openai"),
		logger:  logger.With().Str("component", "openai_analyzer").Logger(),
	}, nil
}

// Provider reports the configured backend name.
func (a *OpenAIAnalyzer) Provider() string {
	return a.cfg.Provider
}

// Analyze sends the code to the model and validates the structured verdict.
func (a *OpenAIAnalyzer) Analyze(parent context.Context, input AnalysisInput) (AnalysisResult, error) {
	ctx, span := a.tracer.Start(parent, "openai.analyze", trace.WithAttributes(
		attribute.String("provider", a.cfg.Provider),
		attribute.String("model", a.cfg.Model),
		attribute.String("language", input.Language),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			a.fail(span, "throttled", err)
			return AnalysisResult{}, fmt.Errorf("openai analyze: wait for rate limiter: %w", err)
		}
	}

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzerSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(a.cfg.Provider, a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		a.fail(span, "transport", err)
		return AnalysisResult{}, fmt.Errorf("openai analyze: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrMalformedAnalysis)
		a.fail(span, "malformed", err)
		return AnalysisResult{}, err
	}

	analysis, raw, err := ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		kind := "malformed"
		if !errors.Is(err, ErrMalformedAnalysis) {
			kind = "internal"
		}
		a.fail(span, kind, err)
		return AnalysisResult{}, err
	}

	a.logger.Debug().
		Str("model", a.cfg.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("analysis completed")

	return AnalysisResult{
		Analysis: analysis,
		Raw:      raw,
		Provider: a.cfg.Provider,
		Model:    a.cfg.Model,
	}, nil
}

func (a *OpenAIAnalyzer) fail(span trace.Span, kind string, err error) {
	aiFailures.WithLabelValues(a.cfg.Provider, a.cfg.Model, kind).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	a.logger.Warn().Err(err).Str("kind", kind).Msg("analysis failed")
}
