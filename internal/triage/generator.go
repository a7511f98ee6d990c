package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/ticket-retriage/internal/config"
)

// ErrModelDisabled is returned when no API key is configured.
var ErrModelDisabled = errors.New("model API key not configured")

// Generator performs one structured-output generation.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, userContents string, schema *genai.Schema) (string, error)
	Model() string
}

// GeminiGenerator calls Gemini through the GenAI SDK.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGeminiGenerator creates a client against the Gemini API backend.
func NewGeminiGenerator(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if !cfg.Enabled() {
		return nil, ErrModelDisabled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.Name,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout(),
		logger:      logger,
	}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends the instruction and items and returns the raw JSON text.
func (g *GeminiGenerator) Generate(ctx context.Context, systemInstruction, userContents string, schema *genai.Schema) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(userContents),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schema,
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	g.logger.Debug("model call completed",
		zap.String("model", g.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_bytes", len(text)))

	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
