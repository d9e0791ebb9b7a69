// Package gateway talks to the Gemini API that writes soal and modul
// content. It returns raw model text; validation happens in content.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gurukit/gurukit-backend/internal/logger"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Generation settings used for every request.
const (
	temperature     float32 = 0.7
	topK            float32 = 40
	topP            float32 = 0.95
	maxOutputTokens int32   = 8192
)

// jsonSuffix is appended to prompts that must come back as JSON.
const jsonSuffix = "\n\nIMPORTANT: Return ONLY a valid JSON object. No other text."

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("gateway: GEMINI_API_KEY is not set")

// Error reports a failed call to the model. It never wraps a format problem.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsGatewayError reports whether err is or wraps a *Error.
func IsGatewayError(err error) bool {
	var ge *Error
	return errors.As(err, &ge)
}

// Request is one prompt for the model.
type Request struct {
	System string
	Prompt string
	// JSON asks for a JSON object response.
	JSON bool
}

// Gemini generates content with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini creates a Gemini gateway. timeout bounds each HTTP call.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration, log zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  model,
		log:    logger.Component(log, "gemini"),
	}, nil
}

// Generate sends req and returns the model's text as received.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopK:            genai.Ptr(topK),
		TopP:            genai.Ptr(topP),
		MaxOutputTokens: maxOutputTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		prompt += jsonSuffix
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		g.log.Error().Err(err).Dur("took", time.Since(start)).Msg("Generation request failed")
		return "", &Error{Model: g.model, Err: err}
	}

	text := resp.Text()
	g.log.Info().
		Dur("took", time.Since(start)).
		Int("chars", len(text)).
		Bool("json", req.JSON).
		Msg("Generation completed")
	return text, nil
}

// Disabled stands in for Gemini when no API key is configured. Every call
// fails with ErrNotConfigured.
type Disabled struct{}

// Generate always returns ErrNotConfigured.
func (Disabled) Generate(ctx context.Context, req Request) (string, error) {
	return "", ErrNotConfigured
}
