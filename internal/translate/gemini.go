package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

var codeFence = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")

// GeminiOracle translates with a Gemini model. Calls go through a circuit
// breaker so an unhealthy API fails fast instead of eating the gate timeout.
type GeminiOracle struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
}

// NewGeminiOracle creates an oracle using the Gemini API with apiKey.
func NewGeminiOracle(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	log := logger.With().Str("component", "gemini").Logger()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini-translate",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &GeminiOracle{client: client, model: model, breaker: breaker}, nil
}

// Translate implements Oracle.
func (o *GeminiOracle) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	out, err := o.breaker.Execute(func() (interface{}, error) {
		resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(buildPrompt(text, targetLang, sourceLang)), nil)
		if err != nil {
			return nil, fmt.Errorf("gemini generate content: %w", err)
		}
		translated := cleanOutput(resp.Text())
		if translated == "" {
			return nil, fmt.Errorf("gemini returned empty text")
		}
		return translated, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func buildPrompt(text, targetLang, sourceLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following text from %s to %s.\n", DisplayName(sourceLang), DisplayName(targetLang))
	b.WriteString("Preserve all original formatting, line breaks, and structure.\n")
	b.WriteString("Output ONLY the translation, with no explanation, no code block, and no markdown.\n")
	b.WriteString("Text: ")
	b.WriteString(text)
	return b.String()
}

// cleanOutput strips code fences the model sometimes wraps answers in.
func cleanOutput(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(strings.TrimSpace(s), ""))
}
