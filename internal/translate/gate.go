// Package translate decides when message text needs translating and talks to
// the translation oracle.
package translate

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/metrics"
)

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 5 * time.Second

// Oracle translates text from sourceLang to targetLang.
type Oracle interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Gate renders text in a recipient's language on a best-effort basis.
// Failures never surface to callers: the original text is returned instead.
type Gate struct {
	oracle  Oracle
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGate creates a gate around oracle. A non-positive timeout uses DefaultTimeout.
func NewGate(oracle Oracle, timeout time.Duration, logger zerolog.Logger) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{
		oracle:  oracle,
		timeout: timeout,
		logger:  logger.With().Str("component", "translate").Logger(),
	}
}

type result struct {
	text string
	err  error
}

// Resolve returns text rendered in recipientLang. Empty text and matching
// languages return immediately without calling the oracle. The oracle gets
// exactly one attempt within the gate's timeout.
func (g *Gate) Resolve(ctx context.Context, text, senderLang, recipientLang string) string {
	if text == "" || senderLang == recipientLang || g.oracle == nil {
		metrics.Translations.WithLabelValues("skipped").Inc()
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		translated, err := g.oracle.Translate(ctx, text, recipientLang, senderLang)
		done <- result{text: translated, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}
	metrics.TranslationLatency.Observe(time.Since(start).Seconds())

	if res.err != nil {
		outcome := "error"
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.Translations.WithLabelValues(outcome).Inc()
		g.logger.Warn().
			Err(res.err).
			Str("source", senderLang).
			Str("target", recipientLang).
			Msg("translation failed, delivering original text")
		return text
	}

	if res.text == "" {
		metrics.Translations.WithLabelValues("error").Inc()
		g.logger.Warn().
			Str("source", senderLang).
			Str("target", recipientLang).
			Msg("translation came back empty, delivering original text")
		return text
	}

	metrics.Translations.WithLabelValues("translated").Inc()
	return res.text
}
