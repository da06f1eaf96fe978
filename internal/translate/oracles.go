package translate

import (
	"context"

	"github.com/rs/zerolog"
)

// TranslationCache stores finished translations.
type TranslationCache interface {
	GetTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error)
	SetTranslation(ctx context.Context, text, sourceLang, targetLang, translated string) error
}

// CachedOracle serves repeated translations from a cache and only asks the
// wrapped oracle on a miss. Cache errors are logged and ignored.
type CachedOracle struct {
	next   Oracle
	cache  TranslationCache
	logger zerolog.Logger
}

// NewCachedOracle wraps next with cache.
func NewCachedOracle(next Oracle, cache TranslationCache, logger zerolog.Logger) *CachedOracle {
	return &CachedOracle{
		next:   next,
		cache:  cache,
		logger: logger.With().Str("component", "translate_cache").Logger(),
	}
}

// Translate implements Oracle.
func (o *CachedOracle) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	cached, ok, err := o.cache.GetTranslation(ctx, text, sourceLang, targetLang)
	if err != nil {
		o.logger.Debug().Err(err).Msg("cache read failed")
	} else if ok {
		return cached, nil
	}

	translated, err := o.next.Translate(ctx, text, targetLang, sourceLang)
	if err != nil {
		return "", err
	}

	if err := o.cache.SetTranslation(ctx, text, sourceLang, targetLang, translated); err != nil {
		o.logger.Debug().Err(err).Msg("cache write failed")
	}
	return translated, nil
}

// NopOracle returns text unchanged. Used when no translation backend is configured.
type NopOracle struct{}

// Translate implements Oracle.
func (NopOracle) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
