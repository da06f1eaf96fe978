package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type mapCache struct {
	entries map[string]string
	readErr error
}

func (c *mapCache) GetTranslation(_ context.Context, text, src, tgt string) (string, bool, error) {
	if c.readErr != nil {
		return "", false, c.readErr
	}
	v, ok := c.entries[src+":"+tgt+":"+text]
	return v, ok, nil
}

func (c *mapCache) SetTranslation(_ context.Context, text, src, tgt, translated string) error {
	c.entries[src+":"+tgt+":"+text] = translated
	return nil
}

func TestCachedOracleServesRepeats(t *testing.T) {
	next := &spyOracle{out: "bonjour"}
	cache := &mapCache{entries: map[string]string{}}
	oracle := NewCachedOracle(next, cache, zerolog.Nop())

	for i := 0; i < 3; i++ {
		got, err := oracle.Translate(context.Background(), "hello", "fr", "en")
		if err != nil || got != "bonjour" {
			t.Fatalf("Translate() = %q, %v", got, err)
		}
	}
	if n := next.calls.Load(); n != 1 {
		t.Errorf("backing oracle called %d times, want 1", n)
	}
}

func TestCachedOracleIgnoresCacheErrors(t *testing.T) {
	next := &spyOracle{out: "hallo"}
	cache := &mapCache{entries: map[string]string{}, readErr: errors.New("redis down")}
	oracle := NewCachedOracle(next, cache, zerolog.Nop())

	got, err := oracle.Translate(context.Background(), "hello", "de", "en")
	if err != nil || got != "hallo" {
		t.Fatalf("Translate() = %q, %v", got, err)
	}
}

func TestCachedOracleDoesNotCacheFailures(t *testing.T) {
	next := &spyOracle{err: errors.New("boom")}
	cache := &mapCache{entries: map[string]string{}}
	oracle := NewCachedOracle(next, cache, zerolog.Nop())

	if _, err := oracle.Translate(context.Background(), "hello", "de", "en"); err == nil {
		t.Fatal("expected error")
	}
	if len(cache.entries) != 0 {
		t.Error("failed translation was cached")
	}
}

func TestBuildPromptNamesLanguages(t *testing.T) {
	p := buildPrompt("good morning", "hi", "en")
	if !strings.Contains(p, "from English to Hindi") {
		t.Errorf("prompt missing language names: %q", p)
	}
	if !strings.HasSuffix(p, "good morning") {
		t.Errorf("prompt should end with the text: %q", p)
	}
}

func TestCleanOutputStripsFences(t *testing.T) {
	tests := map[string]string{
		"hola":                  "hola",
		"  hola \n":             "hola",
		"```\nhola\n```":        "hola",
		"```text\nhola mundo```": "hola mundo",
	}
	for in, want := range tests {
		if got := cleanOutput(in); got != want {
			t.Errorf("cleanOutput(%q) = %q, want %q", in, got, want)
		}
	}
}
