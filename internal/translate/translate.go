// Package translate routes sentence translation requests through the
// on-device translation engine, directly or via the hub language.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

//go:generate mockgen -source=translate.go -destination=../mocks/translate/mock_translator.go -package=mock_translate Translator

// Translator is the external translation capability. Implementations
// are expected to honor ctx deadlines.
type Translator interface {
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)
}

// hubLanguage is the pivot for pairs without a direct model.
const hubLanguage = "en"

// directQuality is the quality signal for a single-model translation.
// Hub-routed results are penalized below it.
const directQuality = 1.0

// directPairs lists language pairs served by a dedicated model. All
// shipped models pair with English.
var directPairs = buildDirectPairs([]string{
	"es", "fr", "de", "it", "pt", "nl", "pl", "cs", "bg", "et", "uk", "ru", "ko",
})

func buildDirectPairs(langs []string) map[string]bool {
	pairs := make(map[string]bool, 2*len(langs))
	for _, lang := range langs {
		pairs[lang+"-"+hubLanguage] = true
		pairs[hubLanguage+"-"+lang] = true
	}
	return pairs
}

// ErrCancelled reports that the caller aborted between the two legs
// of a hub-routed translation. It is distinct from a timeout.
var ErrCancelled = errors.New("translation cancelled")

// UnsupportedPairError reports a pair no model chain can serve.
type UnsupportedPairError struct {
	Source string
	Target string
}

func (e *UnsupportedPairError) Error() string {
	return fmt.Sprintf("no translation path from %s to %s", e.Source, e.Target)
}

// LegError identifies which leg of a hub-routed translation failed.
type LegError struct {
	From string
	To   string
	Err  error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("translate %s->%s leg: %v", e.From, e.To, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}

// Result is a resolved translation. Quality is a coarse signal in
// (0, 1]; hub-routed results score below direct ones because each leg
// compounds information loss.
type Result struct {
	Text      string
	Quality   float64
	HubRouted bool
}

type Resolver struct {
	translator Translator
	timeout    time.Duration
	hubPenalty float64
}

// NewResolver wraps translator with pair routing. timeout bounds one
// whole translation; hub routing splits it across the two legs.
func NewResolver(translator Translator, timeout time.Duration, hubPenalty float64) *Resolver {
	return &Resolver{
		translator: translator,
		timeout:    timeout,
		hubPenalty: hubPenalty,
	}
}

// IsSupported reports whether source->target can be served, directly
// or through the hub.
func (r *Resolver) IsSupported(source, target string) bool {
	if source == target || source == "" || target == "" {
		return false
	}
	if directPairs[source+"-"+target] {
		return true
	}
	return directPairs[source+"-"+hubLanguage] && directPairs[hubLanguage+"-"+target]
}

// Translate resolves text from source to target within the
// resolver's timeout budget.
func (r *Resolver) Translate(ctx context.Context, text, source, target string) (*Result, error) {
	if !r.IsSupported(source, target) {
		return nil, &UnsupportedPairError{Source: source, Target: target}
	}
	if directPairs[source+"-"+target] {
		return r.direct(ctx, text, source, target)
	}
	return r.viaHub(ctx, text, source, target)
}

func (r *Resolver) direct(ctx context.Context, text, source, target string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	translated, err := r.translator.Translate(ctx, text, source, target)
	if err != nil {
		return nil, fmt.Errorf("translate %s->%s: %w", source, target, err)
	}
	return &Result{Text: translated, Quality: directQuality}, nil
}

// viaHub runs source->hub then hub->target, each within half of the
// total budget. Either leg failing aborts the whole request naming
// the leg; an abort between legs reports ErrCancelled.
func (r *Resolver) viaHub(ctx context.Context, text, source, target string) (*Result, error) {
	legTimeout := r.timeout / 2

	legCtx, cancel := context.WithTimeout(ctx, legTimeout)
	intermediate, err := r.translator.Translate(legCtx, text, source, hubLanguage)
	cancel()
	if err != nil {
		return nil, &LegError{From: source, To: hubLanguage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("translate %s->%s: %w", source, target, err)
	}

	legCtx, cancel = context.WithTimeout(ctx, legTimeout)
	translated, err := r.translator.Translate(legCtx, intermediate, hubLanguage, target)
	cancel()
	if err != nil {
		return nil, &LegError{From: hubLanguage, To: target, Err: err}
	}

	slog.Debug("hub-routed translation",
		slog.String("source", source),
		slog.String("target", target),
		slog.String("hub", hubLanguage))
	return &Result{
		Text:      translated,
		Quality:   directQuality - r.hubPenalty,
		HubRouted: true,
	}, nil
}
