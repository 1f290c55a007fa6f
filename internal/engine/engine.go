// Package engine answers requests from the local knowledge store first and
// from the generative model otherwise, storing what the model teaches it.
//
// No method returns an error: every failure ends in a presentable Reply.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/intent"
	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/parse"
)

// Generator is the part of the generative bridge the engine uses.
type Generator interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) string
	CompleteWithImage(ctx context.Context, prompt string, img generative.ImageRef, maxTokens int) string
}

// Origin tells where a reply came from.
type Origin int

const (
	OriginStore Origin = iota
	OriginGenerated
	OriginFallback
)

func (o Origin) String() string {
	switch o {
	case OriginStore:
		return "store"
	case OriginGenerated:
		return "generated"
	default:
		return "fallback"
	}
}

// Reply is what the transport renders.
type Reply struct {
	Text string
	// Markdown is set when Text uses Telegram's legacy Markdown.
	Markdown bool
	// Entity is the record the reply describes, if any.
	Entity  knowledge.Entity
	Origin  Origin
	Section knowledge.Section
}

// Engine is stateless per call and safe for concurrent use.
type Engine struct {
	store      *knowledge.Store
	ai         Generator
	classifier *intent.Classifier
	parser     *parse.Pipeline
	log        *slog.Logger
}

// New wires an Engine.
func New(store *knowledge.Store, ai Generator, classifier *intent.Classifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if classifier == nil {
		classifier = intent.NewClassifier(nil, false, log)
	}
	return &Engine{
		store:      store,
		ai:         ai,
		classifier: classifier,
		parser:     parse.NewPipeline(),
		log:        log.With("component", "engine"),
	}
}

func (e *Engine) generated(text string, markdown bool, section knowledge.Section) Reply {
	if generative.IsFallback(text) {
		return Reply{Text: text, Origin: OriginFallback, Section: section}
	}
	return Reply{Text: text, Markdown: markdown, Origin: OriginGenerated, Section: section}
}

// lookupPlant returns nil on a miss; store failures count as misses.
func (e *Engine) lookupPlant(ctx context.Context, name string) *knowledge.Plant {
	p, err := e.store.Plants.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, knowledge.ErrNotFound) {
			e.log.WarnContext(ctx, "Plant lookup failed", "entity", name, "error", err)
		}
		return nil
	}
	return p
}

func (e *Engine) lookupVitamin(ctx context.Context, name string) *knowledge.Vitamin {
	v, err := e.store.Vitamins.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, knowledge.ErrNotFound) {
			e.log.WarnContext(ctx, "Vitamin lookup failed", "entity", name, "error", err)
		}
		return nil
	}
	return v
}

// learnPlant upserts a generated plant, logging instead of failing.
func (e *Engine) learnPlant(ctx context.Context, p *knowledge.Plant) {
	res, err := e.store.Plants.Upsert(ctx, p)
	if err != nil {
		e.log.WarnContext(ctx, "Failed to store generated plant", "entity", p.Name, "error", err)
		return
	}
	e.log.InfoContext(ctx, "Generated plant stored", "entity", p.Name, "result", res.String())
}

var stopWords = map[string]struct{}{
	"витамин": {}, "витамины": {}, "витамина": {}, "минерал": {}, "минералы": {},
	"растение": {}, "растения": {}, "растений": {}, "расскажи": {}, "какие": {},
	"какой": {}, "какая": {}, "нужно": {}, "можно": {}, "чтобы": {}, "about": {},
}

// searchTerms returns the whole query followed by its significant words.
func searchTerms(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var terms []string
	if _, stop := stopWords[strings.ToLower(text)]; !stop {
		terms = append(terms, text)
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(w) < 4 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// searchCatalog runs Search for each term and collects distinct records.
func searchCatalog[T knowledge.Record[T]](ctx context.Context, c *knowledge.Catalog[T], text string, limit int, keep func(T) bool, log *slog.Logger) []T {
	seen := make(map[string]struct{})
	var out []T
	for _, term := range searchTerms(text) {
		res, err := c.Search(ctx, term, limit)
		if err != nil {
			log.WarnContext(ctx, "Search failed", "term", term, "error", err)
			return out
		}
		for _, r := range res {
			key := knowledge.NameKey(r.DisplayName())
			if _, dup := seen[key]; dup || (keep != nil && !keep(r)) {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
