package engine

import (
	"context"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/intent"
	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	multipleVitaminsTitle  = "Найдено несколько совпадений:"
	multipleVitaminsFooter = "Выберите конкретный витамин или минерал для получения подробной информации."
)

// LookupVitamin answers from the store only. The second result is false when
// nothing matched.
func (e *Engine) LookupVitamin(ctx context.Context, text string) (Reply, bool) {
	if v := e.findVitamin(ctx, text); v != nil {
		return vitaminReply(v), true
	}

	found := searchCatalog(ctx, e.store.Vitamins, text, knowledge.DefaultSearchLimit, nil, e.log)
	switch len(found) {
	case 0:
		return Reply{}, false
	case 1:
		return vitaminReply(found[0]), true
	}
	names := make([]string, len(found))
	for i, v := range found {
		names[i] = v.Name
	}
	return Reply{
		Text:    format.SearchList(multipleVitaminsTitle, names, multipleVitaminsFooter),
		Origin:  OriginStore,
		Section: knowledge.SectionVitamins,
	}, true
}

// Vitamin renders one stored vitamin by name, as the menu buttons need.
func (e *Engine) Vitamin(ctx context.Context, name string) (Reply, bool) {
	v := e.lookupVitamin(ctx, name)
	if v == nil {
		return Reply{}, false
	}
	return vitaminReply(v), true
}

// ListVitamins renders every stored vitamin and mineral.
func (e *Engine) ListVitamins(ctx context.Context) Reply {
	vs, err := e.store.Vitamins.List(ctx, 0)
	if err != nil {
		e.log.WarnContext(ctx, "Failed to list vitamins", "error", err)
	}
	return Reply{Text: format.VitaminList(vs), Markdown: true, Origin: OriginStore, Section: knowledge.SectionVitamins}
}

// findVitamin tries the "витамин X" pattern, then each significant word as a name.
func (e *Engine) findVitamin(ctx context.Context, text string) *knowledge.Vitamin {
	if name, ok := intent.VitaminName(text); ok {
		if v := e.lookupVitamin(ctx, name); v != nil {
			return v
		}
	}
	for _, term := range searchTerms(text) {
		if v := e.lookupVitamin(ctx, term); v != nil {
			return v
		}
	}
	return nil
}

func vitaminReply(v *knowledge.Vitamin) Reply {
	return Reply{
		Text:     format.VitaminInfo(v, true),
		Markdown: true,
		Entity:   v,
		Origin:   OriginStore,
		Section:  knowledge.SectionVitamins,
	}
}

// RecommendVitamins answers a vitamin request from the store when a single
// record matches, otherwise asks the model.
func (e *Engine) RecommendVitamins(ctx context.Context, query string) Reply {
	if v := e.findVitamin(ctx, query); v != nil {
		r := vitaminReply(v)
		r.Section = knowledge.SectionVitaminAdvice
		return r
	}
	text := e.ai.Complete(ctx, generative.VitaminRecommendationPrompt(query),
		generative.RecommendationMaxTokens, generative.DefaultTemperature)
	return e.generated(format.CleanMarkdown(text), true, knowledge.SectionVitaminAdvice)
}
