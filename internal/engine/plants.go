package engine

import (
	"context"
	"strings"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/parse"
)

const (
	multiplePlantsTitle  = "Найдено несколько советов по уходу за растениями:"
	multiplePlantsFooter = "Выберите конкретное растение или тип отходов для получения подробной информации."

	defaultPlantCategory = "комнатное"
)

// WasteNames are the kitchen-waste fertilizers recognized in free text.
var WasteNames = []string{"яичная скорлупа", "банановая кожура", "кофейная гуща", "чайная заварка"}

func plantReply(p *knowledge.Plant, origin Origin) Reply {
	text := format.PlantCard(p)
	if p.IsWaste() {
		text = format.WasteTip(p)
	}
	return Reply{Text: text, Markdown: true, Entity: p, Origin: origin, Section: knowledge.SectionPlants}
}

// LookupPlant answers a plant or waste-tip question from the store only.
func (e *Engine) LookupPlant(ctx context.Context, text string) (Reply, bool) {
	lower := strings.ToLower(text)
	for _, waste := range WasteNames {
		if strings.Contains(lower, waste) {
			if p := e.lookupPlant(ctx, waste); p != nil {
				return plantReply(p, OriginStore), true
			}
		}
	}
	for _, term := range searchTerms(text) {
		if p := e.lookupPlant(ctx, term); p != nil {
			return plantReply(p, OriginStore), true
		}
	}

	found := searchCatalog(ctx, e.store.Plants, text, knowledge.DefaultSearchLimit, nil, e.log)
	switch len(found) {
	case 0:
		return Reply{}, false
	case 1:
		return plantReply(found[0], OriginStore), true
	}
	names := make([]string, len(found))
	for i, p := range found {
		names[i] = p.Name
	}
	return Reply{
		Text:    format.SearchList(multiplePlantsTitle, names, multiplePlantsFooter),
		Origin:  OriginStore,
		Section: knowledge.SectionPlants,
	}, true
}

// WasteTip renders a stored waste-based fertilizer tip.
func (e *Engine) WasteTip(ctx context.Context, name string) (Reply, bool) {
	p := e.lookupPlant(ctx, name)
	if p == nil {
		return Reply{}, false
	}
	return plantReply(p, OriginStore), true
}

// ListWasteTips renders every stored waste-based tip.
func (e *Engine) ListWasteTips(ctx context.Context) Reply {
	all, err := e.store.Plants.List(ctx, 0)
	if err != nil {
		e.log.WarnContext(ctx, "Failed to list plants", "error", err)
	}
	var wastes []*knowledge.Plant
	for _, p := range all {
		if p.IsWaste() {
			wastes = append(wastes, p)
		}
	}
	return Reply{Text: format.WasteList(wastes), Markdown: true, Origin: OriginStore, Section: knowledge.SectionPlants}
}

// PlantCare returns a care card for the named plant: from the store, from a
// generated and stored care record, or generic tips.
func (e *Engine) PlantCare(ctx context.Context, name string) Reply {
	name = strings.TrimSpace(name)
	if parse.IsUnknownName(name) {
		return Reply{
			Text:     "🌿 *Общие рекомендации по уходу*\n\n" + format.GenericCareTips,
			Markdown: true,
			Origin:   OriginStore,
			Section:  knowledge.SectionPlants,
		}
	}
	if p := e.lookupPlant(ctx, name); p != nil {
		return plantReply(p, OriginStore)
	}

	text := e.ai.Complete(ctx, generative.PlantCarePrompt(name), generative.CareMaxTokens, generative.DefaultTemperature)
	if generative.IsFallback(text) {
		return Reply{Text: format.GenericPlantAdvice(name), Markdown: true, Origin: OriginFallback, Section: knowledge.SectionPlants}
	}

	parsed, stage, err := e.parser.Parse(text)
	if err != nil {
		e.log.InfoContext(ctx, "Care answer not structured, asking for short tips", "entity", name, "error", err)
		return e.careTips(ctx, name)
	}
	p := parsed.Plant(stage)
	if p.Category == "" {
		p.Category = defaultPlantCategory
	}
	e.learnPlant(ctx, p)
	if stored := e.lookupPlant(ctx, p.Name); stored != nil {
		p = stored
	}
	return plantReply(p, OriginGenerated)
}

func (e *Engine) careTips(ctx context.Context, name string) Reply {
	tips := e.ai.Complete(ctx, generative.CareTipsPrompt(name), generative.CareTipsMaxTokens, generative.DefaultTemperature)
	if generative.IsFallback(tips) {
		return Reply{Text: format.GenericPlantAdvice(name), Markdown: true, Origin: OriginFallback, Section: knowledge.SectionPlants}
	}
	return Reply{
		Text:     "🌿 *Уход за растением " + name + "*\n\n" + format.CleanMarkdown(tips),
		Markdown: true,
		Origin:   OriginGenerated,
		Section:  knowledge.SectionPlants,
	}
}

// PlantInfo describes a plant, generating a description when none is stored.
func (e *Engine) PlantInfo(ctx context.Context, name string) Reply {
	if p := e.lookupPlant(ctx, name); p != nil && !knowledge.IsPlaceholder(p.Description) {
		return plantReply(p, OriginStore)
	}
	text := e.ai.Complete(ctx, generative.PlantInfoPrompt(name), generative.QuestionMaxTokens, generative.DefaultTemperature)
	if generative.IsFallback(text) {
		return e.generated(text, false, knowledge.SectionPlants)
	}
	return e.generated(format.PlantInfoAnswer(text), true, knowledge.SectionPlants)
}

// PlantSection answers one care facet, filling the stored plant's empty
// field with the generated answer.
func (e *Engine) PlantSection(ctx context.Context, name string, section format.CareSection) Reply {
	p := e.lookupPlant(ctx, name)
	if p != nil {
		if v := section.Value(p); v != "" {
			return Reply{
				Text:     format.PlantSection(p.Name, section, format.CleanMarkdown(v)),
				Markdown: true,
				Entity:   p,
				Origin:   OriginStore,
				Section:  knowledge.SectionPlants,
			}
		}
		name = p.Name
	}

	maxTokens := generative.SectionMaxTokens
	if section == format.SectionProblems {
		maxTokens += 100
	}
	text := e.ai.Complete(ctx, sectionPrompt(name, section), maxTokens, generative.DefaultTemperature)
	if generative.IsFallback(text) {
		return Reply{Text: text, Origin: OriginFallback, Section: knowledge.SectionPlants}
	}
	reply := Reply{
		Text:     format.PlantSection(name, section, format.CleanMarkdown(text)),
		Markdown: true,
		Origin:   OriginGenerated,
		Section:  knowledge.SectionPlants,
	}
	if p != nil {
		e.learnSection(ctx, p.Name, section, text)
		reply.Entity = p
	}
	return reply
}

func (e *Engine) learnSection(ctx context.Context, name string, section format.CareSection, text string) {
	delta := &knowledge.Plant{Name: name, Source: knowledge.SourceGenerated}
	switch section {
	case format.SectionWatering:
		delta.Care.Watering = text
	case format.SectionLight:
		delta.Care.Light = text
	case format.SectionTemperature:
		delta.Care.Temperature = text
	case format.SectionSoil:
		delta.Care.Soil = text
	default:
		return
	}
	e.learnPlant(ctx, delta)
}

func sectionPrompt(name string, section format.CareSection) string {
	switch section {
	case format.SectionWatering:
		return "Как правильно поливать растение " + name + "? Дай подробные рекомендации по поливу."
	case format.SectionLight:
		return "Какое освещение требуется для растения " + name + "? Дай подробные рекомендации."
	case format.SectionTemperature:
		return "Какая температура требуется для растения " + name + "? Дай подробные рекомендации."
	case format.SectionSoil:
		return "Какая почва требуется для растения " + name + "? Дай подробные рекомендации."
	default:
		return "Какие распространенные проблемы и болезни бывают у растения " + name + "? Дай подробное описание и методы лечения."
	}
}
