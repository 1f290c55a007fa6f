package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/intent"
	"github.com/edgard/plexybot/internal/knowledge"
)

// DiagnoseProblem asks the model about a described problem.
func (e *Engine) DiagnoseProblem(ctx context.Context, description string, kind knowledge.ProblemKind) Reply {
	text := e.ai.Complete(ctx, generative.ProblemPrompt(description, kind),
		generative.ProblemMaxTokens, generative.DefaultTemperature)
	if generative.IsFallback(text) {
		return e.generated(text, false, knowledge.SectionProblems)
	}
	return e.generated(format.ProblemAnalysis(text, kind), true, knowledge.SectionProblems)
}

// AnswerQuestion returns a short plain-text answer prefixed with "PLEXY:".
func (e *Engine) AnswerQuestion(ctx context.Context, question string) Reply {
	text := e.ai.Complete(ctx, generative.QuestionPrompt(question),
		generative.QuestionMaxTokens, generative.DefaultTemperature)
	if generative.IsFallback(text) {
		return e.generated(text, false, knowledge.SectionAIQuestion)
	}
	return e.generated(format.GeneralAnswer(text), false, knowledge.SectionAIQuestion)
}

// Respond routes free text. Described problems go to a diagnosis, then the
// store is tried, then advice requests and anything unmatched go to the
// model by intent.
func (e *Engine) Respond(ctx context.Context, text string) Reply {
	// a problem mentions words that also match stored descriptions
	if r := intent.Classify(text); r.Confident {
		switch r.Label {
		case intent.VitaminProblem:
			return e.DiagnoseProblem(ctx, text, knowledge.ProblemVitamin)
		case intent.PlantProblem:
			return e.DiagnoseProblem(ctx, text, knowledge.ProblemPlant)
		}
	}

	if r, ok := e.lookupStored(ctx, text); ok {
		return r
	}
	if intent.IsAIQuery(text) || intent.IsHealthQuery(text) {
		return e.AnswerQuestion(ctx, text)
	}

	label := e.classifier.Resolve(ctx, text)
	e.log.DebugContext(ctx, "Free text classified", "label", label)
	switch label {
	case intent.VitaminProblem:
		return e.DiagnoseProblem(ctx, text, knowledge.ProblemVitamin)
	case intent.PlantProblem:
		return e.DiagnoseProblem(ctx, text, knowledge.ProblemPlant)
	case intent.VitaminInfo:
		return e.RecommendVitamins(ctx, text)
	case intent.PlantInfo:
		if name, ok := bareName(text); ok {
			return e.PlantCare(ctx, name)
		}
		return e.AnswerQuestion(ctx, text)
	default:
		return e.AnswerQuestion(ctx, text)
	}
}

// lookupStored answers from the store. Vitamin and plant queries also search
// descriptions; other text only matches record names.
func (e *Engine) lookupStored(ctx context.Context, text string) (Reply, bool) {
	vitamin, plant := intent.IsVitaminQuery(text), intent.IsPlantQuery(text)
	if vitamin {
		if r, ok := e.LookupVitamin(ctx, text); ok {
			return r, true
		}
	}
	if plant {
		if r, ok := e.LookupPlant(ctx, text); ok {
			return r, true
		}
	}
	if vitamin || plant {
		return Reply{}, false
	}

	for _, term := range searchTerms(text) {
		if v := e.lookupVitamin(ctx, term); v != nil && nameHit(v.Name, term) {
			return vitaminReply(v), true
		}
		if p := e.lookupPlant(ctx, term); p != nil && nameHit(p.Name, term) {
			return plantReply(p, OriginStore), true
		}
	}
	return Reply{}, false
}

// nameHit reports whether term is name itself or one of its words, so that
// "кофе" does not hit "Кофейная гуща".
func nameHit(name, term string) bool {
	key, t := knowledge.NameKey(name), knowledge.NameKey(term)
	return key == t || slices.Contains(strings.Fields(key), t)
}

// bareName returns text as a plant name when it is a short phrase rather
// than a question.
func bareName(text string) (string, bool) {
	name := strings.TrimSpace(strings.TrimRight(text, "?!.… "))
	if name == "" || strings.Contains(name, "?") || len(strings.Fields(name)) > 3 {
		return "", false
	}
	return name, true
}
