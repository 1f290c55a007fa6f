// Package intent classifies free-text requests.
package intent

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/edgard/plexybot/internal/generative"
)

// Label is a request category.
type Label string

const (
	VitaminInfo     Label = "vitamin_info"
	VitaminProblem  Label = "vitamin_problem"
	PlantInfo       Label = "plant_info"
	PlantProblem    Label = "plant_problem"
	GeneralQuestion Label = "general_question"
)

// ParseLabel validates s against the known labels.
func ParseLabel(s string) (Label, bool) {
	switch l := Label(s); l {
	case VitaminInfo, VitaminProblem, PlantInfo, PlantProblem, GeneralQuestion:
		return l, true
	}
	return "", false
}

// Result is the outcome of keyword classification.
type Result struct {
	Label Label
	// Confident is false when the keywords were missing or conflicting.
	Confident bool
}

// Classify routes text by keywords only.
func Classify(text string) Result {
	lower, tokens := prepare(text)
	vitamin := vitaminKeywords.match(lower, tokens)
	plant := plantKeywords.match(lower, tokens)
	problem := problemKeywords.match(lower, tokens)

	switch {
	case vitamin && !plant:
		if problem {
			return Result{Label: VitaminProblem, Confident: true}
		}
		return Result{Label: VitaminInfo, Confident: true}
	case plant && !vitamin:
		if problem {
			return Result{Label: PlantProblem, Confident: true}
		}
		return Result{Label: PlantInfo, Confident: true}
	default:
		return Result{Label: GeneralQuestion}
	}
}

// Completer is the part of the generative bridge the classifier uses.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) string
}

// Classifier combines the keyword path with an optional model call.
type Classifier struct {
	ai     Completer
	withAI bool
	log    *slog.Logger
}

// NewClassifier returns a Classifier. ai may be nil when withAI is false.
func NewClassifier(ai Completer, withAI bool, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{
		ai:     ai,
		withAI: withAI && ai != nil,
		log:    log.With("component", "intent_classifier"),
	}
}

const classifyTemperature = 0.2

// ClassifyWithAI asks the model for a label. Output that is not exactly one
// of the labels becomes GeneralQuestion.
func (c *Classifier) ClassifyWithAI(ctx context.Context, text string) Label {
	if c.ai == nil {
		return GeneralQuestion
	}
	raw := c.ai.Complete(ctx, generative.IntentPrompt(text), generative.IntentMaxTokens, classifyTemperature)
	if label, ok := ParseLabel(firstToken(raw)); ok {
		return label
	}
	c.log.WarnContext(ctx, "Unrecognized intent label from model", "raw", raw)
	return GeneralQuestion
}

// Resolve uses keywords and falls back to the model when they are not
// conclusive and model classification is enabled.
func (c *Classifier) Resolve(ctx context.Context, text string) Label {
	res := Classify(text)
	if res.Confident || !c.withAI {
		return res.Label
	}
	return c.ClassifyWithAI(ctx, text)
}

func firstToken(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
