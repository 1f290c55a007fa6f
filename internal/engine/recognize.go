package engine

import (
	"context"
	"errors"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/knowledge"
)

// Recognition is the outcome of identifying a plant from a photo.
type Recognition struct {
	Recognized bool
	Plant      *knowledge.Plant
	State      string
	// Stored reports what the learning write did.
	Stored knowledge.UpsertResult
	Reply  Reply
}

// RecognizePlant identifies the plant in img and stores what was learned.
// Failure to recognize is a normal outcome, never an error.
func (e *Engine) RecognizePlant(ctx context.Context, img generative.ImageRef) Recognition {
	text := e.ai.CompleteWithImage(ctx, generative.RecognitionPrompt, img, generative.RecognitionMaxTokens)
	if generative.IsFallback(text) {
		return Recognition{Reply: Reply{Text: text, Origin: OriginFallback, Section: knowledge.SectionPhoto}}
	}

	parsed, stage, err := e.parser.Parse(text)
	if err != nil {
		e.log.InfoContext(ctx, "Plant not recognized", "error", err)
		return Recognition{Reply: Reply{Text: format.NotRecognized, Origin: OriginGenerated, Section: knowledge.SectionPhoto}}
	}

	plant := parsed.Plant(stage)
	res, err := e.store.Plants.Upsert(ctx, plant)
	if err != nil {
		e.log.WarnContext(ctx, "Failed to store recognized plant", "entity", plant.Name, "error", err)
	}
	err = e.store.Plants.Modify(ctx, plant.Name, func(p *knowledge.Plant) bool {
		p.ImageCount++
		return true
	})
	if err != nil && !errors.Is(err, knowledge.ErrNotFound) {
		e.log.WarnContext(ctx, "Failed to count plant image", "entity", plant.Name, "error", err)
	}
	if stored := e.lookupPlant(ctx, plant.Name); stored != nil {
		plant = stored
	}
	e.log.InfoContext(ctx, "Plant recognized",
		"entity", plant.Name, "stage", stage.String(), "confidence", plant.Confidence, "stored", res.String())

	return Recognition{
		Recognized: true,
		Plant:      plant,
		State:      parsed.State,
		Stored:     res,
		Reply: Reply{
			Text:     format.Recognition(plant, parsed.State),
			Markdown: true,
			Entity:   plant,
			Origin:   OriginGenerated,
			Section:  knowledge.SectionPhoto,
		},
	}
}
