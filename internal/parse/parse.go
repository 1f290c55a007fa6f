// Package parse turns free-text generative answers into structured plant
// records. Parsing runs as a pipeline: a JSON stage, then a labelled-field
// stage, then failure.
package parse

import (
	"errors"
	"strings"

	"github.com/edgard/plexybot/internal/knowledge"
)

var (
	// ErrNoStructuredData is returned by a stage that found nothing it can read.
	ErrNoStructuredData = errors.New("no structured data")
	// ErrNotRecognized means the answer says the plant could not be identified.
	ErrNotRecognized = errors.New("plant not recognized")
)

// Stage identifies which pipeline stage produced a result.
type Stage int

const (
	StageNone Stage = iota
	StageJSON
	StageLabels
)

func (s Stage) String() string {
	switch s {
	case StageJSON:
		return "json"
	case StageLabels:
		return "labels"
	default:
		return "none"
	}
}

// Parsed is the structured content extracted from one answer.
type Parsed struct {
	Name           string
	ScientificName string
	Type           string
	Description    string
	Care           knowledge.Care
	Benefits       string
	Problems       []knowledge.Problem
	Tips           []string
	State          string
}

// Confidence grades a result by how it was obtained: a JSON answer with a
// scientific name is high, a labelled answer without one is low.
func (p Parsed) Confidence(stage Stage) knowledge.Confidence {
	hasScientific := !knowledge.IsPlaceholder(p.ScientificName)
	switch {
	case stage == StageJSON && hasScientific:
		return knowledge.ConfidenceHigh
	case stage == StageJSON, hasScientific:
		return knowledge.ConfidenceMedium
	default:
		return knowledge.ConfidenceLow
	}
}

// Plant converts the result into a generated plant record.
func (p Parsed) Plant(stage Stage) *knowledge.Plant {
	return &knowledge.Plant{
		Name:           p.Name,
		ScientificName: p.ScientificName,
		Category:       p.Type,
		Description:    p.Description,
		Care:           p.Care,
		Benefits:       p.Benefits,
		Problems:       p.Problems,
		Tips:           p.Tips,
		Confidence:     p.Confidence(stage),
		Source:         knowledge.SourceGenerated,
	}
}

var unknownNames = map[string]struct{}{
	"неизвестное растение": {},
	"unknown plant":        {},
}

// IsUnknownName reports whether name is empty or a "could not identify" sentinel.
func IsUnknownName(name string) bool {
	if knowledge.IsPlaceholder(name) {
		return true
	}
	_, ok := unknownNames[knowledge.NameKey(strings.Trim(name, ".!"))]
	return ok
}

var rejectionPhrases = []string{
	"не видно",
	"невозможно определить",
	"не удалось определить",
	"не могу определить",
	"cannot be identified",
	"can't be identified",
	"unable to identify",
	"not clearly visible",
}

// IsRejection reports whether text says the subject could not be identified.
func IsRejection(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range rejectionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// StageFunc is one parsing strategy.
type StageFunc func(text string) (Parsed, error)

type namedStage struct {
	stage Stage
	parse StageFunc
}

// Pipeline runs its stages in order and returns the first usable result.
type Pipeline struct {
	stages []namedStage
}

// NewPipeline returns the JSON → labels pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{stages: []namedStage{
		{stage: StageJSON, parse: JSONStage},
		{stage: StageLabels, parse: LabelStage},
	}}
}

// Parse extracts a named record from text.
//
// A JSON object naming a real plant wins even if the prose around it hedges.
// A JSON object whose name is a sentinel ends the pipeline with
// ErrNotRecognized. Otherwise a rejection phrase anywhere in the text, or no
// stage yielding a name, also gives ErrNotRecognized.
func (p *Pipeline) Parse(text string) (Parsed, Stage, error) {
	if strings.TrimSpace(text) == "" {
		return Parsed{}, StageNone, ErrNotRecognized
	}
	for _, st := range p.stages {
		res, err := st.parse(text)
		if err != nil {
			continue
		}
		if IsUnknownName(res.Name) {
			if st.stage == StageJSON {
				return Parsed{}, st.stage, ErrNotRecognized
			}
			continue
		}
		if st.stage != StageJSON && IsRejection(text) {
			return Parsed{}, StageNone, ErrNotRecognized
		}
		return res, st.stage, nil
	}
	return Parsed{}, StageNone, ErrNotRecognized
}
