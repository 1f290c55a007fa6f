// Package knowledge holds the plant and vitamin knowledge base: the entity
// model, the field-merge rules applied when new facts are learned, the
// generic catalog that fronts a storage backend, and the per-user journal.
package knowledge

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no entity or user matches a lookup.
var ErrNotFound = errors.New("not found")

// Kind tags an entity with its record type.
type Kind string

const (
	KindPlant   Kind = "plant"
	KindVitamin Kind = "vitamin"
)

// Confidence grades how much an entity's facts can be trusted.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Source records where an entity came from.
type Source string

const (
	SourceLocal     Source = "local"
	SourceGenerated Source = "generated"
)

// Entity is the capability shared by every record the catalog stores:
// a unique case-insensitive name plus text to search over.
type Entity interface {
	Kind() Kind
	DisplayName() string
	AliasNames() []string
	// SearchText is the lower-cased haystack matched by keyword search.
	SearchText() string
	Touch(t time.Time)
}

// Record is an Entity that knows how to absorb another record of its own type.
type Record[T any] interface {
	Entity
	// MergeFrom fills empty or placeholder fields from other and reports
	// whether anything changed.
	MergeFrom(other T) bool
	Clone() T
}

// NameKey normalizes a name into the lookup key used by every backend.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func searchText(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToLower(p))
	}
	return b.String()
}

// ProblemKind scopes a user-described problem.
type ProblemKind string

const (
	ProblemVitamin ProblemKind = "vitamin"
	ProblemPlant   ProblemKind = "plant"
	ProblemGeneral ProblemKind = "general"
)

// ParseProblemKind maps unknown values to ProblemGeneral.
func ParseProblemKind(s string) ProblemKind {
	switch ProblemKind(strings.ToLower(strings.TrimSpace(s))) {
	case ProblemVitamin:
		return ProblemVitamin
	case ProblemPlant:
		return ProblemPlant
	default:
		return ProblemGeneral
	}
}
