package parse

import (
	"regexp"
	"strings"

	"github.com/edgard/plexybot/internal/knowledge"
)

func labelPattern(label string) *regexp.Regexp {
	// Optional list markers and markdown emphasis around the label.
	return regexp.MustCompile(`(?m)^[\s*_\-•]*` + label + `[*_]*\s*:[*_]*[ \t]*(.+?)[ \t*_]*$`)
}

var (
	reName        = labelPattern(`Название`)
	reScientific  = labelPattern(`Научное название`)
	reDescription = labelPattern(`Описание`)
	reCare        = labelPattern(`Уход`)
	reProblems    = labelPattern(`Распространенные проблемы`)
	reState       = labelPattern(`Состояние`)
)

func findLabel(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// LabelStage reads "Label: value" lines. Only the name is mandatory.
func LabelStage(text string) (Parsed, error) {
	name := findLabel(reName, text)
	if name == "" {
		return Parsed{}, ErrNoStructuredData
	}
	p := Parsed{
		Name:           name,
		ScientificName: findLabel(reScientific, text),
		Description:    findLabel(reDescription, text),
		State:          findLabel(reState, text),
		Care:           knowledge.Care{General: findLabel(reCare, text)},
	}
	if problems := findLabel(reProblems, text); problems != "" {
		p.Problems = []knowledge.Problem{{Label: problems}}
	}
	return p, nil
}
