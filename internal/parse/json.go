package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/edgard/plexybot/internal/knowledge"
)

// ExtractJSONObject returns the first balanced {...} substring of text.
// Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString, escaped := false, false
		for i := start; i < len(text); i++ {
			c := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
		// unbalanced from this brace; try the next one
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// flexText accepts a JSON string, a list of strings (joined by newlines),
// a number or null.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexText(strings.TrimSpace(s))
	case '[':
		var items []flexText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s := strings.TrimSpace(string(it)); s != "" {
				parts = append(parts, s)
			}
		}
		*f = flexText(strings.Join(parts, "\n"))
	case '{':
		var m map[string]flexText
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		parts := make([]string, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if v := m[k]; v != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, v))
			}
		}
		*f = flexText(strings.Join(parts, "\n"))
	default:
		*f = flexText(string(data))
	}
	return nil
}

// flexList accepts a list of strings or a single newline-separated string.
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	var t flexText
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = splitLines(string(t))
	return nil
}

type careJSON struct {
	Watering    flexText `json:"watering"`
	Water       flexText `json:"water"`
	Light       flexText `json:"light"`
	Temperature flexText `json:"temperature"`
	Soil        flexText `json:"soil"`
	Humidity    flexText `json:"humidity"`
	Fertilizing flexText `json:"fertilizing"`
	General     flexText `json:"general"`
}

func (c careJSON) care() knowledge.Care {
	watering := c.Watering
	if watering == "" {
		watering = c.Water
	}
	return knowledge.Care{
		Watering:    string(watering),
		Light:       string(c.Light),
		Temperature: string(c.Temperature),
		Soil:        string(c.Soil),
		Humidity:    string(c.Humidity),
		Fertilizing: string(c.Fertilizing),
		General:     string(c.General),
	}
}

// flexCare accepts a care object or a plain string of general advice.
type flexCare struct {
	careJSON
}

func (f *flexCare) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return json.Unmarshal(data, &f.careJSON)
	}
	return f.General.UnmarshalJSON(data)
}

// flexProblems accepts strings, {label, resolution} objects (with a few
// common key spellings) or a single string.
type flexProblems []knowledge.Problem

func (f *flexProblems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		var t flexText
		if err := t.UnmarshalJSON(data); err != nil {
			return err
		}
		*f = nil
		for _, line := range splitLines(string(t)) {
			*f = append(*f, knowledge.Problem{Label: line})
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(flexProblems, 0, len(items))
	for _, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			var m map[string]flexText
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			p := knowledge.Problem{
				Label:      firstOf(m, "label", "problem", "name", "название", "проблема"),
				Resolution: firstOf(m, "resolution", "solution", "решение"),
			}
			if p.Label != "" {
				out = append(out, p)
			}
			continue
		}
		var t flexText
		if err := t.UnmarshalJSON(raw); err != nil {
			return err
		}
		if t != "" {
			out = append(out, knowledge.Problem{Label: string(t)})
		}
	}
	*f = out
	return nil
}

func firstOf(m map[string]flexText, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != "" {
			return string(v)
		}
	}
	return ""
}

type plantJSON struct {
	Name           flexText     `json:"name"`
	ScientificName flexText     `json:"scientific_name"`
	Type           flexText     `json:"type"`
	Category       flexText     `json:"category"`
	Description    flexText     `json:"description"`
	State          flexText     `json:"state"`
	CareTips       flexCare     `json:"care_tips"`
	Benefits       flexText     `json:"benefits"`
	Problems       flexProblems `json:"common_problems"`
	Tips           flexList     `json:"tips"`
	careJSON
}

// JSONStage decodes the first JSON object in text. Care facets are read from
// a nested care_tips object and from top-level keys alike.
func JSONStage(text string) (Parsed, error) {
	obj, ok := ExtractJSONObject(text)
	if !ok {
		return Parsed{}, ErrNoStructuredData
	}
	var raw plantJSON
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrNoStructuredData, err)
	}

	care := raw.CareTips.care()
	flat := raw.careJSON.care()
	fillEmpty(&care.Watering, flat.Watering)
	fillEmpty(&care.Light, flat.Light)
	fillEmpty(&care.Temperature, flat.Temperature)
	fillEmpty(&care.Soil, flat.Soil)
	fillEmpty(&care.Humidity, flat.Humidity)
	fillEmpty(&care.Fertilizing, flat.Fertilizing)
	fillEmpty(&care.General, flat.General)

	typ := raw.Type
	if typ == "" {
		typ = raw.Category
	}
	return Parsed{
		Name:           string(raw.Name),
		ScientificName: string(raw.ScientificName),
		Type:           string(typ),
		Description:    string(raw.Description),
		State:          string(raw.State),
		Care:           care,
		Benefits:       string(raw.Benefits),
		Problems:       []knowledge.Problem(raw.Problems),
		Tips:           []string(raw.Tips),
	}, nil
}

func fillEmpty(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
