package intent

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// keywords match as substrings (stems), as word beginnings (prefixes) or as
// whole words.
type keywords struct {
	stems    []string
	prefixes []string
	words    []string
}

func (k keywords) match(lower string, tokens []string) bool {
	for _, s := range k.stems {
		if strings.Contains(lower, s) {
			return true
		}
	}
	for _, tok := range tokens {
		for _, p := range k.prefixes {
			if strings.HasPrefix(tok, p) {
				return true
			}
		}
	}
	for _, w := range k.words {
		if slices.Contains(tokens, w) {
			return true
		}
	}
	return false
}

var (
	vitaminKeywords = keywords{
		stems: []string{"витамин", "минерал", "кальци", "желез", "магни", "цинк", "калий", "калия", "натри", "фосфор", "селен", "омега"},
		words: []string{"йод", "йода"},
	}
	plantKeywords = keywords{
		stems: []string{"растени", "цветок", "цветы", "цветка", "уход", "полив", "удобр", "почв", "грунт", "скорлуп", "кожур", "гущ", "заварк", "компост", "пересад", "листь"},
	}
	healthKeywords = keywords{
		stems: []string{"здоров", "самочувстви", "устал", "болезн", "симптом", "лечени", "профилактик", "иммунитет", "бессонниц"},
		words: []string{"сон", "сна"},
	}
	aiKeywords = keywords{
		stems: []string{"искусственный интеллект", "анализ", "помоги", "посоветуй", "что делать", "как быть", "объясни", "расскажи", "консультант"},
		words: []string{"ai", "ии"},
	}
	problemKeywords = keywords{
		stems: []string{
			"проблем", "желте", "пожелт", "вян", "засох", "сохнет", "пятн", "опада", "вредител",
			"дефицит", "нехватк", "недостат", "выпада", "ломк", "слабост", "болит", "болеет", "что делать",
		},
		// "гни" is also inside "магний"
		prefixes: []string{"гни", "подгни", "загни"},
	}
)

func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func prepare(text string) (string, []string) {
	lower := strings.ToLower(text)
	return lower, tokenize(lower)
}

// IsVitaminQuery reports whether text mentions vitamins or minerals.
func IsVitaminQuery(text string) bool {
	return vitaminKeywords.match(prepare(text))
}

// IsPlantQuery reports whether text mentions plants or plant care.
func IsPlantQuery(text string) bool {
	return plantKeywords.match(prepare(text))
}

// IsHealthQuery reports whether text is about general health.
func IsHealthQuery(text string) bool {
	return healthKeywords.match(prepare(text))
}

// IsAIQuery reports whether text asks for advice or an explanation.
func IsAIQuery(text string) bool {
	return aiKeywords.match(prepare(text))
}

var reVitaminName = regexp.MustCompile(`(?i)витамин\s+([\p{L}\d]+)`)

// Cyrillic letters users type instead of the Latin vitamin letter.
var vitaminLetters = map[rune]rune{
	'а': 'A', 'б': 'B', 'в': 'B', 'с': 'C', 'д': 'D', 'е': 'E', 'к': 'K', 'р': 'P',
}

// VitaminName extracts "Витамин X" from text such as "что такое витамин с?".
func VitaminName(text string) (string, bool) {
	m := reVitaminName.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	letters := []rune(strings.ToLower(m[1]))
	if len(letters) > 3 {
		return "", false
	}
	if unicode.Is(unicode.Cyrillic, letters[0]) {
		latin, ok := vitaminLetters[letters[0]]
		if !ok || (len(letters) > 1 && !unicode.IsDigit(letters[1])) {
			return "", false
		}
		letters[0] = latin
	}
	return "Витамин " + strings.ToUpper(string(letters)), true
}
