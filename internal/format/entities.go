package format

import (
	"fmt"
	"strings"

	"github.com/edgard/plexybot/internal/knowledge"
)

// Vitamin section headers.
const (
	HeaderBenefits    = "Польза для организма"
	HeaderSources     = "Источники в продуктах"
	HeaderDeficiency  = "При дефиците"
	HeaderOverdose    = "При избытке"
	HeaderDailyIntake = "Суточная норма"
	HeaderSummary     = "Кратко"
	HeaderCategory    = "Категория"
	HeaderAliases     = "Другие названия"
)

// VitaminInfo renders a vitamin. The short form is a single line.
func VitaminInfo(v *knowledge.Vitamin, detailed bool) string {
	if v == nil {
		return "Информация не найдена"
	}
	if !detailed {
		return fmt.Sprintf("*%s*: %s", v.Name, v.ShortDescription)
	}

	var b strings.Builder
	b.WriteString("*" + v.Name + "*\n\n")
	var head bool
	for _, f := range []struct{ header, value string }{
		{HeaderSummary, v.ShortDescription},
		{HeaderCategory, v.Category},
		{HeaderAliases, strings.Join(v.Aliases, ", ")},
	} {
		if value := strings.TrimSpace(f.value); value != "" {
			b.WriteString("*" + f.header + ":* " + value + "\n")
			head = true
		}
	}
	if head {
		b.WriteString("\n")
	}
	if d := strings.TrimSpace(v.Description); d != "" {
		b.WriteString(d + "\n\n")
	}
	bullets(&b, HeaderBenefits, v.Benefits)
	bullets(&b, HeaderSources, v.Sources)
	bullets(&b, HeaderDeficiency, v.Deficiency)
	bullets(&b, HeaderOverdose, v.Overdose)
	if di := strings.TrimSpace(v.DailyIntake); di != "" {
		b.WriteString("*" + HeaderDailyIntake + ":* " + di + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// VitaminList renders the "all vitamins and minerals" overview.
func VitaminList(vs []*knowledge.Vitamin) string {
	var b strings.Builder
	b.WriteString("*Список витаминов и минералов:*\n\n")
	for _, v := range vs {
		b.WriteString("• " + v.Name + ": " + v.ShortDescription + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// WasteTip renders a kitchen-waste fertilizer entry.
func WasteTip(p *knowledge.Plant) string {
	if p == nil {
		return "Информация не найдена"
	}
	var b strings.Builder
	b.WriteString("*" + p.Name + "*\n\n")
	if d := strings.TrimSpace(p.Description); d != "" {
		b.WriteString(d + "\n\n")
	}
	bullets(&b, "Польза для растений", p.Benefits)
	bullets(&b, "Способ применения", p.Application)
	bullets(&b, "Подходит для растений", p.SuitablePlants)
	bullets(&b, "Предостережения", p.Precautions)
	return strings.TrimRight(b.String(), "\n")
}

// WasteList renders the overview of waste-based tips.
func WasteList(ps []*knowledge.Plant) string {
	var b strings.Builder
	b.WriteString("*Способы использования бытовых отходов для растений:*\n\n")
	for _, p := range ps {
		b.WriteString("• " + p.Name + ": " + firstSentence(p.Description) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

// PlantCard renders everything known about a plant.
func PlantCard(p *knowledge.Plant) string {
	if p == nil {
		return "Информация не найдена"
	}
	var b strings.Builder
	b.WriteString("🌿 *" + p.Name + "*\n\n")
	if p.HasScientificName() {
		b.WriteString("*Научное название:* " + p.ScientificName + "\n\n")
	}
	section(&b, "Описание", p.Description)
	section(&b, "Рекомендации по уходу", p.Care.General)
	section(&b, "Освещение", p.Care.Light)
	section(&b, "Полив", p.Care.Watering)
	section(&b, "Температура", p.Care.Temperature)
	section(&b, "Почва", p.Care.Soil)
	section(&b, "Влажность", p.Care.Humidity)
	section(&b, "Подкормка", p.Care.Fertilizing)
	section(&b, "Распространенные проблемы", problemsText(p.Problems))
	bullets(&b, "Полезные советы", strings.Join(p.Tips, "\n"))
	return strings.TrimRight(b.String(), "\n")
}

func problemsText(ps []knowledge.Problem) string {
	lines := make([]string, 0, len(ps))
	for _, pr := range ps {
		if pr.Resolution != "" {
			lines = append(lines, "• "+pr.Label+" → "+pr.Resolution)
		} else {
			lines = append(lines, "• "+pr.Label)
		}
	}
	return strings.Join(lines, "\n")
}

// CareSection is one facet shown by the plant action buttons.
type CareSection string

const (
	SectionWatering    CareSection = "water"
	SectionLight       CareSection = "light"
	SectionTemperature CareSection = "temp"
	SectionSoil        CareSection = "soil"
	SectionProblems    CareSection = "problems"
)

// ParseCareSection validates a callback suffix.
func ParseCareSection(s string) (CareSection, bool) {
	switch cs := CareSection(s); cs {
	case SectionWatering, SectionLight, SectionTemperature, SectionSoil, SectionProblems:
		return cs, true
	}
	return "", false
}

// Value returns the stored text for the facet, empty if unknown.
func (s CareSection) Value(p *knowledge.Plant) string {
	if p == nil {
		return ""
	}
	var v string
	switch s {
	case SectionWatering:
		v = p.Care.Watering
	case SectionLight:
		v = p.Care.Light
	case SectionTemperature:
		v = p.Care.Temperature
	case SectionSoil:
		v = p.Care.Soil
	case SectionProblems:
		v = problemsText(p.Problems)
	}
	if knowledge.IsPlaceholder(v) {
		return ""
	}
	return v
}

// Header is the title line of a facet message.
func (s CareSection) Header(plantName string) string {
	switch s {
	case SectionWatering:
		return "💧 *Полив для " + plantName + "*"
	case SectionLight:
		return "☀️ *Освещение для " + plantName + "*"
	case SectionTemperature:
		return "🌡️ *Температура для " + plantName + "*"
	case SectionSoil:
		return "🌱 *Почва для " + plantName + "*"
	default:
		return "🩺 *Проблемы и болезни " + plantName + "*"
	}
}

// PlantSection renders one facet with the given body.
func PlantSection(plantName string, s CareSection, body string) string {
	return s.Header(plantName) + "\n\n" + strings.TrimSpace(body)
}

// Recognition renders a plant identified from a photo.
func Recognition(p *knowledge.Plant, state string) string {
	var b strings.Builder
	b.WriteString("🌿 *Растение найдено!*\n\n")
	b.WriteString("*Название:* " + p.Name + "\n")
	sci := "Научное название не найдено"
	if p.HasScientificName() {
		sci = p.ScientificName
	}
	b.WriteString("*Научное название:* " + sci + "\n\n")
	if !knowledge.IsPlaceholder(state) && state != "Состояние не определено" {
		section(&b, "Состояние растения", CleanMarkdown(state))
	}
	if p.Description != state {
		section(&b, "Описание", CleanMarkdown(p.Description))
	}
	section(&b, "Советы по уходу", CleanMarkdown(p.Care.General))
	section(&b, "Освещение", CleanMarkdown(p.Care.Light))
	section(&b, "Полив", CleanMarkdown(p.Care.Watering))
	section(&b, "Температура", CleanMarkdown(p.Care.Temperature))
	section(&b, "Почва", CleanMarkdown(p.Care.Soil))
	section(&b, "Распространенные проблемы", CleanMarkdown(problemsText(p.Problems)))
	return Truncate(strings.TrimRight(b.String(), "\n"))
}

// NotRecognized is shown when a photo could not be identified.
const NotRecognized = "❌ Я не смог определить растение на этом изображении. Пожалуйста, сделайте более четкое фото при хорошем освещении."

// GenericCareTips is returned for plants nothing is known about.
const GenericCareTips = `- Проверьте влажность почвы: если она сухая — полейте растение, но избегайте переувлажнения.
- Обрежьте все полностью засохшие и гнилые части.
- Пересмотрите условия освещения: возможно, растение нуждается в большем количестве света.
- Проверьте корни на наличие гнили — при необходимости пересадите растение в свежий грунт.
- При необходимости обработайте растение фунгицидом или инсектицидом.
- Дайте растению время на восстановление и следите за динамикой состояния.`

// FallbackCareTips are shown when neither the store nor the model can help.
var FallbackCareTips = []string{
	"Проверяйте влажность почвы перед поливом. Большинство растений не любят переувлажнение.",
	"Обеспечьте подходящее освещение. Большинство комнатных растений предпочитают яркий непрямой свет.",
	"Поддерживайте оптимальную температуру 18-24°C для большинства комнатных растений.",
	"Используйте подходящую почву с хорошим дренажем.",
	"Регулярно осматривайте растение на наличие вредителей и болезней.",
}

// GenericPlantAdvice renders FallbackCareTips for a named plant.
func GenericPlantAdvice(plantName string) string {
	var b strings.Builder
	b.WriteString("🌿 *Растение не определено*\n\n")
	fmt.Fprintf(&b, "Я не смог найти информацию о растении '%s'. Вот общие рекомендации по уходу за растениями:\n\n", plantName)
	for _, tip := range FallbackCareTips {
		b.WriteString("• " + tip + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
