package parse_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/parse"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "bare object", text: `{"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "surrounded by prose", text: "Вот ответ:\n```json\n{\"a\":{\"b\":2}}\n```\nГотово.", want: `{"a":{"b":2}}`, wantOK: true},
		{name: "braces inside strings", text: `{"a":"}{","b":"\"}"}`, want: `{"a":"}{","b":"\"}"}`, wantOK: true},
		{name: "first of two objects", text: `{"a":1} и {"b":2}`, want: `{"a":1}`, wantOK: true},
		{name: "unbalanced then balanced", text: `{ оборвано... {"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "no object", text: "Название: Монстера", wantOK: false},
		{name: "never closed", text: `{"a":1`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parse.ExtractJSONObject(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONStage_FlexibleShapes(t *testing.T) {
	t.Parallel()

	text := `Результат:
{
  "name": "Тестовое растение",
  "scientific_name": "Plantus testus",
  "type": "комнатное",
  "description": "Неприхотливое растение",
  "care_tips": {"watering": "Раз в неделю", "light": "Рассеянный"},
  "temperature": "18-24°C",
  "benefits": ["Очищает воздух", "Декоративное"],
  "common_problems": ["Желтеют листья", {"label": "Вредители", "resolution": "Обработать инсектицидом"}],
  "tips": "Протирать листья\nНе переливать"
}`

	got, err := parse.JSONStage(text)
	require.NoError(t, err)

	want := parse.Parsed{
		Name:           "Тестовое растение",
		ScientificName: "Plantus testus",
		Type:           "комнатное",
		Description:    "Неприхотливое растение",
		Care:           knowledge.Care{Watering: "Раз в неделю", Light: "Рассеянный", Temperature: "18-24°C"},
		Benefits:       "Очищает воздух\nДекоративное",
		Problems: []knowledge.Problem{
			{Label: "Желтеют листья"},
			{Label: "Вредители", Resolution: "Обработать инсектицидом"},
		},
		Tips: []string{"Протирать листья", "Не переливать"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSONStage mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONStage_CareTipsAsString(t *testing.T) {
	t.Parallel()
	got, err := parse.JSONStage(`{"name":"Алоэ","care_tips":"Редкий полив"}`)
	require.NoError(t, err)
	assert.Equal(t, "Редкий полив", got.Care.General)
}

func TestJSONStage_NoObject(t *testing.T) {
	t.Parallel()
	_, err := parse.JSONStage("Просто текст без JSON")
	require.ErrorIs(t, err, parse.ErrNoStructuredData)

	_, err = parse.JSONStage(`{"name": }`)
	require.ErrorIs(t, err, parse.ErrNoStructuredData)
}

func TestLabelStage(t *testing.T) {
	t.Parallel()

	text := "**Название:** Монстера деликатесная\n" +
		"**Научное название**: Monstera deliciosa\n" +
		"Описание: Крупная лиана с резными листьями\n" +
		"- Уход: Умеренный полив, яркий рассеянный свет\n" +
		"Распространенные проблемы: Желтые листья от перелива\n"

	got, err := parse.LabelStage(text)
	require.NoError(t, err)
	assert.Equal(t, "Монстера деликатесная", got.Name)
	assert.Equal(t, "Monstera deliciosa", got.ScientificName)
	assert.Equal(t, "Крупная лиана с резными листьями", got.Description)
	assert.Equal(t, "Умеренный полив, яркий рассеянный свет", got.Care.General)
	require.Len(t, got.Problems, 1)
	assert.Equal(t, "Желтые листья от перелива", got.Problems[0].Label)

	_, err = parse.LabelStage("Научное название: Monstera deliciosa")
	require.ErrorIs(t, err, parse.ErrNoStructuredData)
}

func TestPipeline_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantName  string
		wantStage parse.Stage
		wantConf  knowledge.Confidence
		wantErr   error
	}{
		{
			name:      "json with scientific name",
			text:      `{"name": "Тестовое растение", "scientific_name": "Plantus testus"}`,
			wantName:  "Тестовое растение",
			wantStage: parse.StageJSON,
			wantConf:  knowledge.ConfidenceHigh,
		},
		{
			name:      "json without scientific name",
			text:      `{"name": "Тестовое растение"}`,
			wantName:  "Тестовое растение",
			wantStage: parse.StageJSON,
			wantConf:  knowledge.ConfidenceMedium,
		},
		{
			name:    "json with unknown sentinel",
			text:    `{"name": "Unknown"}`,
			wantErr: parse.ErrNotRecognized,
		},
		{
			name:    "json with russian sentinel",
			text:    `{"name": "Неизвестное растение", "description": "..."}`,
			wantErr: parse.ErrNotRecognized,
		},
		{
			name:      "labels fallback with scientific name",
			text:      "Название: Фикус\nНаучное название: Ficus elastica",
			wantName:  "Фикус",
			wantStage: parse.StageLabels,
			wantConf:  knowledge.ConfidenceMedium,
		},
		{
			name:      "labels fallback without scientific name",
			text:      "Название: Фикус",
			wantName:  "Фикус",
			wantStage: parse.StageLabels,
			wantConf:  knowledge.ConfidenceLow,
		},
		{
			name:    "not visible phrase",
			text:    "Растение на фото не видно. Название: нет",
			wantErr: parse.ErrNotRecognized,
		},
		{
			name:    "not visible and no json",
			text:    "К сожалению, растение не видно на изображении.",
			wantErr: parse.ErrNotRecognized,
		},
		{
			name:    "english rejection",
			text:    "The plant cannot be identified from this image.",
			wantErr: parse.ErrNotRecognized,
		},
		{
			name:    "empty",
			text:    "  ",
			wantErr: parse.ErrNotRecognized,
		},
	}

	p := parse.NewPipeline()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, stage, err := p.Parse(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantStage, stage)
			assert.Equal(t, tt.wantConf, got.Confidence(stage))

			plant := got.Plant(stage)
			assert.Equal(t, knowledge.SourceGenerated, plant.Source)
			assert.Equal(t, tt.wantConf, plant.Confidence)
		})
	}
}
