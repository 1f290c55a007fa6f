package generative

import (
	"fmt"

	"github.com/edgard/plexybot/internal/knowledge"
)

// Token budgets per prompt kind.
const (
	RecognitionMaxTokens    = 1000
	RecommendationMaxTokens = 1800
	ProblemMaxTokens        = 1800
	QuestionMaxTokens       = 800
	IntentMaxTokens         = 100
	CareMaxTokens           = 1024
	CareTipsMaxTokens       = 800
	SectionMaxTokens        = 500
	DefaultTemperature      = 0.7
)

// RecognitionPrompt asks for a plant identification as a JSON object.
const RecognitionPrompt = "Analyze the image and identify the plant shown. " +
	"If the plant is not clearly visible or cannot be identified, say so. " +
	"If the plant can be identified, provide the following information as a JSON object:\n\n" +
	"{\n" +
	"  \"name\": \"[plant name in Russian]\",\n" +
	"  \"scientific_name\": \"[Latin name]\",\n" +
	"  \"type\": \"[plant type: indoor, outdoor, etc.]\",\n" +
	"  \"description\": \"[short description of the plant]\",\n" +
	"  \"care_tips\": {\n" +
	"    \"watering\": \"[watering instructions]\",\n" +
	"    \"light\": \"[light requirements]\",\n" +
	"    \"temperature\": \"[temperature requirements]\",\n" +
	"    \"soil\": \"[soil requirements]\"\n" +
	"  },\n" +
	"  \"benefits\": \"[health or environmental benefits]\",\n" +
	"  \"common_problems\": [\"[problem 1]\", \"[problem 2]\"]\n" +
	"}\n\n" +
	"Ensure the response is ONLY the JSON object, nothing else."

// VitaminRecommendationPrompt asks for vitamin advice for a free-form request.
func VitaminRecommendationPrompt(query string) string {
	return fmt.Sprintf(`Пользователь спрашивает о витаминах: "%s"

Дай обоснованные рекомендации по витаминам или минералам, основываясь на запросе.

Включи следующую информацию:
1. Какие витамины и минералы рекомендуются в данной ситуации
2. Рекомендуемые дозировки
3. Натуральные источники этих витаминов в продуктах питания
4. Возможные противопоказания или предостережения
5. Типичные проблемы, связанные с приемом данных витаминов и их решения

Если запрос касается какого-то состояния здоровья, обязательно укажи, что необходима консультация врача.

Формат ответа:
**Рекомендуемые витамины и минералы**:
[список с кратким описанием]

**Дозировка**:
[информация о дозировке]

**Натуральные источники**:
[список продуктов]

**Предостережения**:
[важные предостережения]

**Типичные проблемы и решения**:
[проблема 1] → [решение]
[проблема 2] → [решение]

**Важно**: [медицинский дисклеймер при необходимости]`, query)
}

// ProblemPrompt asks for a diagnosis of a described problem.
func ProblemPrompt(description string, kind knowledge.ProblemKind) string {
	switch kind {
	case knowledge.ProblemVitamin:
		return fmt.Sprintf(`Пользователь описывает следующую проблему, связанную с витаминами или минералами:
"%s"

Пожалуйста:
1. Определи, о какой проблеме идет речь
2. Предложи возможные причины этой проблемы
3. Порекомендуй конкретные решения и действия
4. Укажи, какие витамины или минералы могут помочь в данной ситуации

Формат ответа:
**Проблема**: [краткое описание идентифицированной проблемы]

**Возможные причины**:
- [причина 1]
- [причина 2]

**Рекомендуемые решения**:
1. [решение 1]
2. [решение 2]

**Полезные витамины/минералы**:
- [витамин/минерал 1]: [краткое пояснение]
- [витамин/минерал 2]: [краткое пояснение]

**Важно**: [медицинский дисклеймер при необходимости]`, description)
	case knowledge.ProblemPlant:
		return fmt.Sprintf(`Пользователь описывает следующую проблему, связанную с комнатными растениями:
"%s"

Пожалуйста:
1. Определи, о какой проблеме идет речь
2. Предложи возможные причины этой проблемы
3. Порекомендуй решения с использованием бытовых отходов (если применимо)
4. Дай дополнительные рекомендации по уходу

Формат ответа:
**Проблема**: [краткое описание идентифицированной проблемы]

**Возможные причины**:
- [причина 1]
- [причина 2]

**Решения с использованием бытовых отходов**:
1. [решение 1 с указанием типа отходов]
2. [решение 2 с указанием типа отходов]

**Дополнительные рекомендации**:
- [рекомендация 1]
- [рекомендация 2]`, description)
	default:
		return fmt.Sprintf(`Пользователь задал следующий вопрос или описал проблему:
"%s"

Пожалуйста:
1. Определи, о чем идет речь (витамины, растения или что-то другое)
2. Дай развернутый и информативный ответ
3. Предложи конкретные рекомендации или решения

Формат ответа:
**Ответ**: [основной ответ на вопрос]

**Рекомендации**:
- [рекомендация 1]
- [рекомендация 2]

**Дополнительная информация**: [любая уместная дополнительная информация]`, description)
	}
}

// QuestionPrompt asks for a short plain-text answer signed by PLEXY.
func QuestionPrompt(question string) string {
	return fmt.Sprintf(`Ответь на вопрос пользователя кратко и по существу:
"%s"

Правила:
1. Давай только точную и проверенную информацию
2. Ответ должен быть кратким (не более 3-5 предложений)
3. Используй простой язык без сложных терминов
4. Если это вопрос о здоровье, добавь напоминание о консультации со специалистом
5. НЕ используй разметку типа **, ## и подобные символы - используй только обычный текст

Пример формата ответа:
PLEXY: Витамин C помогает укрепить иммунитет. Его много в цитрусовых, киви и болгарском перце. Суточная норма - 75-90 мг.`, question)
}

// IntentPrompt asks for a single-word request category.
func IntentPrompt(query string) string {
	return "Определи тип запроса пользователя. Ответь только одним словом из следующих категорий: \n" +
		"vitamin_info - если пользователь спрашивает информацию о витаминах или добавках\n" +
		"vitamin_problem - если пользователь описывает проблему или симптом, связанный с дефицитом витаминов\n" +
		"plant_info - если пользователь спрашивает информацию о растении\n" +
		"plant_problem - если пользователь описывает проблему с растением\n" +
		"general_question - для любых других вопросов\n\n" +
		"Запрос пользователя: " + query
}

// PlantCarePrompt asks for structured care instructions as JSON.
func PlantCarePrompt(plantName string) string {
	return fmt.Sprintf(`Предоставь подробную информацию по уходу за растением "%[1]s".
Сформируй ответ в виде JSON со следующими ключами:
{
  "name": "%[1]s",
  "scientific_name": "научное название на латыни",
  "watering": "подробно о поливе",
  "light": "требования к освещению",
  "temperature": "оптимальная температура",
  "soil": "требования к почве",
  "humidity": "требования к влажности",
  "fertilizing": "рекомендации по удобрению",
  "common_problems": ["проблема 1", "проблема 2"],
  "tips": ["совет 1", "совет 2", "совет 3"]
}
ВАЖНО: Ответь только в формате JSON, без дополнительного текста.`, plantName)
}

// CareTipsPrompt asks for a short list of care tips.
func CareTipsPrompt(plantName string) string {
	return "Дай краткие рекомендации по уходу за растением " + plantName +
		". Включи информацию о поливе, освещении, температуре и почве. Ответ должен быть не более 8-10 пунктов."
}

// PlantInfoPrompt asks for a general description of a plant.
func PlantInfoPrompt(plantName string) string {
	return "Дай информацию о растении " + plantName + ". Включи научное название, описание, особенности."
}
