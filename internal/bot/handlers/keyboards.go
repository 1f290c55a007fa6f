package handlers

import (
	"github.com/go-telegram/bot/models"
)

// Callback data sent by the inline keyboards.
const (
	cbMainMenu          = "main_menu"
	cbVitaminsMenu      = "vitamins_menu"
	cbPlantsMenu        = "plants_menu"
	cbAIMenu            = "ai_consultant_menu"
	cbProblemsMenu      = "problems_menu"
	cbFAQMenu           = "faq_menu"
	cbFeedback          = "feedback"
	cbVitaminsAll       = "vitamins_all"
	cbPlantsAll         = "plants_all"
	cbPlantsSearch      = "plants_search"
	cbNewPlantCare      = "new_plant_care"
	cbGeneralQuestion   = "ai_general_question"
	cbVitaminRecommend  = "ai_vitamin_recommend"
	cbPlantAnalysis     = "ai_plant_analysis"
	cbVitaminProblems   = "vitamin_problems"
	cbPlantProblems     = "plant_problems"
	cbCancel            = "cancel_operation"
	cbProblemTypePrefix = "problem_type_"
	cbFAQPrefix         = "faq_"
	cbPlantPrefix       = "plant_"
)

// maxCallbackData is Telegram's limit on callback_data, in bytes.
const maxCallbackData = 64

// vitaminButtons maps vitamin and mineral callbacks to catalog names.
var vitaminButtons = map[string]string{
	"vitamin_a":         "Витамин A",
	"vitamin_c":         "Витамин C",
	"vitamin_d":         "Витамин D",
	"vitamin_e":         "Витамин E",
	"mineral_calcium":   "Кальций",
	"mineral_magnesium": "Магний",
}

// wasteButtons maps waste callbacks to catalog names.
var wasteButtons = map[string]string{
	"waste_eggshell": "Яичная скорлупа",
	"waste_banana":   "Банановая кожура",
	"waste_coffee":   "Кофейная гуща",
	"waste_tea":      "Чайная заварка",
}

// Reply keyboard labels that open the same menus as the inline buttons.
const (
	labelVitamins = "🍏 Витамины и минералы"
	labelPlants   = "🌱 Уход за растениями"
	labelAI       = "🤖 AI Консультант"
	labelProblems = "🔍 Проблемы и решения"
	labelFAQ      = "❓ FAQ"
	labelFeedback = "📝 Обратная связь"
	labelMainMenu = "🔙 Главное меню"
)

var menuLabels = map[string]string{
	labelVitamins: cbVitaminsMenu,
	labelPlants:   cbPlantsMenu,
	labelAI:       cbAIMenu,
	labelProblems: cbProblemsMenu,
	labelFAQ:      cbFAQMenu,
	labelFeedback: cbFeedback,
}

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func inline(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func row(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

func backToMain() []models.InlineKeyboardButton {
	return row(button(labelMainMenu, cbMainMenu))
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button(labelVitamins, cbVitaminsMenu)),
		row(button(labelPlants, cbPlantsMenu)),
		row(button(labelAI, cbAIMenu)),
		row(button(labelProblems, cbProblemsMenu)),
		row(button(labelFAQ, cbFAQMenu)),
		row(button(labelFeedback, cbFeedback)),
	)
}

// menuReplyKeyboard is the persistent keyboard shown after /start.
func menuReplyKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: labelVitamins}, {Text: labelPlants}},
			{{Text: labelAI}, {Text: labelProblems}},
			{{Text: labelFAQ}, {Text: labelFeedback}},
		},
		ResizeKeyboard: true,
	}
}

func vitaminsKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button("Все витамины и минералы", cbVitaminsAll)),
		row(button("Витамин A", "vitamin_a"), button("Витамин C", "vitamin_c")),
		row(button("Витамин D", "vitamin_d"), button("Витамин E", "vitamin_e")),
		row(button("Кальций", "mineral_calcium"), button("Магний", "mineral_magnesium")),
		backToMain(),
	)
}

func plantsKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button("Все советы по уходу", cbPlantsAll)),
		row(button("Яичная скорлупа", "waste_eggshell"), button("Банановая кожура", "waste_banana")),
		row(button("Кофейная гуща", "waste_coffee"), button("Чайная заварка", "waste_tea")),
		row(button("🔍 Поиск советов", cbPlantsSearch)),
		row(button("📷 Анализ растения", cbPlantAnalysis)),
		backToMain(),
	)
}

// plantCallback builds "plant_<action>_<name>". When that would not fit in
// callback_data the name is left off and the session's last plant is used.
func plantCallback(action, name string) string {
	data := cbPlantPrefix + action + "_" + name
	if len(data) > maxCallbackData {
		return cbPlantPrefix + action + "_"
	}
	return data
}

func plantActionsKeyboard(name string) *models.InlineKeyboardMarkup {
	return inline(
		row(button("🔍 Подробнее о растении", plantCallback("info", name))),
		row(button("💧 Полив", plantCallback("water", name)), button("☀️ Освещение", plantCallback("light", name))),
		row(button("🌡️ Температура", plantCallback("temp", name)), button("🌱 Почва", plantCallback("soil", name))),
		row(button("🩺 Проблемы и болезни", plantCallback("problems", name))),
		row(button("🔍 Другое растение", cbNewPlantCare)),
		backToMain(),
	)
}

func faqKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button("О боте", "faq_about")),
		row(button("Как искать информацию", "faq_how_to_search")),
		row(button("Источники информации", "faq_sources")),
		row(button("О AI возможностях", "faq_ai_features")),
		row(button("О решении проблем", "faq_problem_solving")),
		backToMain(),
	)
}

func aiKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button("💬 Задать вопрос", cbGeneralQuestion)),
		row(button("💊 Витамины", cbVitaminRecommend)),
		row(button("📷 Анализ растения", cbPlantAnalysis)),
		row(button("🌿 Меню растений", cbPlantsMenu)),
		backToMain(),
	)
}

func problemsKeyboard() *models.InlineKeyboardMarkup {
	return inline(
		row(button("Проблемы с витаминами", cbVitaminProblems)),
		row(button("Проблемы с растениями", cbPlantProblems)),
		row(button("Другой вопрос", cbProblemTypePrefix+"general")),
		backToMain(),
	)
}

func cancelKeyboard() *models.InlineKeyboardMarkup {
	return inline(row(button("❌ Отмена", cbCancel)))
}

func backKeyboard(data string) *models.InlineKeyboardMarkup {
	return inline(row(button("🔙 Назад", data)))
}
