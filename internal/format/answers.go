package format

import (
	"fmt"
	"strings"

	"github.com/edgard/plexybot/internal/knowledge"
)

// ProblemAnalysis renders a diagnosis. Structured answers (starting with
// bold) get a header for the problem kind; plain answers pass through.
func ProblemAnalysis(analysis string, kind knowledge.ProblemKind) string {
	if !strings.HasPrefix(analysis, "**") {
		return CleanMarkdown(analysis)
	}
	var header string
	switch kind {
	case knowledge.ProblemVitamin:
		header = "🔍 *Анализ проблемы с витаминами*\n\n"
	case knowledge.ProblemPlant:
		header = "🔍 *Анализ проблемы с растением*\n\n"
	default:
		header = "🔍 *Анализ проблемы*\n\n"
	}
	return header + CleanMarkdown(analysis)
}

const plexyPrefix = "PLEXY:"

// GeneralAnswer renders a free-form answer as plain text signed by PLEXY.
func GeneralAnswer(text string) string {
	text = StripMarkdown(text)
	if !strings.HasPrefix(text, plexyPrefix) {
		text = plexyPrefix + " " + text
	}
	return text
}

// PlantInfoAnswer wraps a generated description of a plant.
func PlantInfoAnswer(text string) string {
	return "🌿 *Информация о растении*\n\n" + CleanMarkdown(text)
}

// SearchList renders several matches as a numbered list of at most five.
func SearchList(title string, names []string, footer string) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for i, name := range names {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	if footer != "" {
		b.WriteString("\n" + footer)
	}
	return strings.TrimRight(b.String(), "\n")
}

type faqEntry struct {
	title string
	text  string
}

var faqs = map[string]faqEntry{
	"about": {
		title: "О боте",
		text: "Этот бот создан для предоставления информации о витаминах, минералах и правильном использовании " +
			"бытовых отходов для ухода за комнатными растениями.\n\n" +
			"Функции бота:\n" +
			"• Информация о витаминах и минералах\n" +
			"• Советы по уходу за растениями\n" +
			"• AI консультации по индивидуальным вопросам\n" +
			"• Анализ фотографий растений\n" +
			"• Решение проблем с витаминами и растениями\n\n" +
			"Бот постоянно обновляется новой информацией и возможностями.",
	},
	"how_to_search": {
		title: "Как искать информацию",
		text: "Существует несколько способов найти нужную информацию:\n\n" +
			"1. Выберите соответствующий раздел в меню (Витамины, Растения и т.д.)\n\n" +
			"2. Напишите ваш вопрос в чат, например:\n" +
			"   • 'Витамин D'\n" +
			"   • 'Как использовать яичную скорлупу для растений'\n\n" +
			"3. Используйте AI Консультанта для сложных вопросов\n\n" +
			"4. В разделе 'Проблемы и решения' опишите свою конкретную проблему\n\n" +
			"Помните, что можно всегда вернуться в главное меню, нажав соответствующую кнопку.",
	},
	"sources": {
		title: "Источники информации",
		text: "Информация в этом боте основана на авторитетных научных и образовательных источниках:\n\n" +
			"• Медицинские справочники и базы данных о витаминах и минералах\n\n" +
			"• Научные публикации по агрономии и уходу за растениями\n\n" +
			"• Рекомендации профессиональных садоводов и биологов\n\n" +
			"• AI алгоритмы, обученные на обширных научных данных\n\n" +
			"Вся информация регулярно обновляется для соответствия актуальным исследованиям.",
	},
	"ai_features": {
		title: "Об AI возможностях",
		text: "Бот использует современные AI технологии для предоставления персонализированных ответов:\n\n" +
			"1. *Общие вопросы* - задавайте вопросы на любые темы, связанные с витаминами и растениями\n\n" +
			"2. *Рекомендация витаминов* - получите персональные рекомендации по приему витаминов\n\n" +
			"3. *Анализ растения* - отправьте фото вашего растения для идентификации и советов по уходу\n\n" +
			"4. *Решение проблем* - опишите проблему, и AI поможет найти решение\n\n" +
			"5. *Актуальная информация* - запросите последние научные данные по интересующей теме",
	},
	"problem_solving": {
		title: "О решении проблем",
		text: "Бот поможет решить типичные проблемы с витаминами и растениями:\n\n" +
			"1. Выберите раздел *Проблемы и решения* в главном меню\n\n" +
			"2. Выберите категорию проблемы или опишите ее своими словами\n\n" +
			"3. Бот проанализирует проблему, предложит причины и решения\n\n" +
			"Для более точных результатов старайтесь максимально подробно описать проблему.",
	},
}

// FAQ renders the FAQ entry with the given id.
func FAQ(id string) (string, bool) {
	f, ok := faqs[id]
	if !ok {
		return "", false
	}
	return "*" + f.title + "*\n\n" + f.text, true
}

// Welcome is the /start greeting.
func Welcome(firstName string) string {
	return "👋 Здравствуйте, " + EscapeMarkdown(firstName) + "!\n\n" +
		"Я *PLEXY* - информационный бот, созданный *SAMGA\\_NIS*.\n\n" +
		"Я могу:\n" +
		"🌿 Определять растения по фото\n" +
		"💊 Предоставлять информацию о витаминах и микроэлементах\n" +
		"❓ Отвечать на ваши вопросы с помощью ИИ\n\n" +
		"Выберите интересующую вас категорию или используйте команду /help для получения списка всех команд."
}

// Help lists commands and features.
func Help() string {
	return "*PLEXY* - Ваш информационный бот от *SAMGA\\_NIS*\n\n" +
		"*Основные команды:*\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать это сообщение\n" +
		"/plants - Информация о растениях\n" +
		"/vitamins - Информация о витаминах\n" +
		"/ai - ИИ-консультант\n" +
		"/problems - Проблемы и решения\n" +
		"/faq - Часто задаваемые вопросы\n" +
		"/feedback - Оставить отзыв\n" +
		"/cancel - Отменить текущее действие\n\n" +
		"*Функции:*\n" +
		"🌿 *Распознавание растений:* отправьте фото любого растения, и я определю его вид и предоставлю информацию о нем\n" +
		"💊 *Информация о витаминах:* получите подробную информацию о витаминах, микроэлементах и их пользе\n" +
		"❓ *ИИ-консультант:* задайте мне любой вопрос, и я постараюсь на него ответить\n\n" +
		"Чтобы вернуться в главное меню из любого раздела, нажмите соответствующую кнопку в меню."
}
