package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"
	DefaultModel         = "openrouter/optimus-alpha"
	DefaultReferer       = "https://t.me/plexy_bot"
	DefaultTitle         = "PLEXY Plant & Vitamin Bot"

	TaskStoreMaintenance = "store_maintenance"
	TaskSeedSync         = "seed_sync"
)

// DefaultMessages are the built-in Russian transport strings.
var DefaultMessages = MessagesConfig{
	Unauthorized:      "🚫 Эта команда доступна только администратору.",
	GeneralError:      "❌ Произошла ошибка. Пожалуйста, попробуйте позже.",
	AIError:           "❌ Извините, произошла ошибка при обработке вашего вопроса. Пожалуйста, попробуйте переформулировать вопрос или повторите попытку позже.",
	MainMenu:          "Выберите интересующий вас раздел или задайте вопрос:",
	VitaminsMenu:      "🍏 *Витамины и минералы*\n\nВыберите интересующий вас витамин или минерал:",
	PlantsMenu:        "🌱 *Уход за растениями*\n\nВыберите тип бытовых отходов для получения информации:",
	AIMenu:            "🤖 *PLEXY - Ваш консультант*\n\nКак я могу вам помочь сегодня?",
	FAQMenu:           "❓ *Часто задаваемые вопросы*\n\nВыберите интересующий вас раздел:",
	ProblemsMenu:      "🔍 *Проблемы и решения*\n\nВыберите категорию проблем или опишите свою проблему для получения рекомендаций:",
	QuestionPrompt:    "💬 *Задайте вопрос PLEXY*\n\nЗадайте любой вопрос о витаминах, растениях или здоровье, и я постараюсь дать точный и полезный ответ.\n\nНапишите ваш вопрос:",
	VitaminPrompt:     "💊 *Рекомендация витаминов*\n\nОпишите ваш запрос, симптомы или состояние, и искусственный интеллект предложит подходящие витамины и минералы.\n\nНапример: 'Какие витамины нужны при авитаминозе' или 'Что принимать для повышения иммунитета'.\n\nНапишите ваш запрос:",
	PlantImagePrompt:  "📷 *Анализ растения*\n\nОтправьте фотографию растения, и искусственный интеллект:\n- Определит вид растения\n- Оценит его состояние\n- Даст рекомендации по уходу\n- Расскажет о плюсах и минусах его выращивания\n\nОтправьте фотографию:",
	PlantSearchPrompt: "🔍 *Поиск советов*\n\nНапишите название растения или тип бытовых отходов, например: 'монстера' или 'кофейная гуща'.",
	ProblemVitamin:    "🔍 *Проблемы с витаминами*\n\nОпишите вашу проблему, связанную с витаминами или минералами. Например:\n- Побочные эффекты от приема витаминов\n- Симптомы дефицита витаминов\n- Вопросы о дозировке\n\nОпишите вашу проблему:",
	ProblemPlant:      "🔍 *Проблемы с растениями*\n\nОпишите вашу проблему, связанную с комнатными растениями. Например:\n- Желтеют листья\n- Не цветет растение\n- Проблемы с поливом\n\nОпишите вашу проблему:",
	ProblemGeneral:    "🔍 *Анализ проблемы*\n\nОпишите вашу проблему, и AI поможет найти решение:\n\nОпишите вашу проблему:",
	FeedbackPrompt:    "📝 *Обратная связь*\n\nПожалуйста, напишите ваше предложение, замечание или пожелание. Это поможет нам улучшить бота.\n\nЧтобы отменить, отправьте /cancel",
	FeedbackThanks:    "Спасибо за ваш отзыв! Мы обязательно учтем его при улучшении бота.",
	FeedbackCancelled: "Отправка отзыва отменена.",
	Cancelled:         "Операция отменена. Чем еще я могу помочь?",
	NothingToCancel:   "Нечего отменять. Выберите раздел в меню.",
	PhotoProcessing:   "🔍 PLEXY анализирует вашу фотографию растения...",
	PhotoError:        "❌ Произошла ошибка при анализе фотографии. Пожалуйста, попробуйте ещё раз позже.",
	NotFound:          "Информация не найдена.",
	DeleteUsage:       "Использование: /plexy_delete <название>",
	DeleteSuccessFmt:  "🗑 Запись «%s» удалена.",
	DeleteNotFoundFmt: "Запись «%s» не найдена.",
	StatsFmt:          "📊 *Статистика PLEXY*\n\nРастения: %d\nВитамины и минералы: %d\nПользователи: %d\nОтзывы: %d",
	DegradedNotice:    "⚠️ Хранилище недоступно, работаю без сохранения данных.",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.timeout", 15*time.Second)
	v.SetDefault("storage.sqlite.path", "./plexy.db")
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "plexy_bot")
	v.SetDefault("storage.mongo.connect_timeout", 10*time.Second)
	v.SetDefault("storage.file.dir", "./data")

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.base_url", DefaultOpenRouterURL)
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.referer", DefaultReferer)
	v.SetDefault("ai.title", DefaultTitle)
	v.SetDefault("ai.timeout", 75*time.Second)
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.base_delay", 2*time.Second)
	v.SetDefault("ai.max_delay", 16*time.Second)
	v.SetDefault("ai.requests_per_second", 2.0)
	v.SetDefault("ai.burst", 4)
	v.SetDefault("ai.inline_images", false)
	v.SetDefault("ai.max_image_bytes", 10*1024*1024)
	v.SetDefault("ai.vision_temperature", 0.4)
	v.SetDefault("ai.intent_with_ai", false)

	v.SetDefault("conversation.backend", "memory")
	v.SetDefault("conversation.redis.addr", "localhost:6379")
	v.SetDefault("conversation.redis.db", 0)
	v.SetDefault("conversation.session_ttl", 30*time.Minute)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("scheduler.tasks."+TaskStoreMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskStoreMaintenance+".schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks."+TaskSeedSync+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSeedSync+".schedule", "0 30 4 * * *")

	m := DefaultMessages
	for key, val := range map[string]string{
		"unauthorized":         m.Unauthorized,
		"general_error":        m.GeneralError,
		"ai_error":             m.AIError,
		"main_menu":            m.MainMenu,
		"vitamins_menu":        m.VitaminsMenu,
		"plants_menu":          m.PlantsMenu,
		"ai_menu":              m.AIMenu,
		"faq_menu":             m.FAQMenu,
		"problems_menu":        m.ProblemsMenu,
		"question_prompt":      m.QuestionPrompt,
		"vitamin_prompt":       m.VitaminPrompt,
		"plant_image_prompt":   m.PlantImagePrompt,
		"plant_search_prompt":  m.PlantSearchPrompt,
		"problem_vitamin":      m.ProblemVitamin,
		"problem_plant":        m.ProblemPlant,
		"problem_general":      m.ProblemGeneral,
		"feedback_prompt":      m.FeedbackPrompt,
		"feedback_thanks":      m.FeedbackThanks,
		"feedback_cancelled":   m.FeedbackCancelled,
		"cancelled":            m.Cancelled,
		"nothing_to_cancel":    m.NothingToCancel,
		"photo_processing":     m.PhotoProcessing,
		"photo_error":          m.PhotoError,
		"not_found":            m.NotFound,
		"delete_usage":         m.DeleteUsage,
		"delete_success_fmt":   m.DeleteSuccessFmt,
		"delete_not_found_fmt": m.DeleteNotFoundFmt,
		"stats_fmt":            m.StatsFmt,
		"degraded_notice":      m.DegradedNotice,
	} {
		v.SetDefault("messages."+key, val)
	}
}
