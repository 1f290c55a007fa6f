package handlers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/bot/handlers"
	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/knowledge"
)

const recognizedJSON = `{
  "name": "Тестовое растение",
  "scientific_name": "Testus plantus",
  "type": "комнатное",
  "description": "Растение для проверки.",
  "care_tips": {"watering": "Раз в неделю", "light": "Полутень"},
  "common_problems": ["Желтые листья"]
}`

func TestStartHandler_RegistersUserAndShowsMenu(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	handlers.NewStartHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, "/start"))

	u, err := e.store.Journal.User(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "anya", u.Username)
	assert.Equal(t, knowledge.SectionStart, u.LastSection)

	texts := e.tg.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Здравствуйте, Аня")
	assert.Equal(t, config.DefaultMessages.MainMenu, texts[1])
	assert.Contains(t, e.tg.sent("sendMessage")[1].Fields["reply_markup"], "vitamins_menu")
}

func TestCallback_VitaminButton(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	handlers.NewCallbackHandler(e.deps)(context.Background(), e.bot, callbackUpdate(testUserID, "vitamin_c"))

	assert.Equal(t, 1, e.tg.count("answerCallbackQuery"))
	edits := e.tg.sent("editMessageText")
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].Fields["text"], "Витамин C")
	assert.Equal(t, "Markdown", edits[0].Fields["parse_mode"])
	assert.Contains(t, edits[0].Fields["reply_markup"], "vitamins_menu")
	assert.Zero(t, e.gen.calls)
}

func TestCallback_Menus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data string
		want string
	}{
		{data: "main_menu", want: config.DefaultMessages.MainMenu},
		{data: "vitamins_menu", want: config.DefaultMessages.VitaminsMenu},
		{data: "plants_menu", want: config.DefaultMessages.PlantsMenu},
		{data: "faq_menu", want: config.DefaultMessages.FAQMenu},
		{data: "problems_menu", want: config.DefaultMessages.ProblemsMenu},
		{data: "ai_consultant_menu", want: config.DefaultMessages.AIMenu},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)
			handlers.NewCallbackHandler(e.deps)(context.Background(), e.bot, callbackUpdate(testUserID, tt.data))
			assert.Equal(t, tt.want, e.tg.lastText(t))
		})
	}
}

func TestCallback_FAQ(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	handlers.NewCallbackHandler(e.deps)(context.Background(), e.bot, callbackUpdate(testUserID, "faq_about"))

	assert.Contains(t, e.tg.lastText(t), "PLEXY")
	assert.Contains(t, e.tg.sent("editMessageText")[0].Fields["reply_markup"], "faq_menu")
}

func TestPromptThenAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantState conversation.State
		answer    string
		reply     string
		contains  string
	}{
		{
			name:      "general question",
			data:      "ai_general_question",
			wantState: conversation.AwaitingGeneralQuestion,
			answer:    "Хлорофилл - это пигмент растений.",
			reply:     "Что такое хлорофилл?",
			contains:  "PLEXY: Хлорофилл",
		},
		{
			name:      "plant problem",
			data:      "plant_problems",
			wantState: conversation.AwaitingProblemDescription,
			answer:    "Скорее всего, перелив.",
			reply:     "У фикуса опадают листья",
			contains:  "перелив",
		},
		{
			name:      "plant search",
			data:      "plants_search",
			wantState: conversation.AwaitingPlantName,
			reply:     "Монстера",
			contains:  "Монстера",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)
			e.gen.answer = tt.answer
			ctx := context.Background()

			handlers.NewCallbackHandler(e.deps)(ctx, e.bot, callbackUpdate(testUserID, tt.data))
			assert.Equal(t, tt.wantState, e.state(t, testUserID).State)
			assert.Contains(t, e.tg.sent("editMessageText")[0].Fields["reply_markup"], "cancel_operation")

			handlers.NewMessageHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, tt.reply))
			assert.Contains(t, e.tg.lastText(t), tt.contains)
			assert.Equal(t, conversation.Idle, e.state(t, testUserID).State)
		})
	}
}

func TestPlantSearch_RemembersPlant(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	handlers.NewCallbackHandler(e.deps)(ctx, e.bot, callbackUpdate(testUserID, "plants_search"))
	handlers.NewMessageHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, "Монстера"))

	assert.Equal(t, "Монстера", e.state(t, testUserID).LastPlant)
	last := e.tg.sent("sendMessage")
	assert.Contains(t, last[len(last)-1].Fields["reply_markup"], "plant_water_Монстера")

	// a button without a name refers to the remembered plant
	handlers.NewCallbackHandler(e.deps)(ctx, e.bot, callbackUpdate(testUserID, "plant_water_"))
	assert.Contains(t, e.tg.lastText(t), "Монстера")
	assert.Zero(t, e.gen.calls)
}

func TestFeedbackFlow(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	handlers.NewMenuHandler(e.deps, "feedback")(ctx, e.bot, textUpdate(testUserID, "/feedback"))
	assert.Equal(t, conversation.AwaitingFeedback, e.state(t, testUserID).State)

	handlers.NewMessageHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, "Добавьте больше растений"))
	assert.Equal(t, config.DefaultMessages.FeedbackThanks, e.tg.lastText(t))
	assert.Equal(t, conversation.Idle, e.state(t, testUserID).State)

	st, err := e.store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Feedback)
	assert.Zero(t, e.gen.calls)
}

func TestCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nothing pending", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		handlers.NewCancelHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, "/cancel"))
		assert.Equal(t, config.DefaultMessages.NothingToCancel, e.tg.lastText(t))
	})

	t.Run("pending question", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		handlers.NewMenuHandler(e.deps, "ai_general_question")(ctx, e.bot, textUpdate(testUserID, "/ai"))
		handlers.NewCallbackHandler(e.deps)(ctx, e.bot, callbackUpdate(testUserID, "cancel_operation"))
		assert.Equal(t, config.DefaultMessages.Cancelled, e.tg.lastText(t))
		assert.Equal(t, conversation.Idle, e.state(t, testUserID).State)
	})

	t.Run("pending feedback", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		handlers.NewMenuHandler(e.deps, "feedback")(ctx, e.bot, textUpdate(testUserID, "/feedback"))
		handlers.NewCancelHandler(e.deps)(ctx, e.bot, textUpdate(testUserID, "/cancel"))
		assert.Equal(t, config.DefaultMessages.FeedbackCancelled, e.tg.lastText(t))
	})
}

func TestPhoto_Recognized(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.gen.image = recognizedJSON
	ctx := context.Background()

	handlers.NewCallbackHandler(e.deps)(ctx, e.bot, callbackUpdate(testUserID, "ai_plant_analysis"))
	handlers.NewMessageHandler(e.deps)(ctx, e.bot, photoUpdate(testUserID))

	files := e.tg.sent("getFile")
	require.Len(t, files, 1)
	assert.Equal(t, "big", files[0].Fields["file_id"])
	assert.Equal(t, 1, e.tg.count("deleteMessage"))

	require.Len(t, e.gen.refs, 1)
	assert.True(t, e.gen.refs[0].Private, "file URL carries the bot token")
	assert.Contains(t, e.gen.refs[0].URL, "photos/file_1.jpg")

	assert.Contains(t, e.tg.lastText(t), "Тестовое растение")
	sends := e.tg.sent("sendMessage")
	assert.Contains(t, sends[len(sends)-1].Fields["reply_markup"], "plant_info_Тестовое растение")

	sess := e.state(t, testUserID)
	assert.Equal(t, conversation.Idle, sess.State)
	assert.Equal(t, "Тестовое растение", sess.LastPlant)

	p, err := e.store.Plants.GetByName(ctx, "Тестовое растение")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ImageCount)
}

func TestPhoto_NotRecognized(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.gen.image = "К сожалению, растение не видно на этом фото."

	handlers.NewMessageHandler(e.deps)(context.Background(), e.bot, photoUpdate(testUserID))

	assert.Contains(t, e.tg.lastText(t), "не смог определить растение")
	assert.Empty(t, e.state(t, testUserID).LastPlant)
}

func TestSend_MarkdownFallback(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.tg.rejectMarkdown()

	handlers.NewHelpHandler(e.deps)(context.Background(), e.bot, textUpdate(testUserID, "/help"))

	sends := e.tg.sent("sendMessage")
	require.Len(t, sends, 2)
	assert.Equal(t, "Markdown", sends[0].Fields["parse_mode"])
	assert.Empty(t, sends[1].Fields["parse_mode"])
	assert.NotContains(t, sends[1].Fields["text"], "*")
}

func TestMessage_MenuLabels(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	handlers.NewMessageHandler(e.deps)(context.Background(), e.bot, textUpdate(testUserID, "🍏 Витамины и минералы"))

	assert.Equal(t, config.DefaultMessages.VitaminsMenu, e.tg.lastText(t))
	assert.Zero(t, e.gen.calls)
}

func TestMessage_IdleFreeText(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	handlers.NewMessageHandler(e.deps)(context.Background(), e.bot, textUpdate(testUserID, "что такое витамин D"))

	assert.Contains(t, e.tg.lastText(t), "Витамин D")
	u, err := e.store.Journal.User(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, u.InteractionCount)
}

func TestAdminCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		from int64
		text string
		want string
	}{
		{name: "stats refused", from: testUserID, text: "/plexy_stats", want: config.DefaultMessages.Unauthorized},
		{name: "delete refused", from: testUserID, text: "/plexy_delete Монстера", want: config.DefaultMessages.Unauthorized},
		{name: "delete usage", from: testAdmin, text: "/plexy_delete", want: config.DefaultMessages.DeleteUsage},
		{name: "delete plant", from: testAdmin, text: "/plexy_delete Монстера", want: "🗑 Запись «Монстера» удалена."},
		{name: "delete vitamin", from: testAdmin, text: "/plexy_delete витамин c", want: "🗑 Запись «витамин c» удалена."},
		{name: "delete missing", from: testAdmin, text: "/plexy_delete Баобаб", want: "Запись «Баобаб» не найдена."},
		{name: "stats", from: testAdmin, text: "/plexy_stats", want: "Витамины и минералы: 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)
			cmds := handlers.RegisterAllCommands(e.deps)
			name := strings.Fields(tt.text)[0]
			reg, ok := cmds[name]
			require.True(t, ok, name)

			h := reg.Handler
			for i := len(reg.Middleware) - 1; i >= 0; i-- {
				h = reg.Middleware[i](h)
			}
			h(ctx, e.bot, textUpdate(tt.from, tt.text))
			assert.Contains(t, e.tg.lastText(t), tt.want)
		})
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	cmds := handlers.RegisterAllCommands(e.deps)
	for _, name := range []string{"/start", "/help", "/vitamins", "/plants", "/ai", "/problems", "/faq", "/feedback", "/cancel", "/plexy_delete", "/plexy_stats", "callback"} {
		reg, ok := cmds[name]
		require.True(t, ok, name)
		assert.NotNil(t, reg.Handler, name)
	}
	assert.Len(t, cmds["/plexy_stats"].Middleware, 1)
	assert.Empty(t, cmds["/start"].Middleware)
}
