// Package config loads and validates the bot configuration.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the root configuration structure.
type Config struct {
	Logger       LoggerConfig       `mapstructure:"log"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Storage      StorageConfig      `mapstructure:"storage"`
	AI           AIConfig           `mapstructure:"ai"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Messages     MessagesConfig     `mapstructure:"messages"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"gte=0"`
	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

type StorageConfig struct {
	Backend string        `mapstructure:"backend" validate:"required,oneof=sqlite mongo file memory"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	File    FileConfig    `mapstructure:"file"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"min=0,max=2m"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type AIConfig struct {
	Provider          string        `mapstructure:"provider"           validate:"required,oneof=openai gemini"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"           validate:"omitempty,url"`
	Model             string        `mapstructure:"model"              validate:"required"`
	VisionModel       string        `mapstructure:"vision_model"`
	Referer           string        `mapstructure:"referer"`
	Title             string        `mapstructure:"title"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"min=10s,max=5m"`
	MaxAttempts       int           `mapstructure:"max_attempts"       validate:"min=1,max=10"`
	BaseDelay         time.Duration `mapstructure:"base_delay"         validate:"min=0,max=1m"`
	MaxDelay          time.Duration `mapstructure:"max_delay"          validate:"gtefield=BaseDelay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst"              validate:"min=1"`
	InlineImages      bool          `mapstructure:"inline_images"`
	MaxImageBytes     int64         `mapstructure:"max_image_bytes"    validate:"min=1024"`
	VisionTemperature float32       `mapstructure:"vision_temperature" validate:"min=0.2,max=0.7"`
	IntentWithAI      bool          `mapstructure:"intent_with_ai"`
}

type ConversationConfig struct {
	Backend    string        `mapstructure:"backend"     validate:"required,oneof=memory redis"`
	Redis      RedisConfig   `mapstructure:"redis"`
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"min=1m"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds the fixed user-facing transport strings. Domain
// replies are rendered by the format package.
type MessagesConfig struct {
	Unauthorized       string `mapstructure:"unauthorized"        validate:"required"`
	GeneralError       string `mapstructure:"general_error"       validate:"required"`
	AIError            string `mapstructure:"ai_error"            validate:"required"`
	MainMenu           string `mapstructure:"main_menu"           validate:"required"`
	VitaminsMenu       string `mapstructure:"vitamins_menu"       validate:"required"`
	PlantsMenu         string `mapstructure:"plants_menu"         validate:"required"`
	AIMenu             string `mapstructure:"ai_menu"             validate:"required"`
	FAQMenu            string `mapstructure:"faq_menu"            validate:"required"`
	ProblemsMenu       string `mapstructure:"problems_menu"       validate:"required"`
	QuestionPrompt     string `mapstructure:"question_prompt"     validate:"required"`
	VitaminPrompt      string `mapstructure:"vitamin_prompt"      validate:"required"`
	PlantImagePrompt   string `mapstructure:"plant_image_prompt"  validate:"required"`
	PlantSearchPrompt  string `mapstructure:"plant_search_prompt" validate:"required"`
	ProblemVitamin     string `mapstructure:"problem_vitamin"     validate:"required"`
	ProblemPlant       string `mapstructure:"problem_plant"       validate:"required"`
	ProblemGeneral     string `mapstructure:"problem_general"     validate:"required"`
	FeedbackPrompt     string `mapstructure:"feedback_prompt"     validate:"required"`
	FeedbackThanks     string `mapstructure:"feedback_thanks"     validate:"required"`
	FeedbackCancelled  string `mapstructure:"feedback_cancelled"  validate:"required"`
	Cancelled          string `mapstructure:"cancelled"           validate:"required"`
	NothingToCancel    string `mapstructure:"nothing_to_cancel"   validate:"required"`
	PhotoProcessing    string `mapstructure:"photo_processing"    validate:"required"`
	PhotoError         string `mapstructure:"photo_error"         validate:"required"`
	NotFound           string `mapstructure:"not_found"           validate:"required"`
	DeleteUsage        string `mapstructure:"delete_usage"        validate:"required"`
	DeleteSuccessFmt   string `mapstructure:"delete_success_fmt"  validate:"required"`
	DeleteNotFoundFmt  string `mapstructure:"delete_not_found_fmt" validate:"required"`
	StatsFmt           string `mapstructure:"stats_fmt"           validate:"required"`
	DegradedNotice     string `mapstructure:"degraded_notice"     validate:"required"`
}
