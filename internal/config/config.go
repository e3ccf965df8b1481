package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Questions     QuestionsConfig
	LLM           LLMConfig
	STT           STTConfig
	Storage       StorageConfig
	EvaluationLog EvaluationLogConfig
	Database      DatabaseConfig
	Mongo         MongoConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

type QuestionsConfig struct {
	Path string
}

type LLMConfig struct {
	Provider     string // "ollama" or "gemini"
	URL          string // OpenAI-compatible endpoint, e.g. "http://localhost:11434"
	Model        string
	Timeout      time.Duration
	GeminiAPIKey string
}

type STTConfig struct {
	Provider     string // "whisper", "gemini" or "none"
	WhisperURL   string
	WhisperModel string
	Concurrency  int
	Timeout      time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type EvaluationLogConfig struct {
	Backend string // "", "postgres" or "mongo"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

const (
	ProviderOllama  = "ollama"
	ProviderGemini  = "gemini"
	ProviderWhisper = "whisper"
	ProviderNone    = "none"

	BackendPostgres = "postgres"
	BackendMongo    = "mongo"

	DefaultGeminiModel = "gemini-2.5-flash"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost,http://localhost:8501"),
		},
		Questions: QuestionsConfig{
			Path: getEnv("QUESTIONS_PATH", "questions.json"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOllama)),
			URL:          strings.TrimRight(getEnv("LLM_URL", "http://localhost:11434"), "/"),
			Model:        getEnv("LLM_MODEL", ""),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", "120s"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		},
		STT: STTConfig{
			Provider:     strings.ToLower(getEnv("STT_PROVIDER", ProviderWhisper)),
			WhisperURL:   strings.TrimRight(getEnv("WHISPER_URL", "http://localhost:9000"), "/"),
			WhisperModel: getEnv("WHISPER_MODEL", "base"),
			Concurrency:  getEnvAsInt("STT_CONCURRENCY", 2),
			Timeout:      getEnvAsDuration("STT_TIMEOUT", "5m"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", filepath.Join(os.TempDir(), "smart-interviewer")),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 26214400),
		},
		EvaluationLog: EvaluationLogConfig{
			Backend: strings.ToLower(getEnv("EVAL_LOG_BACKEND", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "smart_interviewer"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "smart_interviewer"),
			Collection: getEnv("MONGO_COLLECTION", "evaluation_logs"),
		},
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "phi3"
		if cfg.LLM.Provider == ProviderGemini {
			cfg.LLM.Model = DefaultGeminiModel
		}
	}
	if cfg.STT.Concurrency < 1 {
		cfg.STT.Concurrency = 1
	}

	return cfg
}

// Validate reports settings that cannot work together. It does not check
// whether remote services are reachable.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOllama:
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", ProviderGemini)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	switch c.STT.Provider {
	case ProviderWhisper, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STT.Provider)
	}

	switch c.EvaluationLog.Backend {
	case "", BackendPostgres, BackendMongo:
	default:
		return fmt.Errorf("unknown EVAL_LOG_BACKEND %q", c.EvaluationLog.Backend)
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
