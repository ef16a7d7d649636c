package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Dialogue DialogueConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	InboundTopic       string
}

type DatabaseConfig struct {
	Connection string // optional; enables the pgvector index and DB catalog
}

type APIKeys struct {
	Telegram string
	OpenAI   string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	OllamaBaseURL     string
	OpenAIBaseURL     string
	AssistantID       string
}

type DialogueConfig struct {
	CorpusFile          string
	IndexFile           string
	IndexBackend        string // "file" or "pgvector"
	CatalogSource       string // URL, file path, or "db"
	SimilarityThreshold float64
	DropsPerUnit        float64
	MessageLimit        int
	ThreadIdleLimit     time.Duration
	RunMaxWait          time.Duration
	OpenDomainStrategy  string // "retrieval" or "assistant"
	KeywordExtraction   bool
	LookupReformulate   bool
	RetrievalTopK       int

	// Command token spellings, a localization concern
	CmdGreeting string
	CmdLookup   string
	CmdMixture  string
	CmdCancel   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			InboundTopic:       getEnv("INBOUND_TOPIC_NAME", "DIALOGUE_INBOUND"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Telegram: getEnv("TELEGRAM_BOT_TOKEN", ""),
			OpenAI:   getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AssistantID:       getEnv("OPENAI_ASSISTANT_ID", ""),
		},
		Dialogue: DialogueConfig{
			CorpusFile:          getEnv("CORPUS_FILE", "mono_oils.txt"),
			IndexFile:           getEnv("INDEX_FILE", "knowledge_index.json"),
			IndexBackend:        getEnv("INDEX_BACKEND", "file"),
			CatalogSource:       getEnv("CATALOG_SOURCE", "catalog.csv"),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.37),
			DropsPerUnit:        getEnvAsFloat("DROPS_PER_UNIT", 25),
			MessageLimit:        getEnvAsInt("MESSAGE_LIMIT", 4000),
			ThreadIdleLimit:     getEnvAsDuration("THREAD_IDLE_LIMIT", 1200*time.Second),
			RunMaxWait:          getEnvAsDuration("RUN_MAX_WAIT", 120*time.Second),
			OpenDomainStrategy:  getEnv("OPEN_DOMAIN_STRATEGY", "retrieval"),
			KeywordExtraction:   getEnvAsBool("KEYWORD_EXTRACTION", true),
			LookupReformulate:   getEnvAsBool("LOOKUP_REFORMULATE", true),
			RetrievalTopK:       getEnvAsInt("RETRIEVAL_TOP_K", 5),
			CmdGreeting:         getEnv("CMD_GREETING", "/start"),
			CmdLookup:           getEnv("CMD_LOOKUP", "/lookup"),
			CmdMixture:          getEnv("CMD_MIXTURE", "/mix"),
			CmdCancel:           getEnv("CMD_CANCEL", "/cancel"),
		},
	}
}

// Validate reports missing required credentials. Catching these at startup
// beats discovering them on the first outbound call.
func (c *Config) Validate() error {
	if c.Keys.Telegram == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Ai.LLMProvider == "openai" && c.Keys.OpenAI == "" {
		return errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	// Bare numbers are seconds
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
