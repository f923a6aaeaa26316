package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage and chat constants shared by every surface.
const (
	StorageKey       = "mentorai_sessions"
	PlaceholderTitle = "New Chat"
	FallbackReply    = "Sorry, I couldn't process that. Please try again."
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Addr     string
	LogLevel string

	StoreBackend  string
	DataDir       string
	SQLitePath    string
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string

	CompletionURL     string
	CompletionKey     string
	CompletionTimeout time.Duration

	Provider      string
	ProviderKey   string
	ProviderModel string

	JWTSecret string
}

// Load reads Settings from the environment, applying defaults.
func Load() Settings {
	s := Settings{
		Addr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		StoreBackend:  strings.ToLower(getenv("STORE_BACKEND", BackendFile)),
		DataDir:       getenv("DATA_DIR", ".mentorai"),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		SupabaseTable: getenv("SUPABASE_KV_TABLE", "kv_store"),

		CompletionURL: getenv("AI_CHAT_URL", "http://localhost:8080/ai-chat"),
		CompletionKey: getenv("AI_CHAT_KEY", os.Getenv("SUPABASE_KEY")),

		Provider:      strings.ToLower(getenv("AI_PROVIDER", "groq")),
		ProviderModel: os.Getenv("AI_MODEL"),

		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
	}

	s.SQLitePath = getenv("SQLITE_PATH", filepath.Join(s.DataDir, "sessions.db"))

	s.CompletionTimeout = 30 * time.Second
	if raw := os.Getenv("AI_CHAT_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			s.CompletionTimeout = d
		} else {
			Logger.Warn("Invalid AI_CHAT_TIMEOUT, using default: ", raw)
		}
	}

	switch s.Provider {
	case "openai":
		s.ProviderKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		s.ProviderKey = os.Getenv("GEMINI_API_KEY")
	default:
		s.ProviderKey = os.Getenv("GROQ_API_KEY")
	}

	return s
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
