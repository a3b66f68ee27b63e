package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the bot. It is built once in
// main and handed to each component's constructor.
type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Twilio  TwilioConfig
	Sheets  SheetsConfig
	Store   StoreConfig
	Archive ArchiveConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Port string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	// From is the sender address, e.g. "whatsapp:+14155238886".
	From string
}

type SheetsConfig struct {
	SpreadsheetID string
	// Credentials is either a path to a service account file or the JSON itself.
	Credentials string
	// FallbackCredentialsFile is tried when Credentials resolves to nothing.
	FallbackCredentialsFile string
	// Locale selects month and header names for new tabs ("en", "it").
	Locale string
}

type StoreConfig struct {
	Path string
}

type ArchiveConfig struct {
	// Bucket is the GCS bucket voice notes are copied to. Empty disables archiving.
	Bucket string
}

type LoggerConfig struct {
	Level  string
	Format string
}

const (
	DefaultPort            = "5000"
	DefaultModel           = "gemini-2.0-flash"
	DefaultTwilioFrom      = "whatsapp:+14155238886"
	DefaultStorePath       = "finance.db"
	DefaultCredentialsFile = "google_credentials.json"
	DefaultLocale          = "en"
)

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port: getEnv("PORT", DefaultPort),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", DefaultModel),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_WHATSAPP_NUMBER", DefaultTwilioFrom),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:           getEnv("GOOGLE_SHEETS_ID", ""),
			Credentials:             getEnv("GOOGLE_CREDENTIALS_JSON", ""),
			FallbackCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FALLBACK", DefaultCredentialsFile),
			Locale:                  getEnv("SHEETS_LOCALE", DefaultLocale),
		},
		Store: StoreConfig{
			Path: getEnv("DB_PATH", DefaultStorePath),
		},
		Archive: ArchiveConfig{
			Bucket: getEnv("MEDIA_ARCHIVE_BUCKET", ""),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
