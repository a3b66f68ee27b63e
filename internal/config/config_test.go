package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GEMINI_MODEL", "TWILIO_WHATSAPP_NUMBER", "DB_PATH",
		"SHEETS_LOCALE", "GOOGLE_CREDENTIALS_FALLBACK", "MEDIA_ARCHIVE_BUCKET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, DefaultPort)
	}
	if cfg.Gemini.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Gemini.Model, DefaultModel)
	}
	if cfg.Twilio.From != DefaultTwilioFrom {
		t.Errorf("From = %q, want %q", cfg.Twilio.From, DefaultTwilioFrom)
	}
	if cfg.Store.Path != DefaultStorePath {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, DefaultStorePath)
	}
	if cfg.Sheets.FallbackCredentialsFile != DefaultCredentialsFile {
		t.Errorf("FallbackCredentialsFile = %q, want %q", cfg.Sheets.FallbackCredentialsFile, DefaultCredentialsFile)
	}
	if cfg.Sheets.Locale != DefaultLocale {
		t.Errorf("Locale = %q, want %q", cfg.Sheets.Locale, DefaultLocale)
	}
	if cfg.Archive.Bucket != "" {
		t.Errorf("Archive.Bucket = %q, want empty", cfg.Archive.Bucket)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("GOOGLE_API_KEY", "key-123")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-1")
	t.Setenv("GOOGLE_CREDENTIALS_JSON", `{"type":"service_account"}`)
	t.Setenv("SHEETS_LOCALE", "it")
	t.Setenv("DB_PATH", "/tmp/bot.db")

	cfg := Load()

	if cfg.Server.Port != "8081" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "key-123" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Twilio.AccountSID != "AC123" || cfg.Twilio.AuthToken != "secret" {
		t.Errorf("Twilio = %+v", cfg.Twilio)
	}
	if cfg.Sheets.SpreadsheetID != "sheet-1" || cfg.Sheets.Locale != "it" {
		t.Errorf("Sheets = %+v", cfg.Sheets)
	}
	if cfg.Sheets.Credentials != `{"type":"service_account"}` {
		t.Errorf("Credentials = %q", cfg.Sheets.Credentials)
	}
	if cfg.Store.Path != "/tmp/bot.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}
