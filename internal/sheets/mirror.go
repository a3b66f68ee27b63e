// Package sheets mirrors each stored transaction into a Google spreadsheet,
// one tab per calendar month.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/rs/zerolog"
)

const (
	newTabRows = 100
	newTabCols = 10

	rowTimeFormat = "2006-01-02 15:04:05"
)

// Reasons returned when the mirror cannot run at all.
const (
	ReasonMissingCredentials = "missing credentials"
	ReasonMissingID          = "missing id"
)

// Mirror appends transaction rows to the configured spreadsheet.
type Mirror struct {
	cfg       config.SheetsConfig
	newClient ClientFactory
	locale    Locale
	now       func() time.Time
	log       zerolog.Logger
}

// NewMirror builds a mirror. A nil factory means the real Sheets API.
func NewMirror(cfg config.SheetsConfig, factory ClientFactory, log zerolog.Logger) *Mirror {
	if factory == nil {
		factory = NewGoogleClient
	}
	return &Mirror{
		cfg:       cfg,
		newClient: factory,
		locale:    LocaleFor(cfg.Locale),
		now:       time.Now,
		log:       log.With().Str("component", "sheets").Logger(),
	}
}

// Append writes [timestamp, amount, category, description, type] to this
// month's tab, creating the tab with a header row when it does not exist.
// It never fails outward: the bool says whether the row landed and the
// string is either a confirmation or the reason it did not.
func (m *Mirror) Append(ctx context.Context, amount float64, category, description, txType string) (bool, string) {
	creds, err := m.resolveCredentials()
	if err != nil {
		m.log.Error().Err(err).Msg("Google credentials not found")
		return false, ReasonMissingCredentials
	}

	if m.cfg.SpreadsheetID == "" {
		m.log.Error().Msg("GOOGLE_SHEETS_ID missing")
		return false, ReasonMissingID
	}

	client, err := m.newClient(ctx, creds)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to create sheets client")
		return false, err.Error()
	}

	now := m.now()
	tab := m.locale.TabName(now)

	if err := m.ensureTab(ctx, client, tab); err != nil {
		m.log.Error().Err(err).Str("tab", tab).Msg("Failed to prepare tab")
		return false, err.Error()
	}

	row := []interface{}{now.Format(rowTimeFormat), amount, category, description, txType}
	if err := client.AppendRow(ctx, m.cfg.SpreadsheetID, tab, row); err != nil {
		m.log.Error().Err(err).Str("tab", tab).Msg("Failed to append row")
		return false, err.Error()
	}

	return true, fmt.Sprintf("saved to '%s'", tab)
}

func (m *Mirror) ensureTab(ctx context.Context, client SpreadsheetAPI, tab string) error {
	titles, err := client.TabTitles(ctx, m.cfg.SpreadsheetID)
	if err != nil {
		return err
	}
	for _, t := range titles {
		if t == tab {
			return nil
		}
	}

	if err := client.AddTab(ctx, m.cfg.SpreadsheetID, tab, newTabRows, newTabCols); err != nil {
		return err
	}
	return client.AppendRow(ctx, m.cfg.SpreadsheetID, tab, m.locale.HeaderRow())
}

// errNoCredentials is returned when neither the configured value nor the
// fallback file yield credentials.
var errNoCredentials = errors.New("no service account credentials configured")

// resolveCredentials tries, in order: the configured value as a file path,
// the configured value as inline JSON, then the fallback file.
func (m *Mirror) resolveCredentials() ([]byte, error) {
	if v := m.cfg.Credentials; v != "" {
		if info, err := os.Stat(v); err == nil && !info.IsDir() {
			data, err := os.ReadFile(v)
			if err != nil {
				return nil, fmt.Errorf("resolveCredentials: reading %s: %w", v, err)
			}
			return data, nil
		}
		if json.Valid([]byte(v)) {
			return []byte(v), nil
		}
	}

	if f := m.cfg.FallbackCredentialsFile; f != "" {
		if data, err := os.ReadFile(f); err == nil {
			return data, nil
		}
	}

	return nil, errNoCredentials
}
