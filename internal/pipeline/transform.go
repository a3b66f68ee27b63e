package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-bot/internal/domain"
	"github.com/dvloznov/finance-bot/internal/llm"
	"github.com/dvloznov/finance-bot/internal/logger"
)

// item is one transaction as read from the model, after defaults.
type item struct {
	Amount      float64
	Category    string
	Description string
	Type        domain.TxType
	Raw         string
}

// ParseAndPersist reads the model's answer, stores and mirrors every
// transaction in it and sends the user one reply. It returns the number of
// records stored.
func (p *Pipeline) ParseAndPersist(ctx context.Context, userID, modelText string) int {
	log := logger.FromContext(ctx)

	var parsed interface{}
	if err := json.Unmarshal([]byte(llm.CleanJSON(modelText)), &parsed); err != nil {
		log.Warn().Err(err).Str("raw", modelText).Msg("Model answer is not JSON")
		p.gateway.SendReply(ctx, userID, MsgDataError)
		return 0
	}

	list, ok := normalizeList(parsed)
	if !ok {
		log.Warn().Str("raw", modelText).Msgf("Model answer is %T, want list or object", parsed)
		p.gateway.SendReply(ctx, userID, MsgFormatError)
		return 0
	}

	var lines []string
	for i, raw := range list {
		it, ok := toItem(raw)
		if !ok {
			log.Debug().Int("index", i).Msg("Skipping item")
			continue
		}

		id, err := p.store.Add(ctx, domain.NewRecord{
			UserID:      userID,
			Amount:      it.Amount,
			Category:    it.Category,
			Description: it.Description,
			Type:        it.Type,
			RawText:     it.Raw,
		})
		if err != nil {
			log.Error().Err(err).Int("index", i).Msg("Failed to store transaction")
			continue
		}
		log.Info().Int64("id", id).Float64("amount", it.Amount).Str("category", it.Category).Msg("Transaction stored")

		saved, reason := p.mirror.Append(ctx, it.Amount, it.Category, it.Description, string(it.Type))
		lines = append(lines, formatLine(it, saved, reason))
	}

	if len(lines) == 0 {
		p.gateway.SendReply(ctx, userID, MsgNoTransaction)
		return 0
	}
	p.gateway.SendReply(ctx, userID, strings.Join(lines, "\n"))
	return len(lines)
}

// normalizeList wraps a single object in a one-element list.
func normalizeList(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case []interface{}:
		return val, true
	case map[string]interface{}:
		return []interface{}{val}, true
	default:
		return nil, false
	}
}

// toItem applies defaults to one raw element. Non-objects and objects
// carrying an "error" key are rejected.
func toItem(v interface{}) (item, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return item{}, false
	}
	if _, hasErr := obj["error"]; hasErr {
		return item{}, false
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return item{}, false
	}

	category := strings.TrimSpace(getStringField(obj, "category"))
	if category == "" {
		category = domain.DefaultCategory
	}

	return item{
		Amount:      getFloat64Field(obj, "amount"),
		Category:    category,
		Description: getStringField(obj, "description"),
		Type:        domain.ParseTxType(getStringField(obj, "type")),
		Raw:         string(raw),
	}, true
}

func getStringField(m map[string]interface{}, key string) string {
	switch val := m[key].(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// getFloat64Field accepts JSON numbers and numeric strings ("12,50" too).
// Anything else is 0.
func getFloat64Field(m map[string]interface{}, key string) float64 {
	switch val := m[key].(type) {
	case float64:
		return val
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func formatLine(it item, saved bool, reason string) string {
	line := fmt.Sprintf("%.2f€ · %s · %s", it.Amount, it.Category, it.Description)
	if saved {
		return glyphSaved + " " + line
	}
	return fmt.Sprintf("%s %s (sheet: %s)", glyphWarning, line, reason)
}
