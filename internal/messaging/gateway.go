// Package messaging is the boundary to the chat transport (Twilio WhatsApp):
// inbound webhook decoding, outbound replies and media downloads.
package messaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	// MaxReplyLength keeps replies under the provider's 1600 character cap.
	MaxReplyLength = 1500

	// TruncationMarker is appended to replies cut at MaxReplyLength.
	TruncationMarker = "... (truncated)"
)

// MessageCreator is the subset of the Twilio REST API the gateway uses.
type MessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// Gateway sends replies and fetches media on behalf of the bot.
type Gateway struct {
	messages   MessageCreator
	httpClient *http.Client
	accountSID string
	authToken  string
	from       string
	log        zerolog.Logger
}

// NewGateway builds a Twilio-backed gateway. Missing credentials are not an
// error here: every send then logs and gives up.
func NewGateway(cfg config.TwilioConfig, log zerolog.Logger) *Gateway {
	g := &Gateway{
		httpClient: http.DefaultClient,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		log:        log.With().Str("component", "messaging").Logger(),
	}
	if cfg.AccountSID != "" && cfg.AuthToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		g.messages = client.Api
	}
	if g.from == "" {
		g.from = config.DefaultTwilioFrom
	}
	return g
}

// WithMessageCreator swaps the outbound API, used by tests.
func (g *Gateway) WithMessageCreator(m MessageCreator) *Gateway {
	g.messages = m
	return g
}

// WithHTTPClient swaps the client used for media downloads.
func (g *Gateway) WithHTTPClient(c *http.Client) *Gateway {
	g.httpClient = c
	return g
}

// SendReply sends text to the recipient. It never returns an error: failures
// are logged and dropped so a reply can't break the caller.
func (g *Gateway) SendReply(ctx context.Context, to, text string) {
	if g.messages == nil {
		g.log.Error().Str("to", to).Msg("Twilio credentials missing, reply dropped")
		return
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(g.from)
	params.SetTo(to)
	params.SetBody(TruncateReply(text))

	msg, err := g.messages.CreateMessage(params)
	if err != nil {
		g.log.Error().Err(err).Str("to", to).Msg("Failed to send message")
		return
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	g.log.Info().Str("to", to).Str("sid", sid).Msg("Message sent")
}

// TruncateReply cuts text longer than MaxReplyLength characters and appends
// TruncationMarker. Shorter text is returned unchanged.
func TruncateReply(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxReplyLength {
		return text
	}
	return string(runes[:MaxReplyLength]) + TruncationMarker
}

// DownloadMedia fetches url with the account credentials and writes the body
// to destination. It returns false, after logging, on any failure.
func (g *Gateway) DownloadMedia(ctx context.Context, url, destination string) bool {
	if err := g.download(ctx, url, destination); err != nil {
		g.log.Error().Err(err).Str("url", url).Msg("Failed to download media")
		return false
	}
	return true
}

func (g *Gateway) download(ctx context.Context, url, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download: building request: %w", err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("download: creating %s: %w", destination, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(destination)
		return fmt.Errorf("download: writing %s: %w", destination, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("download: closing %s: %w", destination, err)
	}
	return nil
}
