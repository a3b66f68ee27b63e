package messaging

import (
	"net/url"
	"strconv"
	"strings"
)

// MaxMedia is the most attachments the provider puts on one message.
const MaxMedia = 10

// Media is one attachment of an inbound message.
type Media struct {
	ContentType string
	URL         string
}

// InboundMessage is the decoded form of a provider webhook call.
type InboundMessage struct {
	From       string
	Body       string
	NumMedia   int
	Media      []Media
	MessageSID string
}

// HasMedia reports whether the message carries at least one attachment.
func (m InboundMessage) HasMedia() bool {
	return m.NumMedia > 0 && len(m.Media) > 0
}

// DecodeInbound extracts the webhook fields from a form-encoded body.
// Missing fields fall back to zero values; a malformed NumMedia counts as 0
// and anything above MaxMedia is clamped to it.
func DecodeInbound(form url.Values) InboundMessage {
	msg := InboundMessage{
		From:       form.Get("From"),
		Body:       form.Get("Body"),
		MessageSID: form.Get("MessageSid"),
	}

	if n, err := strconv.Atoi(strings.TrimSpace(form.Get("NumMedia"))); err == nil && n > 0 {
		msg.NumMedia = min(n, MaxMedia)
	}

	for i := 0; i < msg.NumMedia; i++ {
		idx := strconv.Itoa(i)
		msg.Media = append(msg.Media, Media{
			ContentType: form.Get("MediaContentType" + idx),
			URL:         form.Get("MediaUrl" + idx),
		})
	}

	return msg
}
