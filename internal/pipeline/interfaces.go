package pipeline

import (
	"context"

	"github.com/dvloznov/finance-bot/internal/domain"
	"github.com/dvloznov/finance-bot/internal/llm"
)

// Extractor turns content plus instructions into raw model text.
type Extractor interface {
	Extract(ctx context.Context, content llm.Content, instructions string) (string, error)
}

// RecordStore persists transactions and computes per-user totals.
type RecordStore interface {
	Add(ctx context.Context, rec domain.NewRecord) (int64, error)
	Stats(ctx context.Context, userID string) (domain.UserStats, error)
}

// Mirror copies a transaction to the spreadsheet. It reports failure in its
// return values rather than as an error.
type Mirror interface {
	Append(ctx context.Context, amount float64, category, description, txType string) (bool, string)
}

// Gateway is the outbound side of the messaging transport.
type Gateway interface {
	SendReply(ctx context.Context, to, text string)
	DownloadMedia(ctx context.Context, url, destination string) bool
}

// MediaArchiver keeps a copy of inbound voice notes.
type MediaArchiver interface {
	Archive(ctx context.Context, contentType string, data []byte) (string, error)
}
