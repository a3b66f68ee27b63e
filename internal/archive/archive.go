// Package archive keeps a copy of every voice note in a GCS bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const objectPrefix = "voice-notes"

// ObjectWriter opens a writer for bucket/object.
type ObjectWriter interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
}

// Archiver uploads voice notes to a bucket. A nil *Archiver is valid and
// archives nothing.
type Archiver struct {
	bucket string
	writer ObjectWriter
	now    func() time.Time
	newID  func() string
	log    zerolog.Logger
}

// New creates an Archiver backed by Cloud Storage, using Application Default
// Credentials.
func New(ctx context.Context, bucket string, log zerolog.Logger) (*Archiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("New: create storage client: %w", err)
	}
	return NewWithWriter(bucket, &gcsWriter{client: client}, log), nil
}

// NewWithWriter creates an Archiver that writes through w.
func NewWithWriter(bucket string, w ObjectWriter, log zerolog.Logger) *Archiver {
	return &Archiver{
		bucket: bucket,
		writer: w,
		now:    time.Now,
		newID:  uuid.NewString,
		log:    log.With().Str("component", "archive").Logger(),
	}
}

// Archive uploads data and returns its gs:// URI.
func (a *Archiver) Archive(ctx context.Context, contentType string, data []byte) (string, error) {
	if a == nil {
		return "", nil
	}

	object := ObjectName(a.now(), a.newID(), contentType)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.writer.NewWriter(ctx, a.bucket, object, contentType)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Archive: copy to writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", a.bucket, object)
	a.log.Info().Str("uri", uri).Int("bytes", len(data)).Msg("Voice note archived")
	return uri, nil
}

// ObjectName lays out voice-notes/<yyyy>/<mm>/<id><ext>. The extension comes
// from the content type, ".ogg" when it is unknown.
func ObjectName(t time.Time, id, contentType string) string {
	return path.Join(objectPrefix, t.Format("2006"), t.Format("01"), id+extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/ogg", "audio/opus", "":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/amr":
		return ".amr"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".ogg"
}

type gcsWriter struct {
	client *storage.Client
}

func (g *gcsWriter) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}
