package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/messaging"
)

type recordingHandler struct {
	msgs []messaging.InboundMessage
}

func (r *recordingHandler) Handle(ctx context.Context, msg messaging.InboundMessage) {
	r.msgs = append(r.msgs, msg)
}

func TestRouter(t *testing.T) {
	rh := &recordingHandler{}
	srv := httptest.NewServer(NewRouter(rh, logger.NewWithWriter(&bytes.Buffer{})))
	defer srv.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"home", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"webhook", http.MethodPost, "/webhook", url.Values{"From": {"u"}, "Body": {"hi"}}.Encode(), http.StatusOK},
		{"webhook wrong method", http.MethodGet, "/webhook", "", http.StatusMethodNotAllowed},
		{"unknown", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Errorf("missing X-Request-ID")
			}
		})
	}

	if len(rh.msgs) != 1 || rh.msgs[0].Body != "hi" {
		t.Errorf("webhook messages = %+v", rh.msgs)
	}
}
