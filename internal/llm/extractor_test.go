package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func TestExtract_Text(t *testing.T) {
	var gotModel string
	var gotContents []*genai.Content
	g := newGeminiExtractor("test-model", func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotContents = contents
		return textResponse(`[{"amount": 3}]`), nil
	})

	out, err := g.Extract(context.Background(), Content{Text: "coffee 3 euro"}, "instructions")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out != `[{"amount": 3}]` {
		t.Errorf("out = %q", out)
	}
	if gotModel != "test-model" {
		t.Errorf("model = %q", gotModel)
	}
	if len(gotContents) != 1 || len(gotContents[0].Parts) != 2 {
		t.Fatalf("unexpected contents: %+v", gotContents)
	}
	if gotContents[0].Parts[0].Text != "instructions" || gotContents[0].Parts[1].Text != "coffee 3 euro" {
		t.Errorf("parts = %q, %q", gotContents[0].Parts[0].Text, gotContents[0].Parts[1].Text)
	}
}

func TestExtract_AudioIsInlined(t *testing.T) {
	var gotContents []*genai.Content
	g := newGeminiExtractor("", func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if model != "gemini-2.0-flash" {
			t.Errorf("default model not applied, got %q", model)
		}
		gotContents = contents
		return textResponse("[]"), nil
	})

	_, err := g.Extract(context.Background(), Content{Data: []byte("OggS"), MIMEType: "audio/ogg"}, AudioInstructions())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	parts := gotContents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("expected inline audio part, got %+v", parts)
	}
	if parts[1].InlineData.MIMEType != "audio/ogg" || string(parts[1].InlineData.Data) != "OggS" {
		t.Errorf("blob = %+v", parts[1].InlineData)
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		wantErr error
	}{
		{"api error", nil, errors.New("quota"), nil},
		{"empty answer", textResponse(""), nil, ErrEmptyResponse},
		{"no candidates", &genai.GenerateContentResponse{}, nil, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGeminiExtractor("m", func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			})
			_, err := g.Extract(context.Background(), Content{Text: "x"}, "i")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"amount":1}]`, `[{"amount":1}]`},
		{"json fence", "```json\n[{\"amount\":1}]\n```", `[{"amount":1}]`},
		{"bare fence", "```\n{\"amount\":1}\n```", `{"amount":1}`},
		{"whitespace", "  \n{\"a\":1}\n\n", `{"a":1}`},
		{"single line fence", "```json{\"a\":1}```", `{"a":1}`},
		{"garbage passes through", "not json{{", "not json{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.in); got != tt.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	text := TextInstructions()
	if strings.Contains(text, "%") {
		t.Errorf("text instructions carry a format verb: %s", text)
	}
	for _, s := range []string{text, AudioInstructions()} {
		if !strings.Contains(s, "JSON array") || !strings.Contains(s, `"type"`) {
			t.Errorf("instructions missing output contract: %s", s)
		}
	}
}
