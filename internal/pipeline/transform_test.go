package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/finance-bot/internal/domain"
)

func TestParseAndPersist_SingleObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    domain.NewRecord
		wantRaw map[string]interface{}
	}{
		{
			name: "all fields",
			in:   `{"amount": 12.5, "category": "Food", "description": "lunch", "type": "expense"}`,
			want: domain.NewRecord{UserID: "u", Amount: 12.5, Category: "Food", Description: "lunch", Type: domain.TxTypeExpense},
		},
		{
			name: "defaults",
			in:   `{}`,
			want: domain.NewRecord{UserID: "u", Amount: 0, Category: "Other", Description: "", Type: domain.TxTypeExpense},
		},
		{
			name: "blank category",
			in:   `{"amount": 1, "category": "  "}`,
			want: domain.NewRecord{UserID: "u", Amount: 1, Category: "Other", Type: domain.TxTypeExpense},
		},
		{
			name: "income",
			in:   `{"amount": 1500, "category": "Salary", "type": "Income"}`,
			want: domain.NewRecord{UserID: "u", Amount: 1500, Category: "Salary", Type: domain.TxTypeIncome},
		},
		{
			name: "unknown type",
			in:   `{"amount": 2, "type": "transfer"}`,
			want: domain.NewRecord{UserID: "u", Amount: 2, Category: "Other", Type: domain.TxTypeExpense},
		},
		{
			name: "numeric string with comma",
			in:   `{"amount": " 10,50 ", "category": "Bar"}`,
			want: domain.NewRecord{UserID: "u", Amount: 10.5, Category: "Bar", Type: domain.TxTypeExpense},
		},
		{
			name: "non numeric amount",
			in:   `{"amount": "ten", "category": "Bar"}`,
			want: domain.NewRecord{UserID: "u", Amount: 0, Category: "Bar", Type: domain.TxTypeExpense},
		},
		{
			name: "null fields",
			in:   `{"amount": null, "category": null, "description": null}`,
			want: domain.NewRecord{UserID: "u", Amount: 0, Category: "Other", Description: "", Type: domain.TxTypeExpense},
		},
		{
			name: "fenced",
			in:   "```json\n{\"amount\": 3, \"category\": \"Coffee\"}\n```",
			want: domain.NewRecord{UserID: "u", Amount: 3, Category: "Coffee", Type: domain.TxTypeExpense},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if n := f.pipeline.ParseAndPersist(f.ctx, "u", tt.in); n != 1 {
				t.Fatalf("ParseAndPersist stored %d, want 1", n)
			}
			if len(f.store.added) != 1 {
				t.Fatalf("stored %d records, want 1", len(f.store.added))
			}
			got := f.store.added[0]
			got.RawText = ""
			if got != tt.want {
				t.Errorf("record = %+v, want %+v", got, tt.want)
			}
			if f.mirror.appended != 1 {
				t.Errorf("mirrored %d times, want 1", f.mirror.appended)
			}
			if len(f.gateway.replies) != 1 {
				t.Errorf("got %d replies, want 1", len(f.gateway.replies))
			}
		})
	}
}

func TestParseAndPersist_RawTextIsSingleItem(t *testing.T) {
	f := newFixture(t)

	f.pipeline.ParseAndPersist(f.ctx, "u", `[{"amount": 3, "category": "Coffee"}, {"amount": 12, "category": "Food"}]`)

	if len(f.store.added) != 2 {
		t.Fatalf("stored %d records, want 2", len(f.store.added))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(f.store.added[1].RawText), &raw); err != nil {
		t.Fatalf("RawText is not JSON: %v", err)
	}
	if raw["category"] != "Food" || raw["amount"] != 12.0 {
		t.Errorf("RawText = %s", f.store.added[1].RawText)
	}
	if strings.Contains(f.store.added[1].RawText, "Coffee") {
		t.Errorf("RawText carries the whole batch: %s", f.store.added[1].RawText)
	}
}

func TestParseAndPersist_ListSizes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantCount int
	}{
		{"empty list", `[]`, 0},
		{"one", `[{"amount": 1}]`, 1},
		{"three", `[{"amount": 1}, {"amount": 2}, {"amount": 3}]`, 3},
		{"error items skipped", `[{"amount": 1}, {"error": "unclear"}, {"amount": 3}]`, 2},
		{"non objects skipped", `[{"amount": 1}, 42, "text", null, [1]]`, 1},
		{"only errors", `[{"error": "nothing here"}]`, 0},
		{"error object", `{"error": "not a transaction"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			n := f.pipeline.ParseAndPersist(f.ctx, "u", tt.in)

			if n != tt.wantCount || len(f.store.added) != tt.wantCount {
				t.Errorf("stored %d (returned %d), want %d", len(f.store.added), n, tt.wantCount)
			}
			if len(f.gateway.replies) != 1 {
				t.Fatalf("got %d replies, want exactly 1", len(f.gateway.replies))
			}
			reply := f.gateway.replies[0]
			if tt.wantCount == 0 {
				if reply != MsgNoTransaction {
					t.Errorf("reply = %q, want %q", reply, MsgNoTransaction)
				}
				return
			}
			if lines := strings.Split(reply, "\n"); len(lines) != tt.wantCount {
				t.Errorf("reply has %d lines, want %d: %q", len(lines), tt.wantCount, reply)
			}
		})
	}
}

func TestParseAndPersist_BadAnswers(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantReply string
	}{
		{"not json", "not json{{", MsgDataError},
		{"empty", "", MsgDataError},
		{"number", "42", MsgFormatError},
		{"string", `"hello"`, MsgFormatError},
		{"null", "null", MsgFormatError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if n := f.pipeline.ParseAndPersist(f.ctx, "u", tt.in); n != 0 {
				t.Errorf("stored %d, want 0", n)
			}
			if len(f.store.added) != 0 || f.mirror.appended != 0 {
				t.Errorf("side effects on bad input: %d stored, %d mirrored", len(f.store.added), f.mirror.appended)
			}
			if len(f.gateway.replies) != 1 || f.gateway.replies[0] != tt.wantReply {
				t.Errorf("replies = %q, want [%q]", f.gateway.replies, tt.wantReply)
			}
		})
	}
}

func TestParseAndPersist_StoreFailureSkipsItem(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.store.AddFunc = func(ctx context.Context, rec domain.NewRecord) (int64, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("disk full")
		}
		return int64(calls), nil
	}

	n := f.pipeline.ParseAndPersist(f.ctx, "u", `[{"amount": 1, "category": "A"}, {"amount": 2, "category": "B"}]`)

	if n != 1 {
		t.Errorf("stored %d, want 1", n)
	}
	if f.mirror.appended != 1 {
		t.Errorf("mirrored %d, want 1 (failed item must not be mirrored)", f.mirror.appended)
	}
	if reply := f.gateway.replies[0]; strings.Contains(reply, "· A ·") || !strings.Contains(reply, "· B ·") {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseAndPersist_MirrorFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.mirror.AppendFunc = func(context.Context, float64, string, string, string) (bool, string) {
		return false, "missing credentials"
	}

	f.pipeline.ParseAndPersist(f.ctx, "u", `{"amount": 4, "category": "Taxi", "description": "airport"}`)

	if len(f.store.added) != 1 {
		t.Errorf("a mirror failure must not undo the stored record")
	}
	want := "⚠️ 4.00€ · Taxi · airport (sheet: missing credentials)"
	if len(f.gateway.replies) != 1 || f.gateway.replies[0] != want {
		t.Errorf("replies = %q, want [%q]", f.gateway.replies, want)
	}
}
