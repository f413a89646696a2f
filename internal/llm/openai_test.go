package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtaibeau/youtube-proj/internal/config"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o, err := NewOpenAI(config.LLMConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4o",
		BaseURL: srv.URL + "/v1/",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return o
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func TestOpenAI_Complete(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		checkChatRequest(t, r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatResponse(`{"segments":[{"speaker":"A","text":"hi"}]}`))
	})

	schema := &Schema{Name: "s", Definition: map[string]any{"type": "object"}}
	out, err := o.Complete(context.Background(), Prompt{System: "sys", User: "user", Temperature: 0}, schema)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"segments":[{"speaker":"A","text":"hi"}]}` {
		t.Errorf("content = %q", out)
	}
}

func checkChatRequest(t *testing.T, r *http.Request) {
	var body map[string]any
	raw, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Errorf("request body: %v", err)
		return
	}
	if body["model"] != "gpt-4o" {
		t.Errorf("model = %v", body["model"])
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %d", len(msgs))
		return
	}
	sys, _ := msgs[0].(map[string]any)
	if content, _ := sys["content"].(string); !strings.HasPrefix(content, "sys\n\n") || !strings.Contains(content, "JSON Schema") {
		t.Errorf("system message = %q", sys["content"])
	}
}

func TestOpenAI_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, RateLimited},
		{http.StatusUnauthorized, AuthError},
		{http.StatusInternalServerError, Unavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"error":{"message":"nope","type":"test_error"}}`)
			})

			_, err := o.Complete(context.Background(), Prompt{User: "x"}, nil)
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %s, want %s (err %v)", got, tt.want, err)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("expected 1 request (sdk retries disabled), got %d", n)
			}
		})
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatResponse(""))
	})

	_, err := o.Complete(context.Background(), Prompt{User: "x"}, nil)
	if KindOf(err) != MalformedResponse {
		t.Errorf("expected malformed response, got %v", err)
	}
}
