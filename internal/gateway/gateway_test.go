package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGenerate_Success(t *testing.T) {
	content := strings.Repeat("line\n", 29) + "line"
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathGenerate, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		data, _ := json.Marshal(map[string]any{"success": true, "content": content})
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	res := New(srv.URL).Generate(context.Background(), "the prompt", "sk-ant-key")
	assert.Equal(t, Result{Success: true, Content: content}, res)
	assert.Len(t, strings.Split(res.Content, "\n"), 30)
	assert.Equal(t, map[string]string{"prompt": "the prompt", "api_key": "sk-ant-key"}, got)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"error field", respond(http.StatusUnauthorized, `{"error":"Invalid API key"}`), "Invalid API key"},
		{"rate limit", respond(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), "Rate limit exceeded"},
		{"missing error field", respond(http.StatusInternalServerError, `{}`), "Failed to generate CLAUDE.md"},
		{"unparseable body", respond(http.StatusBadGateway, `<html>bad gateway</html>`), "Failed to generate CLAUDE.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			res := New(srv.URL).Generate(context.Background(), "p", "k")
			assert.False(t, res.Success)
			assert.Empty(t, res.Content)
			assert.Equal(t, tt.want, res.Error)
		})
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `{}`))
	url := srv.URL
	srv.Close()

	res := New(url).Generate(context.Background(), "p", "k")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestGenerate_Cancelled(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `{"success":true,"content":"x"}`))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(srv.URL).Generate(ctx, "p", "k")
	assert.False(t, res.Success)
	assert.Equal(t, "context canceled", res.Error)
}

func TestGeneratePersona_SendsSystemPrompt(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathGeneratePersona, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"content":"## Architect Persona"}`))
	}))
	defer srv.Close()

	res := New(srv.URL + "/").GeneratePersona(context.Background(), "p", "sys", "k")
	assert.True(t, res.Success)
	assert.Equal(t, "## Architect Persona", res.Content)
	assert.Equal(t, "sys", got["system_prompt"])
}

func TestTestKey(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
		wantErr bool
	}{
		{"valid", respond(http.StatusOK, `{"success":true,"valid":true}`), true, false},
		{"success without valid", respond(http.StatusOK, `{"success":true}`), false, false},
		{"unauthorized", respond(http.StatusUnauthorized, `{"error":"Invalid API key"}`), false, false},
		{"garbage", respond(http.StatusOK, `nope`), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			ok, err := New(srv.URL).TestKey(context.Background(), "k")
			assert.Equal(t, tt.want, ok)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
