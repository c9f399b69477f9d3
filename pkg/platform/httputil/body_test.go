package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFields(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        map[string]any
	}{
		{"json", "application/json", `{"ticket":"abc","n":4}`, map[string]any{"ticket": "abc", "n": float64(4)}},
		{"json with charset", "application/json; charset=utf-8", `{"ticket":"abc"}`, map[string]any{"ticket": "abc"}},
		{"json null", "application/json", `null`, map[string]any{}},
		{"bad json", "application/json", `{"ticket":`, map[string]any{}},
		{"json array", "application/json", `[1,2]`, map[string]any{}},
		{"form", "application/x-www-form-urlencoded", `ticket=abc&offer_id=7`, map[string]any{"ticket": "abc", "offer_id": "7"}},
		{"plain text", "text/plain", `ticket=abc`, map[string]any{}},
		{"no content type", "", `{"ticket":"abc"}`, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, ReadFields(req))
		})
	}
}

func TestStringField(t *testing.T) {
	fields := map[string]any{"s": "x", "n": float64(1)}
	assert.Equal(t, "x", StringField(fields, "s"))
	assert.Empty(t, StringField(fields, "n"))
	assert.Empty(t, StringField(fields, "missing"))
}
