package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{"", 50, true},
		{"1", 1, true},
		{"50", 50, true},
		{"200", 200, true},
		{"201", 200, true},
		{"999999", 200, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLimit(tt.raw)
		assert.Equal(t, tt.valid, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestIsValidRoomCode(t *testing.T) {
	valid := []string{"AB12CD", "a", "room_1", "my-room", strings.Repeat("Z", 64)}
	for _, code := range valid {
		assert.True(t, isValidRoomCode(code), code)
	}

	invalid := []string{"", "a b", "room/1", "ÅB12CD", "../x", strings.Repeat("Z", 65)}
	for _, code := range invalid {
		assert.False(t, isValidRoomCode(code), code)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(""))
	assert.True(t, isBlank(" \t\n "))
	assert.False(t, isBlank("a"))
	assert.False(t, isBlank("  alice \n"))
}

func TestDecodeObjectKeepsNumbers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"session":12345678901234567891,"ssrc":9007199254740993,"m":0.5}`))
	obj, err := decodeObject(req)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567891"), obj["session"])
	assert.Equal(t, json.Number("9007199254740993"), obj["ssrc"])

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"session":12345678901234567891`)
	assert.Contains(t, string(out), `"ssrc":9007199254740993`)

	for _, body := range []string{`[1]`, `"x"`, `null`, `7`} {
		_, err := decodeObject(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.ErrorIs(t, err, errNotObject, body)
	}
}

func TestRequireStoreWithoutStore(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h.RequireStore(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/AB12CD", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"store not configured"}`, rec.Body.String())
}
