package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afhammirza1/sharingapp/internal/api/middleware"
	"github.com/Afhammirza1/sharingapp/internal/handlers"
	"github.com/Afhammirza1/sharingapp/internal/models"
	"github.com/Afhammirza1/sharingapp/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewRouter(zerolog.Nop(), store.Instrument(s), Options{})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestRootAndHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var root handlers.RootResponse
	decode(t, rec, &root)
	assert.Equal(t, "ShareNear API", root.Message)
	assert.True(t, root.StoreEnabled)
	assert.Equal(t, "sqlite", root.StoreBackend)

	rec = do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health handlers.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "pass", health.Checks["store"].Status)
	assert.NotEmpty(t, health.Timestamp)
}

func TestTestConnection(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/test-connection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.TestConnectionResponse
	decode(t, rec, &resp)
	assert.Equal(t, "connection successful", resp.Status)
	assert.Equal(t, "sqlite", resp.StoreBackend)
	assert.Empty(t, resp.Error)
}

func TestRoomLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/rooms", `{"code":"AB12CD"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created handlers.CreateRoomResponse
	decode(t, rec, &created)
	assert.Equal(t, "AB12CD", created.Code)
	assert.Equal(t, "Room created successfully", created.Message)

	rec = do(t, h, http.MethodGet, "/api/rooms/AB12CD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var room models.Room
	decode(t, rec, &room)
	assert.Equal(t, "AB12CD", room.Code)
	assert.Equal(t, []string{"anonymous"}, room.Users)
	assert.Equal(t, "anonymous", room.CreatedBy)
	assert.True(t, room.Active)
	assert.Empty(t, room.Files)
	assert.Contains(t, rec.Body.String(), `"files":[]`)

	rec = do(t, h, http.MethodGet, "/api/rooms/AB12CD/messages?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/rooms/AB12CD/files", `{"file_name":"a.txt","file_size":10,"file_type":"text/plain"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var file handlers.AppendFileResponse
	decode(t, rec, &file)
	assert.Equal(t, "File metadata saved", file.Message)
	assert.NotEmpty(t, file.FileID)

	rec = do(t, h, http.MethodGet, "/api/rooms/AB12CD", "")
	decode(t, rec, &room)
	require.Len(t, room.Files, 1)
	assert.Equal(t, file.FileID, room.Files[0].ID)
	assert.Equal(t, "a.txt", room.Files[0].Name)
	assert.Equal(t, int64(10), room.Files[0].Size)
	assert.Equal(t, "text/plain", room.Files[0].Type)
	assert.Equal(t, "anonymous", room.Files[0].UploadedBy)

	for _, text := range []string{"hi", "there"} {
		rec = do(t, h, http.MethodPost, "/api/rooms/AB12CD/messages", `{"text":"`+text+`","sender":"bob"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sent handlers.SendMessageResponse
		decode(t, rec, &sent)
		assert.Equal(t, "Message sent successfully", sent.Message)
		assert.NotEmpty(t, sent.ID)
		assert.False(t, sent.Timestamp.IsZero())
	}

	rec = do(t, h, http.MethodGet, "/api/rooms/AB12CD/messages?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list handlers.MessagesResponse
	decode(t, rec, &list)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "hi", list.Messages[0].Text)
	assert.Equal(t, "there", list.Messages[1].Text)
	assert.Equal(t, "bob", list.Messages[0].Sender)

	rec = do(t, h, http.MethodPost, "/api/rooms/AB12CD/signal", `{"type":"offer","sdp":"v=0"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Signal sent"}`, rec.Body.String())
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []string{"", `{}`, `{"code":""}`} {
		rec := do(t, h, http.MethodPost, "/api/rooms", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created handlers.CreateRoomResponse
		decode(t, rec, &created)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, created.Code)

		rec = do(t, h, http.MethodGet, "/api/rooms/"+created.Code, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCreateRoomDuplicateCode(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/rooms", `{"code":"TAKEN1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/rooms", `{"code":"TAKEN1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"room code already in use"}`, rec.Body.String())
}

func TestUnknownRoom(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/rooms/NOPE00", ""},
		{http.MethodPost, "/api/rooms/NOPE00/files", `{"file_name":"a","file_size":1,"file_type":"t"}`},
		{http.MethodPost, "/api/rooms/NOPE00/messages", `{"text":"hi","sender":"bob"}`},
		{http.MethodGet, "/api/rooms/NOPE00/messages", ""},
		{http.MethodPost, "/api/rooms/NOPE00/signal", `{"type":"offer"}`},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.target, tt.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tt.method, tt.target)
		assert.JSONEq(t, `{"error":"room not found"}`, rec.Body.String())
	}
}

func TestValidationErrors(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/rooms", `{"code":"VALID1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	longCode := strings.Repeat("A", 65)
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"malformed room json", http.MethodPost, "/api/rooms", `{"code":`},
		{"code with spaces", http.MethodPost, "/api/rooms", `{"code":"a b"}`},
		{"code too long", http.MethodPost, "/api/rooms", `{"code":"` + longCode + `"}`},
		{"path code too long", http.MethodGet, "/api/rooms/" + longCode, ""},
		{"file missing size", http.MethodPost, "/api/rooms/VALID1/files", `{"file_name":"a","file_type":"t"}`},
		{"file negative size", http.MethodPost, "/api/rooms/VALID1/files", `{"file_name":"a","file_size":-1,"file_type":"t"}`},
		{"file fractional size", http.MethodPost, "/api/rooms/VALID1/files", `{"file_name":"a","file_size":1.5,"file_type":"t"}`},
		{"file blank name", http.MethodPost, "/api/rooms/VALID1/files", `{"file_name":"  ","file_size":1,"file_type":"t"}`},
		{"file missing type", http.MethodPost, "/api/rooms/VALID1/files", `{"file_name":"a","file_size":1}`},
		{"message blank text", http.MethodPost, "/api/rooms/VALID1/messages", `{"text":"   ","sender":"bob"}`},
		{"message missing sender", http.MethodPost, "/api/rooms/VALID1/messages", `{"text":"hi"}`},
		{"message too long", http.MethodPost, "/api/rooms/VALID1/messages", `{"text":"` + strings.Repeat("a", 4097) + `","sender":"bob"}`},
		{"message empty body", http.MethodPost, "/api/rooms/VALID1/messages", ""},
		{"limit zero", http.MethodGet, "/api/rooms/VALID1/messages?limit=0", ""},
		{"limit negative", http.MethodGet, "/api/rooms/VALID1/messages?limit=-5", ""},
		{"limit not a number", http.MethodGet, "/api/rooms/VALID1/messages?limit=ten", ""},
		{"signal array", http.MethodPost, "/api/rooms/VALID1/signal", `[1,2]`},
		{"signal string", http.MethodPost, "/api/rooms/VALID1/signal", `"offer"`},
		{"signal null", http.MethodPost, "/api/rooms/VALID1/signal", `null`},
		{"signal empty body", http.MethodPost, "/api/rooms/VALID1/signal", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var resp handlers.ErrorResponse
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
			assert.Empty(t, resp.Detail)
		})
	}

	// Nothing was written by the rejected requests.
	rec = do(t, h, http.MethodGet, "/api/rooms/VALID1", "")
	var room models.Room
	decode(t, rec, &room)
	assert.Empty(t, room.Files)
	rec = do(t, h, http.MethodGet, "/api/rooms/VALID1/messages", "")
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestMessageLimitIsCapped(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", `{"code":"CAP001"}`).Code)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/rooms/CAP001/messages", `{"text":"x","sender":"s"}`).Code)
	}

	rec := do(t, h, http.MethodGet, "/api/rooms/CAP001/messages?limit=100000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list handlers.MessagesResponse
	decode(t, rec, &list)
	assert.Len(t, list.Messages, 3)

	rec = do(t, h, http.MethodGet, "/api/rooms/CAP001/messages?limit=2", "")
	decode(t, rec, &list)
	assert.Len(t, list.Messages, 2)
}

func TestSignalAcceptsAnyObject(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", `{"code":"SIGNAL"}`).Code)

	for _, body := range []string{
		`{}`,
		`{"type":"answer","sdp":"v=0\r\n"}`,
		`{"candidate":{"candidate":"candidate:1 1 udp 2122260223 10.0.0.2 54400 typ host","sdpMid":"0","sdpMLineIndex":0}}`,
		`{"timestamp":"client clock","nested":[1,{"a":null}]}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/rooms/SIGNAL/signal", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
	}
}

func TestNoStoreConfigured(t *testing.T) {
	h := NewRouter(zerolog.Nop(), nil, Options{})

	rec := do(t, h, http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var root handlers.RootResponse
	decode(t, rec, &root)
	assert.False(t, root.StoreEnabled)
	assert.Equal(t, "none", root.StoreBackend)

	rec = do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health handlers.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "skip", health.Checks["store"].Status)

	rec = do(t, h, http.MethodPost, "/api/test-connection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var probe handlers.TestConnectionResponse
	decode(t, rec, &probe)
	assert.Equal(t, "store not configured", probe.Status)

	// Store availability is checked before any validation.
	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/api/rooms", `{"code":"!!"}`},
		{http.MethodGet, "/api/rooms/AB12CD", ""},
		{http.MethodPost, "/api/rooms/AB12CD/files", `{}`},
		{http.MethodPost, "/api/rooms/AB12CD/messages", `{"text":""}`},
		{http.MethodGet, "/api/rooms/AB12CD/messages?limit=-1", ""},
		{http.MethodPost, "/api/rooms/AB12CD/signal", `[]`},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.target, tt.body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "%s %s", tt.method, tt.target)
		assert.JSONEq(t, `{"error":"store not configured"}`, rec.Body.String())
	}

	// Content-type and body size checks come after the store gate.
	small := NewRouter(zerolog.Nop(), nil, Options{MaxBodyBytes: 16})
	raw := []struct {
		name        string
		target      string
		contentType string
		body        string
	}{
		{"text body", "/api/rooms/AB12CD/messages", "text/plain", "hello"},
		{"form body", "/api/rooms", "application/x-www-form-urlencoded", "code=AB12CD"},
		{"oversized body", "/api/rooms/AB12CD/signal", "application/json", `{"sdp":"` + strings.Repeat("v", 64) + `"}`},
	}
	for _, tt := range raw {
		req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", tt.contentType)
		rec := httptest.NewRecorder()
		small.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tt.name)
	}
}

// stubStore fails every call it implements; the rest panic if reached.
type stubStore struct {
	store.RoomStore
	err     error
	pingErr error
}

func (s stubStore) Backend() string                { return "stub" }
func (s stubStore) Ping(ctx context.Context) error { return s.pingErr }

func (s stubStore) Probe(ctx context.Context) (*store.ProbeResult, error) {
	return nil, s.err
}

func (s stubStore) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	return nil, s.err
}

func (s stubStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	return nil, s.err
}

func TestStoreFailures(t *testing.T) {
	boom := errors.New("deadline exceeded talking to backend")
	h := NewRouter(zerolog.Nop(), stubStore{err: boom, pingErr: boom}, Options{})

	rec := do(t, h, http.MethodGet, "/api/rooms/AB12CD", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp handlers.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "failed to get room", resp.Error)
	assert.Equal(t, boom.Error(), resp.Detail)

	rec = do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health handlers.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "fail", health.Checks["store"].Status)

	rec = do(t, h, http.MethodPost, "/api/test-connection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var probe handlers.TestConnectionResponse
	decode(t, rec, &probe)
	assert.Equal(t, "connection failed", probe.Status)
	assert.Equal(t, boom.Error(), probe.Error)
}

func TestCodeSpaceExhausted(t *testing.T) {
	h := NewRouter(zerolog.Nop(), stubStore{err: store.ErrCodeSpaceExhausted}, Options{})

	rec := do(t, h, http.MethodPost, "/api/rooms", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCustomCallerResolver(t *testing.T) {
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := NewRouter(zerolog.Nop(), s, Options{
		ResolveCaller: func(*http.Request) models.Caller { return models.Caller{ID: "device-42"} },
	})

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", `{"code":"OWNED1"}`).Code)
	rec := do(t, h, http.MethodGet, "/api/rooms/OWNED1", "")
	var room models.Room
	decode(t, rec, &room)
	assert.Equal(t, "device-42", room.CreatedBy)
	assert.Equal(t, []string{"device-42"}, room.Users)
}

func TestRejectsNonJSONBody(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader("code=AB12CD"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	h := NewRouter(zerolog.Nop(), s, Options{MaxBodyBytes: 128})

	rec := do(t, h, http.MethodPost, "/api/rooms", `{"code":"`+strings.Repeat("A", 200)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	req.Header.Set("Origin", "https://sharenear.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/api/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sharenear_http_requests_total")
}

func TestRateLimitedRouter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	limiter := middleware.NewRateLimiter(client, zerolog.Nop(), middleware.RateLimiterConfig{}, map[string]middleware.RateLimit{
		"POST /api/rooms": {Requests: 1, Window: time.Minute, KeyFunc: func(r *http.Request) string {
			return "ratelimit:ip:" + middleware.RealIP(r)
		}},
	})
	h := NewRouter(zerolog.Nop(), s, Options{RateLimiter: limiter})

	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/api/rooms", "").Code)
	// Reads on other routes are unaffected.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/health", "").Code)
}

func TestNamesStoredAsSubmitted(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", `{"code":"LONG01"}`).Code)

	name := strings.Repeat("quarterly-report-", 9) + "final.txt"
	body, err := json.Marshal(map[string]any{"file_name": name, "file_size": 3, "file_type": " text/plain "})
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, "/api/rooms/LONG01/files", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/rooms/LONG01", "")
	var room models.Room
	decode(t, rec, &room)
	require.Len(t, room.Files, 1)
	assert.Equal(t, name, room.Files[0].Name)
	assert.Equal(t, " text/plain ", room.Files[0].Type)

	rec = do(t, h, http.MethodPost, "/api/rooms/LONG01/messages", `{"text":"hi","sender":"  Ada\tL. "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/rooms/LONG01/messages", "")
	var list handlers.MessagesResponse
	decode(t, rec, &list)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, "  Ada\tL. ", list.Messages[0].Sender)
}

// signalRecorder keeps the last payload handed to the store.
type signalRecorder struct {
	store.RoomStore
	payload map[string]any
}

func (s *signalRecorder) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	s.payload = payload
	return s.RoomStore.AddSignal(ctx, caller, code, payload)
}

func TestSignalKeepsLargeIntegers(t *testing.T) {
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	rs := &signalRecorder{RoomStore: s}
	h := NewRouter(zerolog.Nop(), rs, Options{})

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rooms", `{"code":"BIGNUM"}`).Code)
	rec := do(t, h, http.MethodPost, "/api/rooms/BIGNUM/signal", `{"session":12345678901234567891,"ssrc":9007199254740993}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out, err := json.Marshal(rs.payload)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"session":12345678901234567891`)
	assert.Contains(t, string(out), `"ssrc":9007199254740993`)
}

func TestTestFirebaseAlias(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/test-firebase", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.TestConnectionResponse
	decode(t, rec, &resp)
	assert.Equal(t, "connection successful", resp.Status)

	rec = do(t, NewRouter(zerolog.Nop(), nil, Options{}), http.MethodPost, "/api/test-firebase", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, "store not configured", resp.Status)
}
