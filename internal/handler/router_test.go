package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	chatService "github.com/zhouzirui/mindbff/backend/internal/service/chat"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
	journalService "github.com/zhouzirui/mindbff/backend/internal/service/journal"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
	progressService "github.com/zhouzirui/mindbff/backend/internal/service/progress"
	voiceService "github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/internal/shell"
	"github.com/zhouzirui/mindbff/backend/internal/store"
	"github.com/zhouzirui/mindbff/backend/internal/store/keystore"
)

var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func setupRouter(t *testing.T, reply string) (http.Handler, *settings.Handle) {
	t.Helper()

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"content": reply}}},
		})
	}))
	t.Cleanup(endpoint.Close)

	ks, err := keystore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}
	handle := settings.Load(ks)
	history := store.NewMemoryStore()
	personas := persona.NewMemoryStore(persona.Seed())
	completer := completion.NewOpenAI(endpoint.URL, "", 2*time.Second)

	router := NewRouter(Dependencies{
		Settings:  handle,
		Navigator: shell.NewNavigator(),
		Personas:  personas,
		Chat:      chatService.NewService(completer, personas),
		Journal:   journalService.NewAnalyzer(completer, personas, history),
		Mood:      moodService.NewRecorder(history),
		Progress:  progressService.NewBuilder(history),
		Voice:     voiceService.NewSession(voiceService.NewWebsocketDialer("ws://127.0.0.1:1", time.Second), voiceService.StaticMicrophone{Granted: true}, ""),
		Durable:   history.Durable(),
		Now:       func() time.Time { return fixedNow },
	})
	return router, handle
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, "ok")
	resp := do(t, router, http.MethodGet, "/api/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" || body["keys"] != false {
		t.Fatalf("unexpected health %v", body)
	}
}

func TestKeysRoundTrip(t *testing.T) {
	router, handle := setupRouter(t, "ok")

	resp := do(t, router, http.MethodGet, "/api/keys", nil)
	first := decode[map[string]any](t, resp)
	if first["complete"] != false {
		t.Fatalf("fresh install should prompt for keys: %v", first)
	}

	resp = do(t, router, http.MethodPut, "/api/keys", keys.Pair{ChatKey: "sk-abcdef123", VoiceKey: "xi-987654"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	saved := decode[struct {
		Keys     keys.Pair `json:"keys"`
		Complete bool      `json:"complete"`
	}](t, resp)
	if !saved.Complete || saved.Keys.ChatKey != "********f123" {
		t.Fatalf("unexpected response %+v", saved)
	}
	if handle.Keys().ChatKey != "sk-abcdef123" {
		t.Fatalf("handle not updated")
	}

	for _, body := range []any{nil, map[string]string{}} {
		if resp := do(t, router, http.MethodPut, "/api/keys", body); resp.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, resp.Code)
		}
	}
	if !handle.Keys().Complete() {
		t.Fatalf("rejected save must keep the stored keys")
	}

	if resp := do(t, router, http.MethodPut, "/api/keys", keys.Pair{}); resp.Code != http.StatusOK {
		t.Fatalf("explicit empty pair should save, got %d", resp.Code)
	}
	if handle.Keys().HasChat() || handle.Keys().HasVoice() {
		t.Fatalf("keys should be cleared")
	}
}

func TestAffirmationEndpoint(t *testing.T) {
	router, _ := setupRouter(t, "ok")

	resp := do(t, router, http.MethodGet, "/api/affirmation", nil)
	body := decode[map[string]any](t, resp)
	if body["date"] != "Sat Oct 17 2026" || body["index"] != float64(8) {
		t.Fatalf("unexpected affirmation %v", body)
	}

	resp = do(t, router, http.MethodGet, "/api/affirmation?date=2026-10-18", nil)
	body = decode[map[string]any](t, resp)
	if body["date"] != "Sun Oct 18 2026" || body["index"] != float64(11) {
		t.Fatalf("unexpected affirmation %v", body)
	}

	if resp := do(t, router, http.MethodGet, "/api/affirmation?date=yesterday", nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestScreens(t *testing.T) {
	router, _ := setupRouter(t, "ok")

	resp := do(t, router, http.MethodGet, "/api/screens/journal", nil)
	body := decode[map[string]any](t, resp)
	if body["active"] != "journal" {
		t.Fatalf("unexpected active %v", body)
	}

	resp = do(t, router, http.MethodGet, "/api/screens/nowhere", nil)
	body = decode[map[string]any](t, resp)
	if body["active"] != "talk" || body["fallback"] != true {
		t.Fatalf("unknown screen should fall back to talk: %v", body)
	}
}

func TestJournalFlow(t *testing.T) {
	router, handle := setupRouter(t, "You sound grateful.")

	resp := do(t, router, http.MethodPost, "/api/journal/analyze", map[string]string{"text": "Thanks to my friends"})
	if resp.Code != http.StatusPreconditionFailed {
		t.Fatalf("missing key should be 412, got %d", resp.Code)
	}

	if err := handle.Save(keys.Pair{ChatKey: "sk-1"}); err != nil {
		t.Fatalf("save keys: %v", err)
	}

	if resp := do(t, router, http.MethodPost, "/api/journal/analyze", map[string]string{"text": "  "}); resp.Code != http.StatusBadRequest {
		t.Fatalf("blank entry should be 400, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPost, "/api/journal/analyze", map[string]string{"text": "Thanks to my friends"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body := decode[map[string]string](t, resp); body["summary"] != "You sound grateful." {
		t.Fatalf("unexpected summary %v", body)
	}

	resp = do(t, router, http.MethodPost, "/api/journal/entries", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	saved := decode[map[string]any](t, resp)
	if saved["message"] != "Kept for this session only" || saved["durable"] != false {
		t.Fatalf("unexpected save response %v", saved)
	}

	resp = do(t, router, http.MethodGet, "/api/journal/entries?days=7", nil)
	list := decode[map[string][]map[string]any](t, resp)
	if len(list["entries"]) != 1 || list["entries"][0]["summary"] != "You sound grateful." {
		t.Fatalf("unexpected entries %v", list)
	}
}

func TestMoodFlow(t *testing.T) {
	router, _ := setupRouter(t, "ok")

	resp := do(t, router, http.MethodGet, "/api/mood/levels", nil)
	levels := decode[map[string][]map[string]any](t, resp)["levels"]
	if len(levels) != 5 || levels[0]["label"] != "Sad" || levels[4]["barHeight"] != float64(100) {
		t.Fatalf("unexpected levels %v", levels)
	}

	if resp := do(t, router, http.MethodPost, "/api/mood", map[string]int{"level": 7}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid level, got %d", resp.Code)
	}
	if resp := do(t, router, http.MethodPost, "/api/mood", map[string]int{"level": 3}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/mood/week", nil)
	week := decode[struct {
		Days []struct {
			Day       string `json:"day"`
			Level     *int   `json:"level"`
			BarHeight int    `json:"barHeight"`
		} `json:"days"`
	}](t, resp)
	if len(week.Days) != 7 || week.Days[5].Level == nil || *week.Days[5].Level != 3 || week.Days[5].BarHeight != 80 {
		t.Fatalf("unexpected week %+v", week)
	}

	resp = do(t, router, http.MethodGet, "/api/mood/week?sample=true", nil)
	sample := decode[map[string]any](t, resp)
	if sample["sample"] != true {
		t.Fatalf("expected sample flag")
	}
}

func TestProgressEmpty(t *testing.T) {
	router, _ := setupRouter(t, "ok")
	resp := do(t, router, http.MethodGet, "/api/progress", nil)
	body := decode[map[string]any](t, resp)
	if body["headline"] != progressService.Encouragement {
		t.Fatalf("unexpected progress %v", body)
	}
}

func TestVoiceToggleWithoutKey(t *testing.T) {
	router, _ := setupRouter(t, "ok")
	resp := do(t, router, http.MethodPost, "/api/voice/toggle", nil)
	if resp.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d", resp.Code)
	}
}
