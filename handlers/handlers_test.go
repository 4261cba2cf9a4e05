package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"medibook/config"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/models"
	"medibook/routes"
	"medibook/services/chat"
	"medibook/services/extraction"
	"medibook/services/rag"
	"medibook/services/session"

	"github.com/gin-gonic/gin"
)

type stubRetriever struct {
	err error
}

func (s *stubRetriever) Query(ctx context.Context, query string, topK int) ([]models.Passage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Passage{{Text: "The clinic is open weekdays 9-5.", Source: "hours.pdf"}}, nil
}

type stubGenerator struct {
	err error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Happy to help.", nil
}

func setupRouter(t *testing.T, ret rag.Retriever, gen rag.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig.SessionCookieName = "medibook_session"
	config.AppConfig.SessionTTLMinutes = 30
	config.AppConfig.LogLevel = "error"

	mgr := session.NewManager(session.NewMemoryStore(time.Hour), session.Options{
		RequiredFields: []string{
			models.FieldName,
			models.FieldPhone,
			models.FieldPreferredDate,
			models.FieldPreferredTime,
			models.FieldReason,
		},
	})
	svc := chat.NewService(ret, gen, extraction.New(), mgr, 3)

	r := gin.New()
	r.Use(middleware.SessionCookieMiddleware())
	r.LoadHTMLGlob("../templates/*.html")
	routes.RegisterRoutes(r, &routes.HandlerBundle{
		Chat:    handlers.NewChatHandler(svc),
		Booking: handlers.NewBookingHandler(mgr),
		Session: handlers.NewSessionHandler(mgr),
	})
	return r
}

// testClient carries the session cookie across requests, like a browser.
type testClient struct {
	r      *gin.Engine
	cookie *http.Cookie
}

func (tc *testClient) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}

	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == config.AppConfig.SessionCookieName && ck.Value != "" {
			tc.cookie = ck
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("bad JSON body %q: %v", w.Body.String(), err)
	}
}

func TestHealthRoute(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}
	w := tc.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestChatEndpointMintsSessionCookie(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}

	w := tc.do(t, http.MethodPost, "/get", url.Values{"msg": {"what are your hours?"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if tc.cookie == nil {
		t.Fatal("first request must set the session cookie")
	}

	var resp models.ChatResponse
	decode(t, w, &resp)
	if resp.Reply == "" || resp.Degraded {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}

	w := tc.do(t, http.MethodPost, "/get", url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSessionEndpointFreshSession(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}

	w := tc.do(t, http.MethodGet, "/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var snap models.SessionSnapshot
	decode(t, w, &snap)
	if snap.State != models.StateCollecting {
		t.Fatalf("fresh session state = %s", snap.State)
	}
	if len(snap.Missing) != 5 {
		t.Fatalf("fresh session must need every field, got %v", snap.Missing)
	}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}

	// Confirming before anything was collected is a reported no-op.
	w := tc.do(t, http.MethodPost, "/book/confirm", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("premature confirm: status = %d", w.Code)
	}
	var confirm struct {
		Confirmed bool     `json:"confirmed"`
		Missing   []string `json:"missing"`
	}
	decode(t, w, &confirm)
	if confirm.Confirmed || len(confirm.Missing) != 5 {
		t.Fatalf("premature confirm body: %+v", confirm)
	}

	for _, msg := range []string{
		"I'd like to book an appointment, my name is Alex",
		"you can call me on 555-123-4567",
		"Tuesday at 3pm for a checkup",
	} {
		w = tc.do(t, http.MethodPost, "/get", url.Values{"msg": {msg}})
		if w.Code != http.StatusOK {
			t.Fatalf("chat turn %q: status = %d body = %s", msg, w.Code, w.Body.String())
		}
	}

	var resp models.ChatResponse
	decode(t, w, &resp)
	if !resp.BookingReady || resp.BookingURL != "/book" {
		t.Fatalf("final turn should surface the booking link, got %+v", resp)
	}

	// The form renders with the collected values.
	w = tc.do(t, http.MethodGet, "/book", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /book: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Alex") {
		t.Fatalf("booking form not pre-filled:\n%s", w.Body.String())
	}

	w = tc.do(t, http.MethodPost, "/book/confirm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d body = %s", w.Code, w.Body.String())
	}
	var confirmed struct {
		Confirmed bool                 `json:"confirmed"`
		Record    models.BookingRecord `json:"record"`
	}
	decode(t, w, &confirmed)
	if !confirmed.Confirmed || confirmed.Record.Name != "Alex" || confirmed.Record.Phone != "555-123-4567" {
		t.Fatalf("confirm body: %+v", confirmed)
	}

	// Confirming again is idempotent.
	w = tc.do(t, http.MethodPost, "/book/confirm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat confirm: status = %d", w.Code)
	}
}

func TestLogoutResetsSession(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{})}

	tc.do(t, http.MethodPost, "/get", url.Values{"msg": {"my name is Alex"}})

	w := tc.do(t, http.MethodPost, "/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", w.Code)
	}
	expired := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == config.AppConfig.SessionCookieName && ck.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatal("logout must expire the session cookie")
	}

	w = tc.do(t, http.MethodGet, "/session", nil)
	var snap models.SessionSnapshot
	decode(t, w, &snap)
	if snap.State != models.StateCollecting || snap.Record.Name != "" {
		t.Fatalf("session not reset: %+v", snap)
	}
}

func TestDegradedChatLeavesSessionUntouched(t *testing.T) {
	tc := &testClient{r: setupRouter(t, &stubRetriever{}, &stubGenerator{err: errors.New("model overloaded")})}

	w := tc.do(t, http.MethodPost, "/get", url.Values{"msg": {"my name is Alex"}})
	if w.Code != http.StatusOK {
		t.Fatalf("degraded turn: status = %d", w.Code)
	}
	var resp models.ChatResponse
	decode(t, w, &resp)
	if !resp.Degraded {
		t.Fatalf("expected degraded response, got %+v", resp)
	}

	w = tc.do(t, http.MethodGet, "/session", nil)
	var snap models.SessionSnapshot
	decode(t, w, &snap)
	if snap.TurnCount != 0 || snap.Record.Name != "" {
		t.Fatalf("degraded turn mutated the session: %+v", snap)
	}
}
