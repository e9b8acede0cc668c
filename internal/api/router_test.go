package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roteiro/internal/api"
	"roteiro/internal/api/controllers"
	"roteiro/internal/config"
	"roteiro/internal/infra/infratest"
	"roteiro/internal/models/response_models"
	"roteiro/internal/repositories"
	"roteiro/internal/serializers"
	"roteiro/internal/services"
	mem "roteiro/pkg/memcache"
	"roteiro/pkg/middleware"
	"roteiro/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, requireCSRF bool) *gin.Engine {
	t.Helper()
	db := infratest.NewDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		AuthRateLimit:  1000,
		Session: config.SessionConfig{
			Secret:           []byte("test-secret"),
			TTL:              time.Hour,
			CookieName:       "sessionid",
			RequireCSRFToken: requireCSRF,
		},
	}
	sessions := mem.NewRevokedSessions()

	accountService := services.NewAccountService(repositories.NewAccountRepository(db), sessions, cfg.Session, log)
	tripService := services.NewTripService(repositories.NewTripRepository(db), serializers.NewTripSerializer(), log)

	return api.NewRouter(cfg, log, sessions,
		controllers.NewAccountController(accountService, cfg),
		controllers.NewTripController(tripService))
}

type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies []*http.Cookie
	headers map[string]string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c *client) login(email, password string) *httptest.ResponseRecorder {
	c.t.Helper()
	w := c.do(http.MethodPost, "/login/", map[string]string{"email": email, "password": password})
	if w.Code == http.StatusOK {
		c.cookies = w.Result().Cookies()
	}
	return w
}

func signedIn(t *testing.T, r *gin.Engine, email string) *client {
	t.Helper()
	c := &client{t: t, r: r}
	w := c.do(http.MethodPost, "/register/", map[string]string{"name": "Ana", "email": email, "password": "segredo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := c.login(email, "segredo"); w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return c
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	r := newServer(t, false)
	c := &client{t: t, r: r}

	w := c.do(http.MethodPost, "/register/", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "segredo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("register must not start a session")
	}

	w = c.do(http.MethodPost, "/register", map[string]string{"name": "Bia", "email": "ana@x.com", "password": "outra"})
	if w.Code != http.StatusBadRequest || decode[utils.ErrorResponse](t, w).Code != "duplicate_account" {
		t.Fatalf("expected duplicate_account, got %d: %s", w.Code, w.Body.String())
	}

	w = c.do(http.MethodPost, "/register/", map[string]string{"name": "", "email": "b@x.com", "password": "x"})
	if w.Code != http.StatusBadRequest || decode[utils.ErrorResponse](t, w).Code != "missing_field" {
		t.Fatalf("expected missing_field, got %d: %s", w.Code, w.Body.String())
	}

	w = c.login("ana@x.com", "errada")
	if w.Code != http.StatusBadRequest || decode[utils.ErrorResponse](t, w).Code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set cookies")
	}

	w = c.login("ana@x.com", "segredo")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[response_models.AccountLoginResponse](t, w)
	if body.User.Username != "ana@x.com" || body.User.Name != "Ana" || body.Message == "" {
		t.Fatalf("unexpected login body: %+v", body)
	}

	var session *http.Cookie
	for _, ck := range c.cookies {
		if ck.Name == "sessionid" {
			session = ck
		}
	}
	if session == nil || !session.HttpOnly {
		t.Fatalf("expected an HttpOnly session cookie, got %+v", c.cookies)
	}

	w = c.do(http.MethodGet, "/me/", nil)
	if w.Code != http.StatusOK || decode[response_models.AccountResponse](t, w).ID != body.User.ID {
		t.Fatalf("me: got %d: %s", w.Code, w.Body.String())
	}
}

func TestTripsRequireSession(t *testing.T) {
	r := newServer(t, false)
	c := &client{t: t, r: r}

	for _, path := range []string{"/trips/", "/trips", "/me/"} {
		w := c.do(http.MethodGet, path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
		if decode[utils.ErrorResponse](t, w).Code != "not_authenticated" {
			t.Fatalf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}

func TestCreateTripOrdersItems(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	w := c.do(http.MethodPost, "/trips/", map[string]any{
		"title": "Rio",
		"items": []map[string]any{
			{"day_key": "Dia 2", "name": "Praia", "time": "08:00"},
			{"day_key": "Dia 1", "name": "Museu", "time": "10:00", "lat": -22.9, "lng": -43.2},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[response_models.TripResponse](t, w)
	if created.Title != "Rio" || len(created.Items) != 2 {
		t.Fatalf("unexpected trip: %+v", created)
	}

	w = c.do(http.MethodGet, "/trips/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decode[[]response_models.TripResponse](t, w)
	if len(list) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(list))
	}
	items := list[0].Items
	if items[0].Name != "Museu" || items[1].Name != "Praia" {
		t.Fatalf("expected Museu before Praia, got %s, %s", items[0].Name, items[1].Name)
	}
	if items[1].Lat != nil || items[1].WeatherText != nil {
		t.Fatalf("absent optional fields must be null: %+v", items[1])
	}

	var raw []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	item := raw[0]["items"].([]any)[1].(map[string]any)
	if v, ok := item["weather_icon"]; !ok || v != nil {
		t.Fatalf("expected weather_icon: null, got %v (present %v)", v, ok)
	}
}

func TestCreateTripInvalidItemIsAtomic(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	w := c.do(http.MethodPost, "/trips/", map[string]any{
		"title": "X",
		"items": []map[string]any{
			{"day_key": "Dia 1", "name": "a", "time": "1"},
			{"day_key": "", "name": "b", "time": "2"},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[utils.ErrorResponse](t, w)
	if body.Code != "invalid" || len(body.Fields) == 0 || body.Fields[0].Field != "items[1].day_key" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	list := decode[[]response_models.TripResponse](t, c.do(http.MethodGet, "/trips/", nil))
	if len(list) != 0 {
		t.Fatalf("expected no trips after failed create, got %d", len(list))
	}
}

func TestCreateTripRejectsBadBodies(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	cases := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"title":`, "parse_error"},
		{"wrong type", `{"title": 5}`, "invalid"},
		{"read only id", `{"id": "x", "title": "Rio"}`, "invalid"},
		{"blank title", `{"title": "   "}`, "invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.t = t
			w := c.do(http.MethodPost, "/trips/", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := decode[utils.ErrorResponse](t, w).Code; got != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, got)
			}
		})
	}
}

func TestCreateTripWrongTypeNamesItemIndex(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	w := c.do(http.MethodPost, "/trips/", `{"items":[
		{"day_key":"D","name":"n","time":"t"},
		{"day_key":5,"name":"n","time":"t"},
		{"day_key":"D","name":"","time":"t"}
	]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[utils.ErrorResponse](t, w)
	fields := map[string]bool{}
	for _, f := range body.Fields {
		fields[f.Field] = true
	}
	if !fields["items[1].day_key"] || !fields["items[2].name"] || len(body.Fields) != 2 {
		t.Fatalf("expected items[1].day_key and items[2].name, got %+v", body.Fields)
	}

	if list := decode[[]response_models.TripResponse](t, c.do(http.MethodGet, "/trips/", nil)); len(list) != 0 {
		t.Fatalf("expected no trips, got %d", len(list))
	}
}

func TestPatchTripRejectsNullTitle(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")
	created := decode[response_models.TripResponse](t, c.do(http.MethodPost, "/trips/", map[string]any{"title": "Rio"}))

	w := c.do(http.MethodPatch, "/trips/"+created.ID.String()+"/", `{"title": null}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode[utils.ErrorResponse](t, w); len(body.Fields) != 1 || body.Fields[0].Field != "title" {
		t.Fatalf("expected title error, got %+v", body.Fields)
	}

	got := decode[response_models.TripResponse](t, c.do(http.MethodGet, "/trips/"+created.ID.String()+"/", nil))
	if got.Title != "Rio" {
		t.Fatalf("title changed to %q", got.Title)
	}
}

func TestForeignTripsAreNotFound(t *testing.T) {
	r := newServer(t, false)
	ana := signedIn(t, r, "ana@x.com")
	bia := signedIn(t, r, "bia@x.com")

	created := decode[response_models.TripResponse](t, ana.do(http.MethodPost, "/trips/", map[string]any{
		"title": "Rio",
		"items": []map[string]any{{"day_key": "Dia 1", "name": "Museu", "time": "10:00"}},
	}))
	tripPath := "/trips/" + created.ID.String() + "/"
	itemPath := tripPath + "items/" + created.Items[0].ID.String() + "/"

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, tripPath, nil},
		{http.MethodPatch, tripPath, map[string]any{"title": "Meu"}},
		{http.MethodDelete, tripPath, nil},
		{http.MethodPost, tripPath + "items/", map[string]any{"day_key": "Dia 1", "name": "x", "time": "1"}},
		{http.MethodPatch, itemPath, map[string]any{"name": "x"}},
		{http.MethodDelete, itemPath, nil},
		{http.MethodGet, "/trips/not-a-uuid/", nil},
	}
	for _, rq := range requests {
		w := bia.do(rq.method, rq.path, rq.body)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d: %s", rq.method, rq.path, w.Code, w.Body.String())
		}
	}

	if list := decode[[]response_models.TripResponse](t, bia.do(http.MethodGet, "/trips/", nil)); len(list) != 0 {
		t.Fatalf("bia must not see ana's trips")
	}

	got := decode[response_models.TripResponse](t, ana.do(http.MethodGet, tripPath, nil))
	if got.Title != "Rio" || len(got.Items) != 1 {
		t.Fatalf("ana's trip changed: %+v", got)
	}
}

func TestUpdateAndDeleteTrip(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	created := decode[response_models.TripResponse](t, c.do(http.MethodPost, "/trips", map[string]any{
		"items": []map[string]any{{"day_key": "Dia 1", "name": "Museu", "time": "10:00"}},
	}))
	if created.Title != "Minha Viagem" {
		t.Fatalf("expected default title, got %q", created.Title)
	}
	tripPath := "/trips/" + created.ID.String()

	w := c.do(http.MethodPut, tripPath, map[string]any{"title": "Lisboa"})
	if w.Code != http.StatusOK || decode[response_models.TripResponse](t, w).Title != "Lisboa" {
		t.Fatalf("PUT: got %d: %s", w.Code, w.Body.String())
	}

	w = c.do(http.MethodPatch, tripPath+"/", map[string]any{"items": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PATCH with items: expected 400, got %d", w.Code)
	}

	w = c.do(http.MethodPost, tripPath+"/items/", map[string]any{"day_key": "Dia 0", "name": "Chegada", "time": "07:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := decode[response_models.TripItemResponse](t, w)

	w = c.do(http.MethodPatch, tripPath+"/items/"+item.ID.String()+"/", map[string]any{"weather_text": "Sol"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch item: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[response_models.TripItemResponse](t, w); got.WeatherText == nil || *got.WeatherText != "Sol" {
		t.Fatalf("expected weather_text Sol, got %+v", got)
	}

	got := decode[response_models.TripResponse](t, c.do(http.MethodGet, tripPath+"/", nil))
	if len(got.Items) != 2 || got.Items[0].Name != "Chegada" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	if w := c.do(http.MethodDelete, tripPath+"/", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if w := c.do(http.MethodGet, tripPath+"/", nil); w.Code != http.StatusNotFound {
		t.Fatalf("after delete: expected 404, got %d", w.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")

	if w := c.do(http.MethodPost, "/logout/", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := c.do(http.MethodGet, "/trips/", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", w.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	r := newServer(t, false)
	c := signedIn(t, r, "ana@x.com")
	c.do(http.MethodPost, "/trips/", map[string]any{"title": "Rio"})

	if w := c.do(http.MethodDelete, "/me/", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete me: expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w := c.do(http.MethodGet, "/me/", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("after delete: expected 401, got %d", w.Code)
	}
	if w := c.login("ana@x.com", "segredo"); w.Code != http.StatusBadRequest {
		t.Fatalf("login after delete: expected 400, got %d", w.Code)
	}
}

func TestCSRFFlag(t *testing.T) {
	r := newServer(t, true)
	c := signedIn(t, r, "ana@x.com")

	if w := c.do(http.MethodGet, "/trips/", nil); w.Code != http.StatusOK {
		t.Fatalf("safe method: expected 200, got %d", w.Code)
	}

	w := c.do(http.MethodPost, "/trips/", map[string]any{"title": "Rio"})
	if w.Code != http.StatusForbidden || decode[utils.ErrorResponse](t, w).Code != "csrf_failed" {
		t.Fatalf("without token: expected 403 csrf_failed, got %d: %s", w.Code, w.Body.String())
	}

	var token string
	for _, ck := range c.cookies {
		if ck.Name == middleware.CSRFCookieName {
			token = ck.Value
		}
	}
	if token == "" {
		t.Fatalf("login must issue a csrf cookie")
	}
	c.headers = map[string]string{middleware.CSRFHeaderName: token}
	if w := c.do(http.MethodPost, "/trips/", map[string]any{"title": "Rio"}); w.Code != http.StatusCreated {
		t.Fatalf("with token: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthAndTraceID(t *testing.T) {
	r := newServer(t, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(middleware.TraceIDHeader) == "" {
		t.Fatalf("expected %s header", middleware.TraceIDHeader)
	}
}
