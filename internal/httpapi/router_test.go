package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hrhelper/recruiter-service/internal/auth"
	"hrhelper/recruiter-service/internal/httpapi"
	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/recruiting"
	"hrhelper/recruiter-service/internal/store"
	"hrhelper/recruiter-service/internal/store/memory"
)

type env struct {
	router *gin.Engine
	token  string
	userID string
}

func newEnv(t *testing.T, st store.Store) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	id := auth.NewService(st, auth.NewMemorySessionStore(), "test-secret", log, auth.WithBcryptCost(bcrypt.MinCost))
	ctx := context.Background()
	u, err := id.CreateUser(ctx, "hr@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	res, err := id.SignIn(ctx, "hr@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	svc := recruiting.NewService(st, nil, log)
	h := httpapi.NewHandler(svc, id, log, httpapi.Options{Version: "test"})
	return &env{router: h.Router(), token: res.AccessToken, userID: u.ID.String()}
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (e *env) createOffer(t *testing.T, keywords ...string) model.JobOffer {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"user_id":  e.userID,
		"title":    "Frontend Developer",
		"keywords": keywords,
	})
	w := e.do(t, http.MethodPost, "/api/job_offers", string(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create offer: %d %s", w.Code, w.Body.String())
	}
	return decode[model.JobOffer](t, w)
}

// ── /api/job_offers ────────────────────────────────────────────────────────

func TestCreateJobOffer_Created(t *testing.T) {
	e := newEnv(t, memory.New())
	body := fmt.Sprintf(`{"user_id":%q,"title":"Dev","description":"Remote","keywords":["Go","SQL"]}`, e.userID)

	w := e.do(t, http.MethodPost, "/api/job_offers", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[map[string]any](t, w)
	for _, k := range []string{"id", "user_id", "title", "description", "keywords", "created_at"} {
		if _, ok := got[k]; !ok {
			t.Errorf("response missing %q: %v", k, got)
		}
	}
	if got["title"] != "Dev" || got["user_id"] != e.userID {
		t.Errorf("response = %v", got)
	}
}

func TestCreateJobOffer_MissingFields(t *testing.T) {
	e := newEnv(t, memory.New())
	for _, body := range []string{
		`{"title":"Dev"}`,
		fmt.Sprintf(`{"user_id":%q}`, e.userID),
		fmt.Sprintf(`{"user_id":%q,"title":""}`, e.userID),
	} {
		w := e.do(t, http.MethodPost, "/api/job_offers", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
			continue
		}
		if msg := decode[map[string]string](t, w)["error"]; !strings.Contains(msg, "required") {
			t.Errorf("body %s: error = %q", body, msg)
		}
	}
}

func TestCreateJobOffer_MalformedJSON(t *testing.T) {
	e := newEnv(t, memory.New())
	w := e.do(t, http.MethodPost, "/api/job_offers", `{"user_id": "x", "title":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decode[map[string]string](t, w)["error"]; got != "Invalid JSON format." {
		t.Errorf("error = %q", got)
	}
}

func TestCreateJobOffer_ForeignUserID(t *testing.T) {
	e := newEnv(t, memory.New())
	w := e.do(t, http.MethodPost, "/api/job_offers",
		`{"user_id":"9b2f7c1e-0000-4000-8000-000000000000","title":"Dev"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

type failingStore struct{ store.Store }

func (failingStore) CreateJobOffer(context.Context, *model.JobOffer) (*model.JobOffer, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) ListJobOffers(context.Context, string) ([]model.JobOffer, error) {
	return nil, errors.New("connection reset")
}

func TestJobOffers_BackendFailure(t *testing.T) {
	e := newEnv(t, failingStore{memory.New()})

	w := e.do(t, http.MethodPost, "/api/job_offers", fmt.Sprintf(`{"user_id":%q,"title":"Dev"}`, e.userID))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("POST status = %d, want 500", w.Code)
	}
	if msg := decode[map[string]string](t, w)["error"]; !strings.HasPrefix(msg, "Server error while creating job offer") {
		t.Errorf("POST error = %q", msg)
	}

	w = e.do(t, http.MethodGet, "/api/job_offers", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("GET status = %d, want 500", w.Code)
	}
}

func TestListJobOffers(t *testing.T) {
	e := newEnv(t, memory.New())

	w := e.do(t, http.MethodGet, "/api/job_offers", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list = %d %s, want 200 []", w.Code, w.Body.String())
	}

	first := e.createOffer(t, "Go")
	second := e.createOffer(t, "SQL")
	list := decode[[]model.JobOffer](t, e.do(t, http.MethodGet, "/api/job_offers", ""))
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list = %+v, want newest first", list)
	}

	// The bare path serves the same collection.
	bare := decode[[]model.JobOffer](t, e.do(t, http.MethodGet, "/job_offers", ""))
	if len(bare) != 2 {
		t.Errorf("/job_offers returned %d offers", len(bare))
	}
}

func TestJobOffers_RequireSession(t *testing.T) {
	e := newEnv(t, memory.New())
	e.token = ""
	w := e.do(t, http.MethodGet, "/api/job_offers", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestGetUpdateDeleteJobOffer(t *testing.T) {
	e := newEnv(t, memory.New())
	offer := e.createOffer(t, "Go")
	path := fmt.Sprintf("/api/job_offers/%d", offer.ID)

	got := decode[model.JobOffer](t, e.do(t, http.MethodGet, path, ""))
	if got.ID != offer.ID || got.Title != offer.Title {
		t.Errorf("GET = %+v", got)
	}

	w := e.do(t, http.MethodPatch, path, `{"title":"Lead"}`)
	if w.Code != http.StatusOK || decode[model.JobOffer](t, w).Title != "Lead" {
		t.Errorf("PATCH = %d %s", w.Code, w.Body.String())
	}

	if w := e.do(t, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/job_offers/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("GET bad id status = %d, want 400", w.Code)
	}
}

func TestJobOffer_RoundTrip(t *testing.T) {
	e := newEnv(t, memory.New())
	body := fmt.Sprintf(`{"user_id":%q,"title":"Backend Developer","description":"Remote, full time","keywords":["Go","SQL","Docker"]}`, e.userID)

	w := e.do(t, http.MethodPost, "/api/job_offers", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST = %d %s", w.Code, w.Body.String())
	}
	created := decode[model.JobOffer](t, w)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/job_offers/%d", created.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET = %d %s", w.Code, w.Body.String())
	}
	got := decode[model.JobOffer](t, w)
	if got.Title != "Backend Developer" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Description == nil || *got.Description != "Remote, full time" {
		t.Errorf("description = %v", got.Description)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"Go", "SQL", "Docker"}) {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if got.UserID != e.userID {
		t.Errorf("user_id = %q, want %q", got.UserID, e.userID)
	}
}

func TestJobOffer_OmittedFieldsAreNull(t *testing.T) {
	e := newEnv(t, memory.New())
	w := e.do(t, http.MethodPost, "/api/job_offers", fmt.Sprintf(`{"user_id":%q,"title":"Dev"}`, e.userID))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST = %d %s", w.Code, w.Body.String())
	}
	created := decode[model.JobOffer](t, w)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/job_offers/%d", created.ID), "")
	raw := decode[map[string]json.RawMessage](t, w)
	for _, k := range []string{"description", "keywords"} {
		v, ok := raw[k]
		if !ok {
			t.Errorf("response missing %q", k)
			continue
		}
		if string(v) != "null" {
			t.Errorf("%s = %s, want null", k, v)
		}
	}
}

// ── CVs ────────────────────────────────────────────────────────────────────

func TestCVLifecycle(t *testing.T) {
	e := newEnv(t, memory.New())
	offer := e.createOffer(t, "React", "TypeScript", "Node.js")
	base := fmt.Sprintf("/api/job_offers/%d", offer.ID)

	w := e.do(t, http.MethodPost, base+"/cvs", `{"first_name":"Anna","last_name":"Nowak","keywords":["react","typescript"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create cv: %d %s", w.Code, w.Body.String())
	}
	cv := decode[model.CV](t, w)
	if *cv.MatchPercentage != 67 || *cv.MatchedKeywordsCount != 2 || cv.Status != model.StatusNew {
		t.Errorf("cv = %+v", cv)
	}

	cvPath := fmt.Sprintf("%s/cvs/%d", base, cv.ID)
	if w := e.do(t, http.MethodPatch, cvPath, `{"status":"accepted"}`); w.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodPatch, cvPath, `{"status":"new"}`); w.Code != http.StatusBadRequest {
		t.Errorf("reset to new status = %d, want 400", w.Code)
	}
	if w := e.do(t, http.MethodPatch, cvPath, `{"status":"maybe"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", w.Code)
	}
	if w := e.do(t, http.MethodPatch, base+"/cvs/999", `{"status":"rejected"}`); w.Code != http.StatusNotFound {
		t.Errorf("missing cv status = %d, want 404", w.Code)
	}

	st := decode[model.JobOfferStats](t, e.do(t, http.MethodGet, base+"/stats", ""))
	if st != (model.JobOfferStats{TotalCVs: 1, Accepted: 1}) {
		t.Errorf("stats = %+v", st)
	}

	accepted := decode[[]model.CV](t, e.do(t, http.MethodGet, base+"/cvs?status=accepted", ""))
	if len(accepted) != 1 {
		t.Errorf("accepted = %+v", accepted)
	}
	if w := e.do(t, http.MethodGet, base+"/cvs?status=bogus", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want 400", w.Code)
	}
}

func TestReplaceKeywords_Rescores(t *testing.T) {
	e := newEnv(t, memory.New())
	offer := e.createOffer(t, "React")
	base := fmt.Sprintf("/api/job_offers/%d", offer.ID)
	e.do(t, http.MethodPost, base+"/cvs", `{"first_name":"Jan","last_name":"Kowalski","keywords":["Go"]}`)

	w := e.do(t, http.MethodPut, base+"/keywords", `{"keywords":["Go","SQL"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT keywords: %d %s", w.Code, w.Body.String())
	}
	cvs := decode[[]model.CV](t, e.do(t, http.MethodGet, base+"/cvs", ""))
	if len(cvs) != 1 || *cvs[0].MatchPercentage != 50 {
		t.Errorf("cvs after rescore = %+v", cvs)
	}
}

func TestCreateCV_TooManyKeywords(t *testing.T) {
	e := newEnv(t, memory.New())
	offer := e.createOffer(t, "Go")
	body := `{"first_name":"Jan","last_name":"Kowalski","keywords":["a","b","c","d","e","f","g","h","i","j","k"]}`
	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/job_offers/%d/cvs", offer.ID), body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ── Auth and pages ─────────────────────────────────────────────────────────

func TestAuthFlow(t *testing.T) {
	e := newEnv(t, memory.New())
	e.token = ""

	w := e.do(t, http.MethodPost, "/api/auth/sign-up", `{"email":"new@example.com","password":"secret1","confirm_password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up: %d %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("sign-up response leaks password data: %s", w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/auth/sign-up", `{"email":"x@example.com","password":"secret1","confirm_password":"other12"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("mismatched sign-up status = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodPost, "/api/auth/sign-in", `{"email":"new@example.com","password":"wrong12"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad sign-in status = %d, want 401", w.Code)
	}

	w = e.do(t, http.MethodPost, "/api/auth/sign-in", `{"email":"new@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), auth.SessionCookie+"=") {
		t.Errorf("sign-in did not set the session cookie")
	}
	e.token = decode[auth.SignInResult](t, w).AccessToken

	me := decode[model.User](t, e.do(t, http.MethodGet, "/api/auth/me", ""))
	if me.Email != "new@example.com" {
		t.Errorf("me = %+v", me)
	}

	if w := e.do(t, http.MethodPost, "/api/auth/sign-out", ""); w.Code != http.StatusOK {
		t.Fatalf("sign-out: %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/job_offers", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("after sign-out status = %d, want 401", w.Code)
	}
}

func TestPages(t *testing.T) {
	e := newEnv(t, memory.New())
	offer := e.createOffer(t, "Go")

	w := e.do(t, http.MethodGet, "/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var dash struct {
		Offers []recruiting.OfferSummary `json:"offers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatal(err)
	}
	if len(dash.Offers) != 1 || dash.Offers[0].ID != offer.ID {
		t.Errorf("dashboard offers = %+v", dash.Offers)
	}

	details := decode[recruiting.OfferDetails](t, e.do(t, http.MethodGet, fmt.Sprintf("/offers/%d", offer.ID), ""))
	if details.Offer.ID != offer.ID || details.CVs == nil {
		t.Errorf("offer page = %+v", details)
	}

	if w := e.do(t, http.MethodGet, "/login", ""); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		t.Errorf("signed-in /login = %d %q", w.Code, w.Header().Get("Location"))
	}

	e.token = ""
	if w := e.do(t, http.MethodGet, "/dashboard", ""); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("anonymous /dashboard = %d %q", w.Code, w.Header().Get("Location"))
	}
	if w := e.do(t, http.MethodGet, "/login", ""); w.Code != http.StatusOK {
		t.Errorf("anonymous /login = %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("/health = %d", w.Code)
	}
}
