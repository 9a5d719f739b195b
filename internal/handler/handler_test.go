package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/services"
	"terraai/internal/handler/sse"
	"terraai/internal/httputil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func asUser(r *http.Request, id string) *http.Request {
	c := &models.Claims{Role: models.ClaimRoleUser}
	c.Subject = id
	return httputil.WithClaims(r, c)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"quota", &domain.QuotaExceededError{Plan: "FREE", Limit: 5}, http.StatusForbidden, "quota_exceeded"},
		{"wrapped quota", fmt.Errorf("save: %w", &domain.QuotaExceededError{Plan: "FREE", Limit: 5}), http.StatusForbidden, "quota_exceeded"},
		{"upgrade", fmt.Errorf("%w: paid plan", domain.ErrUpgradeRequired), http.StatusForbidden, "upgrade_required"},
		{"validation", fmt.Errorf("%w: title", domain.ErrValidation), http.StatusBadRequest, ""},
		{"not found", domain.ErrNotFound, http.StatusNotFound, ""},
		{"conflict", &domain.ConflictError{Message: "busy"}, http.StatusConflict, ""},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, ""},
		{"unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable, ""},
		{"generation", &domain.GenerationError{Cause: errors.New("boom")}, http.StatusBadGateway, ""},
		{"breaker open", &domain.GenerationError{Cause: fmt.Errorf("%w: open", domain.ErrServiceUnavailable)}, http.StatusServiceUnavailable, ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			body := decodeBody(t, rec)
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %q", body["code"], tt.wantCode)
			}
			if tt.wantCode == "" && body["code"] != nil {
				t.Errorf("unexpected code %v", body["code"])
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "disk") {
				t.Error("internal error detail leaked")
			}
		})
	}
}

// --- projects ---

type fakeProjects struct {
	services.ProjectService
	created  *services.CreateProjectRequest
	err      error
	project  *models.Project
	favorite *bool
}

func (f *fakeProjects) CreateProject(_ context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Project{ID: "p1", UserID: req.UserID, Title: req.Title, Files: req.Files}, nil
}

func (f *fakeProjects) GetProject(_ context.Context, id, userID string) (*models.Project, error) {
	if f.project == nil || f.project.ID != id || f.project.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProjects) SetFavorite(_ context.Context, id, userID string, fav bool) (*models.Project, error) {
	f.favorite = &fav
	return &models.Project{ID: id, UserID: userID, IsFavorite: fav}, nil
}

func projectMux(h *ProjectHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects", h.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}/favorite", h.SetFavorite)
	mux.HandleFunc("GET /api/projects/{id}/export", h.ExportProject)
	return mux
}

func TestProjectHandler_Create(t *testing.T) {
	fake := &fakeProjects{}
	mux := projectMux(NewProjectHandler(fake, testLogger()))

	body := `{"title":"VPC","files":{"main.tf":"resource"}}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if fake.created.UserID != "u1" || fake.created.Files["main.tf"] != "resource" {
		t.Errorf("request = %+v", fake.created)
	}
}

func TestProjectHandler_CreateQuotaExceeded(t *testing.T) {
	fake := &fakeProjects{err: &domain.QuotaExceededError{Plan: "FREE", Limit: 5}}
	mux := projectMux(NewProjectHandler(fake, testLogger()))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"x"}`)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "quota_exceeded" || body["plan"] != "FREE" || body["limit"].(float64) != 5 {
		t.Errorf("body = %v", body)
	}
}

func TestProjectHandler_RequiresUser(t *testing.T) {
	mux := projectMux(NewProjectHandler(&fakeProjects{}, testLogger()))

	anon := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, anon)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d", rec.Code)
	}

	admin := &models.Claims{Role: models.ClaimRoleAdmin}
	admin.Subject = "admin"
	req := httputil.WithClaims(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{}`)), admin)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("admin token: status = %d", rec.Code)
	}
}

func TestProjectHandler_Favorite(t *testing.T) {
	fake := &fakeProjects{}
	mux := projectMux(NewProjectHandler(fake, testLogger()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPatch, "/api/projects/p1/favorite", strings.NewReader(`{"is_favorite":true}`)), "u1"))
	if rec.Code != http.StatusOK || fake.favorite == nil || !*fake.favorite {
		t.Fatalf("status = %d, favorite = %v", rec.Code, fake.favorite)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPatch, "/api/projects/p1/favorite", strings.NewReader(`{}`)), "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing flag: status = %d", rec.Code)
	}
}

func TestProjectHandler_Export(t *testing.T) {
	fake := &fakeProjects{project: &models.Project{
		ID: "p1", UserID: "u1", Title: "Web Tier",
		Files: models.FileSet{"main.tf": "resource {}"},
	}}
	mux := projectMux(NewProjectHandler(fake, testLogger()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/projects/p1/export", nil), "u1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Web Tier-terraform.zip") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/projects/p1/export", nil), "u2"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("other user: status = %d", rec.Code)
	}
}

// --- sessions ---

type fakeSessions struct {
	services.SessionService
	events    []services.GenerationEvent
	genErr    error
	watched   []services.GenerationEvent
	renamedTo string
	imported  []byte
	session   *models.Session
}

func (f *fakeSessions) Get(_ context.Context, userID, id string) (*models.Session, error) {
	if f.session == nil || f.session.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.session, nil
}

func (f *fakeSessions) Rename(_ context.Context, userID, id, title string) (*models.Session, error) {
	f.renamedTo = title
	return &models.Session{ID: id, Title: title}, nil
}

func (f *fakeSessions) Generate(_ context.Context, userID, id, prompt string, sink services.EventSink) error {
	for _, ev := range f.events {
		if err := sink(ev); err != nil {
			return err
		}
	}
	return f.genErr
}

func (f *fakeSessions) Watch(_ context.Context, userID, id string, sink services.EventSink) error {
	if f.session == nil || f.session.ID != id {
		return domain.ErrNotFound
	}
	if err := sink(services.GenerationEvent{Type: services.EventSnapshot, Data: f.session}); err != nil {
		return err
	}
	for _, ev := range f.watched {
		if err := sink(ev); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSessions) ImportArchive(_ context.Context, userID, id string, data []byte) (*services.ArchiveImport, error) {
	f.imported = data
	return &services.ArchiveImport{Session: &models.Session{ID: id, Files: models.FileSet{"main.tf": "x"}}}, nil
}

func sessionMux(h *SessionHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/sessions/{id}", h.RenameSession)
	mux.HandleFunc("POST /api/sessions/{id}/generate", h.Generate)
	mux.HandleFunc("GET /api/sessions/{id}/stream", h.StreamSession)
	mux.HandleFunc("POST /api/sessions/{id}/import", h.ImportSession)
	mux.HandleFunc("GET /api/sessions/{id}/bundle", h.BundleSession)
	return mux
}

func TestSessionHandler_GenerateStreamsEvents(t *testing.T) {
	fake := &fakeSessions{events: []services.GenerationEvent{
		{Type: services.EventSnapshot, Data: &models.Session{ID: "s1", Title: "Cloud Stack"}},
		{Type: services.EventDone, Data: &models.Session{ID: "s1"}},
		{Type: services.EventSaved, Data: services.SavedPayload{ProjectID: "p1"}},
	}}
	mux := sessionMux(NewSessionHandler(fake, &sse.Config{}, testLogger()))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/sessions/s1/generate", strings.NewReader(`{"prompt":"vpc"}`)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, body %s", ct, rec.Body)
	}

	body := rec.Body.String()
	var order []string
	for _, line := range strings.Split(body, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			order = append(order, name)
		}
	}
	want := []string{"snapshot", "done", "saved"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", order, want)
	}
	if !strings.Contains(body, `"project_id":"p1"`) {
		t.Errorf("saved payload missing: %s", body)
	}
}

func TestSessionHandler_StreamSessionReattaches(t *testing.T) {
	fake := &fakeSessions{
		session: &models.Session{ID: "s1", Title: "Cloud Stack", Status: models.SessionStreaming},
		watched: []services.GenerationEvent{
			{Type: services.EventDone, Data: &models.Session{ID: "s1"}},
			{Type: services.EventSaved, Data: services.SavedPayload{ProjectID: "p1"}},
		},
	}
	mux := sessionMux(NewSessionHandler(fake, &sse.Config{}, testLogger()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/sessions/s1/stream", nil), "u1"))

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, body %s", ct, rec.Body)
	}
	var order []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			order = append(order, name)
		}
	}
	if got := strings.Join(order, ","); got != "snapshot,done,saved" {
		t.Errorf("events = %s, want catch-up snapshot then live events", got)
	}
	if !strings.Contains(rec.Body.String(), `"status":"streaming"`) {
		t.Errorf("catch-up snapshot missing session state: %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/sessions/other/stream", nil), "u1"))
	if rec.Code != http.StatusNotFound || rec.Header().Get("Content-Type") != "application/problem+json" {
		t.Errorf("unknown session: status %d, Content-Type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestSessionHandler_GenerateErrorBeforeStream(t *testing.T) {
	fake := &fakeSessions{genErr: &domain.ConflictError{Message: "a generation is already running"}}
	mux := sessionMux(NewSessionHandler(fake, &sse.Config{}, testLogger()))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/sessions/s1/generate", strings.NewReader(`{"prompt":"vpc"}`)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSessionHandler_GenerateErrorAfterStream(t *testing.T) {
	fake := &fakeSessions{
		events: []services.GenerationEvent{{Type: services.EventSnapshot, Data: 1}},
		genErr: errors.New("registry exploded"),
	}
	mux := sessionMux(NewSessionHandler(fake, &sse.Config{}, testLogger()))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/sessions/s1/generate", strings.NewReader(`{"prompt":"vpc"}`)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "event: error\n") {
		t.Errorf("no error event: %s", rec.Body)
	}
}

func TestSessionHandler_Rename(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTitle  string
	}{
		{"value", `{"title":"EKS Cluster"}`, http.StatusOK, "EKS Cluster"},
		{"null resets", `{"title":null}`, http.StatusOK, models.DefaultTitle},
		{"absent", `{}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSessions{}
			mux := sessionMux(NewSessionHandler(fake, nil, testLogger()))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPatch, "/api/sessions/s1", strings.NewReader(tt.body)), "u1"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if fake.renamedTo != tt.wantTitle {
				t.Errorf("renamed to %q, want %q", fake.renamedTo, tt.wantTitle)
			}
		})
	}
}

func TestSessionHandler_Import(t *testing.T) {
	fake := &fakeSessions{}
	mux := sessionMux(NewSessionHandler(fake, nil, testLogger()))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "stack.zip")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("PK-zip-bytes"))
	mw.Close()

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/sessions/s1/import", &buf), "u1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if string(fake.imported) != "PK-zip-bytes" {
		t.Errorf("imported = %q", fake.imported)
	}

	req = asUser(httptest.NewRequest(http.MethodPost, "/api/sessions/s1/import", strings.NewReader("")), "u1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d", rec.Code)
	}
}

func TestSessionHandler_Bundle(t *testing.T) {
	fake := &fakeSessions{session: &models.Session{ID: "s1", Files: models.FileSet{"main.tf": "resource"}}}
	mux := sessionMux(NewSessionHandler(fake, nil, testLogger()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/sessions/s1/bundle", nil), "u1"))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# main.tf") {
		t.Errorf("status = %d, body %q", rec.Code, rec.Body)
	}
}

// --- auth ---

type fakeGoogle struct {
	profile *models.GoogleProfile
	err     error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeGoogle) Exchange(context.Context, string) (*models.GoogleProfile, error) {
	return f.profile, f.err
}

type fakeAccounts struct {
	services.AccountService
}

func (fakeAccounts) SignIn(_ context.Context, p *models.GoogleProfile) (*models.User, error) {
	return &models.User{ID: "u1", Email: p.Email, Plan: models.PlanFree}, nil
}

type fakeTokens struct{}

func (fakeTokens) IssueUser(u *models.User) (string, error) { return "user-token-" + u.ID, nil }
func (fakeTokens) IssueAdmin(string) (string, error)        { return "admin-token", nil }

type fakeAdmin struct{ err error }

func (f fakeAdmin) Authenticate(string, string) error { return f.err }

func TestAuthHandler_GoogleUnconfigured(t *testing.T) {
	h := NewAuthHandler(nil, fakeAccounts{}, fakeTokens{}, fakeAdmin{}, "http://app", false, testLogger())

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAuthHandler_GoogleFlow(t *testing.T) {
	google := &fakeGoogle{profile: &models.GoogleProfile{GoogleID: "g1", Email: "dev@example.com"}}
	h := NewAuthHandler(google, fakeAccounts{}, fakeTokens{}, fakeAdmin{}, "http://app", false, testLogger())

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d", rec.Code)
	}
	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			state = c
		}
	}
	if state == nil || !strings.Contains(rec.Header().Get("Location"), "state="+state.Value) {
		t.Fatalf("state cookie %v, location %q", state, rec.Header().Get("Location"))
	}

	t.Run("valid state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state="+state.Value, nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.GoogleCallback(rec, req)

		loc := rec.Header().Get("Location")
		if rec.Code != http.StatusFound || !strings.HasPrefix(loc, "http://app?") || !strings.Contains(loc, "token=user-token-u1") {
			t.Errorf("status = %d, location = %q", rec.Code, loc)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state=forged", nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.GoogleCallback(rec, req)

		loc := rec.Header().Get("Location")
		if strings.Contains(loc, "token=") || !strings.Contains(loc, "error=invalid_state") {
			t.Errorf("location = %q", loc)
		}
	})
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"bad credentials", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not configured", domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(nil, fakeAccounts{}, fakeTokens{}, fakeAdmin{err: tt.err}, "http://app", false, testLogger())
			rec := httptest.NewRecorder()
			h.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`)))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && decodeBody(t, rec)["token"] != "admin-token" {
				t.Errorf("body = %s", rec.Body)
			}
		})
	}
}

// --- devops ---

type fakeCatalog struct {
	services.CatalogService
	err error
}

func (f fakeCatalog) Import(_ context.Context, userID, id string) (*services.DevOpsImport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.DevOpsImport{Title: "DevOps: EKS GitOps", GithubURL: "https://github.com/x/y"}, nil
}

func TestDevOpsHandler_Import(t *testing.T) {
	t.Run("renames session", func(t *testing.T) {
		sessions := &fakeSessions{}
		h := NewDevOpsHandler(fakeCatalog{}, sessions, testLogger())
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/devops-projects/{id}/import", h.Import)

		req := asUser(httptest.NewRequest(http.MethodPost, "/api/devops-projects/d1/import", strings.NewReader(`{"session_id":"s1"}`)), "u1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		if sessions.renamedTo != "DevOps: EKS GitOps" {
			t.Errorf("renamed to %q", sessions.renamedTo)
		}
		body := decodeBody(t, rec)
		if body["github_url"] != "https://github.com/x/y" || body["session"] == nil {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("free plan", func(t *testing.T) {
		h := NewDevOpsHandler(fakeCatalog{err: fmt.Errorf("%w: paid plan", domain.ErrUpgradeRequired)}, &fakeSessions{}, testLogger())
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/devops-projects/{id}/import", h.Import)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/devops-projects/d1/import", nil), "u1"))

		if rec.Code != http.StatusForbidden || decodeBody(t, rec)["code"] != "upgrade_required" {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body)
		}
	})
}
