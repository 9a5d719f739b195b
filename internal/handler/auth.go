package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"terraai/internal/auth"
	"terraai/internal/domain/models"
	"terraai/internal/domain/services"
	"terraai/internal/httputil"
)

const (
	stateCookie = "terraai_oauth_state"
	stateTTL    = 10 * time.Minute
)

// GoogleSignIn is the part of the OAuth client the handler uses.
type GoogleSignIn interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.GoogleProfile, error)
}

// AdminLogin checks the configured admin credentials.
type AdminLogin interface {
	Authenticate(email, password string) error
}

// AuthHandler runs Google sign-in and the admin login
type AuthHandler struct {
	google      GoogleSignIn // nil when Google OAuth is not configured
	accounts    services.AccountService
	tokens      auth.TokenIssuer
	admin       AdminLogin
	frontendURL string
	secure      bool
	logger      *slog.Logger
}

// NewAuthHandler creates the handler. A nil google disables the OAuth
// routes with 503.
func NewAuthHandler(
	google GoogleSignIn,
	accounts services.AccountService,
	tokens auth.TokenIssuer,
	admin AdminLogin,
	frontendURL string,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:      google,
		accounts:    accounts,
		tokens:      tokens,
		admin:       admin,
		frontendURL: frontendURL,
		secure:      secureCookies,
		logger:      logger,
	}
}

// GoogleLogin redirects to the Google consent page
// GET /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes sign-in and hands the token to the frontend
// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth", MaxAge: -1})

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.redirectFrontend(w, r, url.Values{"error": {e}})
		return
	}

	cookie, err := r.Cookie(stateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.logger.Warn("oauth state mismatch")
		h.redirectFrontend(w, r, url.Values{"error": {"invalid_state"}})
		return
	}

	profile, err := h.google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.redirectFrontend(w, r, url.Values{"error": {"authentication_failed"}})
		return
	}

	user, err := h.accounts.SignIn(r.Context(), profile)
	if err != nil {
		h.logger.Error("sign-in failed", "error", err)
		h.redirectFrontend(w, r, url.Values{"error": {"authentication_failed"}})
		return
	}

	token, err := h.tokens.IssueUser(user)
	if err != nil {
		h.logger.Error("issue token failed", "user_id", user.ID, "error", err)
		h.redirectFrontend(w, r, url.Values{"error": {"authentication_failed"}})
		return
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("user signed in", "user_id", user.ID)
	h.redirectFrontend(w, r, url.Values{"token": {token}, "user": {string(userJSON)}})
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.frontendURL+"?"+params.Encode(), http.StatusFound)
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AdminLogin exchanges the admin credentials for an admin token
// POST /api/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	if err := h.admin.Authenticate(req.Email, req.Password); err != nil {
		h.logger.Warn("admin login rejected", "error", err)
		handleError(w, err)
		return
	}

	token, err := h.tokens.IssueAdmin(req.Email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tokenResponse{Token: token})
}
