package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"assetbase/internal/httpx"
	"assetbase/internal/metrics"
)

const stateCookieName = "oauth_state"

// Handler exposes the auth endpoints. Metrics may be nil in tests.
type Handler struct {
	Service      *Service
	Sessions     *SessionManager
	OAuth        *GithubProvider
	Logger       *slog.Logger
	Metrics      metrics.AuthCollector
	PostLoginURL string
}

func (h *Handler) recordLogin(success bool) {
	if h.Metrics != nil {
		h.Metrics.RecordLogin(success)
	}
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if body.Email == "" || body.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	user, token, err := h.Service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.recordLogin(false)
			httpx.Error(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		h.Logger.Error("login", "err", err)
		httpx.Internal(w)
		return
	}
	h.recordLogin(true)
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"token":   token,
		"message": "Login successful",
	})
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if body.Email == "" || body.Password == "" || body.FirstName == "" || body.LastName == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	user, err := h.Service.Register(r.Context(), body.Email, body.Password, body.FirstName, body.LastName)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httpx.Error(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		h.Logger.Error("register", "err", err)
		httpx.Internal(w)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordRegistration()
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"message": "User registered successfully",
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Email and new password are required")
		return
	}
	if body.Email == "" || body.NewPassword == "" {
		httpx.Error(w, http.StatusBadRequest, "Email and new password are required")
		return
	}
	if err := h.Service.ResetPassword(r.Context(), body.Email, body.NewPassword); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.Error(w, http.StatusBadRequest, "User not found")
			return
		}
		h.Logger.Error("reset password", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

// Me handles GET /api/v1/auth/me for either credential variant.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Missing or invalid authorization token")
		return
	}
	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Missing or invalid authorization token")
			return
		}
		h.Logger.Error("load current user", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Logout handles POST /api/v1/auth/logout by expiring the session cookie.
// Bearer tokens have no revocation and simply age out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Logger.Error("clear session", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ListUsers handles GET /api/v1/users. The route is ADMIN-gated.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("list users", "err", err)
		httpx.Internal(w)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

// GithubLogin handles GET /api/v1/auth/github: stores a random state in a
// short-lived cookie and redirects to GitHub's consent screen.
func (h *Handler) GithubLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil || !h.OAuth.Configured() {
		httpx.Error(w, http.StatusNotFound, "GitHub login is not configured")
		return
	}
	state, err := generateState()
	if err != nil {
		h.Logger.Error("generate oauth state", "err", err)
		httpx.Internal(w)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.OAuth.LoginURL(state), http.StatusSeeOther)
}

// GithubCallback handles GET /api/v1/auth/github/callback: checks state,
// exchanges the code, upserts the identity, and issues a session cookie.
func (h *Handler) GithubCallback(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil || !h.OAuth.Configured() {
		httpx.Error(w, http.StatusNotFound, "GitHub login is not configured")
		return
	}
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httpx.Error(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	profile, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		h.Logger.Error("github exchange", "err", err)
		httpx.Error(w, http.StatusBadRequest, "GitHub authorization failed")
		return
	}
	user, err := h.Service.UpsertExternal(r.Context(), *profile)
	if err != nil {
		h.Logger.Error("upsert external identity", "err", err)
		httpx.Internal(w)
		return
	}
	if err := h.Sessions.Issue(w, r, user); err != nil {
		h.Logger.Error("issue session", "err", err)
		httpx.Internal(w)
		return
	}
	h.recordLogin(true)
	dest := h.PostLoginURL
	if dest == "" {
		dest = "/"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
