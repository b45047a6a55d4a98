package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "assetbase_session"

// SessionManager is the cookie-backed counterpart to the token issuer. The
// session payload mirrors token claims and is re-derived from the identity on
// every issue; nothing is stored server-side beyond the user record.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(key string) *SessionManager {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Issue writes a session cookie carrying the user's claims.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, u *User) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values["uid"] = u.ID.String()
	sess.Values["email"] = u.Email
	sess.Values["role"] = string(u.Role)
	sess.Values["firstName"] = u.FirstName
	sess.Values["lastName"] = u.LastName
	return sess.Save(r, w)
}

// Read resolves the session cookie to claims. A missing, tampered, or
// expired cookie yields ErrNoCredentials.
func (m *SessionManager) Read(r *http.Request) (*Claims, error) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return nil, ErrNoCredentials
	}
	uidStr, _ := sess.Values["uid"].(string)
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return nil, ErrNoCredentials
	}
	email, _ := sess.Values["email"].(string)
	role, _ := sess.Values["role"].(string)
	firstName, _ := sess.Values["firstName"].(string)
	lastName, _ := sess.Values["lastName"].(string)
	if !Role(role).Valid() {
		return nil, ErrNoCredentials
	}
	return &Claims{
		UserID:    uid,
		Email:     email,
		Role:      Role(role),
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
