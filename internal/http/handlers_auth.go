package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

const (
	sessionCookieName = "et_session"
	flashCookieName   = "et_flash"
)

// Fixed user-facing texts of the auth screens.
const (
	msgFillAllAuthFields = "Please fill in all fields."
	msgPasswordMismatch  = "Passwords do not match."
	msgRegistrationFail  = "Registration failed: "
	msgRegistered        = "Registration successful!"
	msgLoginFailed       = "Login failed. Check your email and password."
)

type ctxKey int

const sessionKey ctxKey = iota

func withSession(ctx context.Context, sess core.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// sessionFrom returns the session stored by RequireSession.
func sessionFrom(ctx context.Context) (core.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(core.Session)
	return sess, ok
}

type authPage struct {
	Email string
	Error string
	Info  string
}

// RequireSession resolves the session cookie before the wrapped handler runs.
// Unauthenticated requests are sent to the login page.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		user, err := s.backend.CurrentUser(r.Context(), token)
		if err != nil {
			if token != "" {
				applog.FromContext(r.Context()).InfoContext(r.Context(), "Session rejected",
					applog.FieldError, err)
				s.clearCookie(w, sessionCookieName)
			}
			redirectToLogin(w, r)
			return
		}

		ctx := withSession(r.Context(), core.Session{AccessToken: token, User: user})
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if _, err := s.backend.CurrentUser(r.Context(), token); err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	s.render(w, r, "login.html", http.StatusOK, authPage{Info: s.popFlash(w, r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := ParseCredentials(r)
	if err != nil {
		s.render(w, r, "login.html", http.StatusBadRequest, authPage{Error: msgFillAllAuthFields})
		return
	}
	if creds.Email == "" || creds.Password == "" {
		s.render(w, r, "login.html", http.StatusUnprocessableEntity, authPage{Email: creds.Email, Error: msgFillAllAuthFields})
		return
	}

	sess, err := s.backend.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Sign in failed",
			applog.FieldOperation, applog.OpSignIn,
			applog.FieldError, err)
		s.render(w, r, "login.html", http.StatusUnauthorized, authPage{Email: creds.Email, Error: msgLoginFailed})
		return
	}

	s.setSessionCookie(w, sess.AccessToken)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", http.StatusOK, authPage{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, err := ParseCredentials(r)
	if err != nil {
		s.render(w, r, "register.html", http.StatusBadRequest, authPage{Error: msgFillAllAuthFields})
		return
	}
	if creds.Email == "" || creds.Password == "" || creds.Confirm == "" {
		s.render(w, r, "register.html", http.StatusUnprocessableEntity, authPage{Email: creds.Email, Error: msgFillAllAuthFields})
		return
	}
	if creds.Password != creds.Confirm {
		s.render(w, r, "register.html", http.StatusUnprocessableEntity, authPage{Email: creds.Email, Error: msgPasswordMismatch})
		return
	}

	sess, err := s.backend.SignUp(r.Context(), creds.Email, creds.Password)
	switch {
	case errors.Is(err, core.ErrConfirmationPending):
		s.render(w, r, "login.html", http.StatusOK, authPage{Email: creds.Email, Info: err.Error()})
		return
	case err != nil:
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Registration failed",
			applog.FieldOperation, applog.OpSignUp,
			applog.FieldError, err)
		s.render(w, r, "register.html", http.StatusUnprocessableEntity, authPage{Email: creds.Email, Error: msgRegistrationFail + err.Error()})
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "User registered", applog.FieldUserID, sess.User.ID)
	s.setSessionCookie(w, sess.AccessToken)
	s.setFlash(w, msgRegistered)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout signs out, forgets the held lists and clears the cookie.
// It succeeds even when the session was already gone.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if user, err := s.backend.CurrentUser(r.Context(), token); err == nil {
			if err := s.backend.SignOut(r.Context(), core.Session{AccessToken: token, User: user}); err != nil {
				applog.FromContext(r.Context()).WarnContext(r.Context(), "Sign out failed", applog.FieldError, err)
			}
			s.sessions.Drop(user.ID)
		}
	}
	s.clearCookie(w, sessionCookieName)

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash stores a one-shot message shown by the next rendered page.
func (s *Server) setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	s.clearCookie(w, flashCookieName)
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
