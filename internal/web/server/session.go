package server

import (
	"errors"
	"net/http"

	"github.com/haclabs/haccare/internal/auth"
	"github.com/haclabs/haccare/internal/session"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "haccare_session"
	stateKey   = "session"
	userKey    = "user"
)

// stateFrom returns the session attached by requireSession, or a logged-out
// one on public routes.
func stateFrom(c echo.Context) *session.State {
	if st, ok := c.Get(stateKey).(*session.State); ok {
		return st
	}
	return session.New()
}

// loadState reads the session cookie. Missing, expired or forged cookies,
// and tokens for users no longer in the credential file, all yield a
// logged-out state.
func (s *Server) loadState(c echo.Context) *session.State {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return session.New()
	}
	claims, err := auth.ParseToken(cookie.Value, s.secret)
	if err != nil {
		s.log.Debug().Err(err).Msg("session cookie rejected")
		return session.New()
	}
	if !s.users.Has(claims.Username) {
		s.log.Warn().Str("user", claims.Username).Str("remote_ip", c.RealIP()).Msg("session for unknown user rejected")
		return session.New()
	}
	return session.Restore(claims.Username, claims.OpenRecord)
}

// storeState writes st back to the cookie, or clears it when logged out.
func (s *Server) storeState(c echo.Context, st *session.State) error {
	if !st.Authenticated {
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}

	token, err := auth.GenerateToken(auth.Claims{
		Username:   st.CurrentUser,
		OpenRecord: st.OpenRecord,
	}, s.secret, s.ttl)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// requireSession redirects anonymous requests to the login page and puts
// the session on the context for the rest.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := s.loadState(c)
		if !st.Authenticated {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		c.Set(stateKey, st)
		c.Set(userKey, st.CurrentUser)
		return next(c)
	}
}

// navigate moves the session to screen, answering 400 on a refused move.
func navigate(c echo.Context, screen session.Screen) (*session.State, error) {
	st := stateFrom(c)
	if err := st.Navigate(screen); err != nil {
		if errors.Is(err, session.ErrInvalidTransition) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return nil, err
	}
	return st, nil
}
