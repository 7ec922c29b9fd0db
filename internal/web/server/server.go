// Package server is the web front-end: a login-gated set of HTML pages for
// viewing, editing, listing and deleting patient records, built on echo.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Authenticator checks a username and password and returns the canonical
// username, and reports whether a session's user still exists.
// *auth.Credentials satisfies it.
type Authenticator interface {
	Authenticate(username, password string) (string, error)
	Has(username string) bool
}

// Options configures a Server.
type Options struct {
	SecretKey  []byte
	SessionTTL time.Duration
	Logger     zerolog.Logger
	// Now stamps pages and form defaults. Defaults to time.Now.
	Now func() time.Time
}

// Server wires the record pages onto an echo instance.
type Server struct {
	echo     *echo.Echo
	patients services.PatientService
	users    Authenticator
	secret   []byte
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// New builds the server and registers its routes.
func New(patients services.PatientService, users Authenticator, opts Options) (*Server, error) {
	if len(opts.SecretKey) == 0 {
		return nil, errors.New("server: empty secret key")
	}
	if opts.SessionTTL <= 0 {
		return nil, errors.New("server: session ttl must be positive")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:     echo.New(),
		patients: patients,
		users:    users,
		secret:   opts.SecretKey,
		ttl:      opts.SessionTTL,
		log:      opts.Logger,
		now:      opts.Now,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r
	e.HTTPErrorHandler = s.handleError

	e.Use(Recovery(s.log))
	e.Use(RequestID())
	e.Use(Logger(s.log))
	e.Use(SecurityHeaders())

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/login", s.loginPage)
	e.POST("/login", s.login)
	e.POST("/logout", s.logout)

	g := e.Group("", s.requireSession)
	g.GET("/", s.home)
	g.GET("/edit", s.editPage)
	g.POST("/edit", s.save)
	g.GET("/records", s.list)
	g.POST("/records/:id/open", s.open)
	g.POST("/records/:id/delete", s.remove)
	g.GET("/records/:id/label.png", s.label)
	g.GET("/records/:id/chart.pdf", s.chart)
	g.GET("/docs", s.docs)
	g.GET("/changelog", s.changelog)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("web server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleError renders the error page with a status derived from err.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, "Something went wrong."
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		msg = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "Record not found."
	case errors.Is(err, common.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrStorageIO):
		msg = "Storage error: the record could not be read or written."
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	}

	st := s.loadState(c)
	if rerr := c.Render(status, "error", s.page(c, st, "Error", errorData{Status: status, Message: msg})); rerr != nil {
		s.log.Error().Err(rerr).Msg("render error page")
		_ = c.String(status, msg)
	}
}
