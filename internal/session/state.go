// Package session models what the user is looking at: which screen, who is
// logged in, and which record an Edit screen should open.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// Screen names a page of the record front-end.
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenHome      Screen = "home"
	ScreenEdit      Screen = "edit"
	ScreenList      Screen = "list"
	ScreenDocs      Screen = "docs"
	ScreenChangelog Screen = "changelog"
)

// ErrInvalidTransition is returned for a move the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid session transition")

var navigable = map[Screen]bool{
	ScreenHome:      true,
	ScreenEdit:      true,
	ScreenList:      true,
	ScreenDocs:      true,
	ScreenChangelog: true,
}

// ParseScreen maps a screen name to a Screen.
func ParseScreen(s string) (Screen, error) {
	sc := Screen(strings.ToLower(strings.TrimSpace(s)))
	if sc == ScreenLogin || navigable[sc] {
		return sc, nil
	}
	return "", fmt.Errorf("%w: unknown screen %q", ErrInvalidTransition, s)
}

// State is one user's view. The zero value is logged out on the login screen.
type State struct {
	Screen        Screen
	Authenticated bool
	CurrentUser   string
	OpenRecord    string
}

// New returns a logged-out state.
func New() *State {
	return &State{Screen: ScreenLogin}
}

// Restore rebuilds an authenticated state from a stored user and pending
// record, as carried by a session token.
func Restore(user, openRecord string) *State {
	if user == "" {
		return New()
	}
	return &State{
		Screen:        ScreenHome,
		Authenticated: true,
		CurrentUser:   user,
		OpenRecord:    openRecord,
	}
}

func (s *State) screen() Screen {
	if s.Screen == "" {
		return ScreenLogin
	}
	return s.Screen
}

// Login moves Login to Home.
func (s *State) Login(user string) error {
	user = strings.TrimSpace(user)
	if s.Authenticated || s.screen() != ScreenLogin {
		return fmt.Errorf("%w: login from %s", ErrInvalidTransition, s.screen())
	}
	if user == "" {
		return fmt.Errorf("%w: login without user", ErrInvalidTransition)
	}
	s.Authenticated = true
	s.CurrentUser = user
	s.Screen = ScreenHome
	return nil
}

// Navigate switches between authenticated screens.
func (s *State) Navigate(to Screen) error {
	if !s.Authenticated {
		return fmt.Errorf("%w: %s while logged out", ErrInvalidTransition, to)
	}
	if !navigable[to] {
		return fmt.Errorf("%w: navigate to %q", ErrInvalidTransition, to)
	}
	s.Screen = to
	return nil
}

// Open selects id for editing and moves to Edit.
func (s *State) Open(id string) error {
	id = strings.TrimSpace(id)
	if !s.Authenticated {
		return fmt.Errorf("%w: open while logged out", ErrInvalidTransition)
	}
	if id == "" {
		return fmt.Errorf("%w: open without record", ErrInvalidTransition)
	}
	s.OpenRecord = id
	s.Screen = ScreenEdit
	return nil
}

// TakeOpenRecord returns the pending record for the Edit screen and clears
// it, so a later visit to Edit starts blank.
func (s *State) TakeOpenRecord() string {
	id := s.OpenRecord
	s.OpenRecord = ""
	return id
}

// Logout returns to Login and forgets the user and pending record.
func (s *State) Logout() error {
	if !s.Authenticated {
		return fmt.Errorf("%w: logout while logged out", ErrInvalidTransition)
	}
	*s = State{Screen: ScreenLogin}
	return nil
}
