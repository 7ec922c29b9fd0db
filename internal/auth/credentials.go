// Package auth implements the username/password gate of the web front-end:
// the users.json credential file with its legacy migration, password
// verification, and the signed session tokens the server keeps in a cookie.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/filex"
	"github.com/haclabs/haccare/internal/logging"
)

const (
	// DefaultFile is the credential file name used when none is configured.
	DefaultFile = "users.json"

	DefaultUser     = "admin"
	DefaultPassword = "haccare"

	digestLen   = sha256.Size * 2
	passwordKey = "password"
)

// Digest returns the lowercase hex SHA-256 of the UTF-8 bytes of password.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Credentials is the loaded credential file. Lookups are by lowercase
// username; the file keeps whatever keys and extra fields it was given.
// Lookups re-read the file when its modification time or size changed, so
// edits made by haccarectl apply without a restart.
type Credentials struct {
	mu      sync.RWMutex
	path    string
	log     logging.Logger
	raw     map[string]map[string]json.RawMessage
	digests map[string]string
	modTime time.Time
	size    int64
}

// LoadCredentials reads path, seeding it with the default admin account when
// it does not exist. Entries that are not objects, or whose password is not
// a digest, are migrated and the file is rewritten.
func LoadCredentials(ctx context.Context, path string, log logging.Logger) (*Credentials, error) {
	if log == nil {
		log = logging.Nop()
	}
	c := &Credentials{path: path, log: log}

	ok, err := filex.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat credentials: %w", common.ErrStorageIO, err)
	}
	if !ok {
		c.raw = map[string]map[string]json.RawMessage{
			DefaultUser: {passwordKey: quote(Digest(DefaultPassword))},
		}
		if err := c.persist(); err != nil {
			return nil, err
		}
		log.Info(ctx, "seeded credential file", "path", path, "user", DefaultUser)
	}

	if err := c.read(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// read loads and normalizes the file. The caller holds c.mu or owns c.
// On failure the previously loaded entries are kept.
func (c *Credentials) read(ctx context.Context) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: read credentials: %w", common.ErrStorageIO, err)
	}
	var file map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: decode credentials %s: %w", common.ErrStorageIO, c.path, err)
	}

	if c.normalize(ctx, file) {
		if err := c.persist(); err != nil {
			return err
		}
		c.log.Info(ctx, "migrated legacy credentials", "path", c.path)
		return nil
	}
	return c.stamp()
}

// stamp records the file version the in-memory entries reflect.
func (c *Credentials) stamp() error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("%w: stat credentials: %w", common.ErrStorageIO, err)
	}
	c.modTime, c.size = info.ModTime(), info.Size()
	return nil
}

// refresh re-reads the file when it changed on disk since the last read.
// Errors are logged and the current entries stay in use.
func (c *Credentials) refresh(ctx context.Context) {
	info, err := os.Stat(c.path)
	if err != nil {
		c.log.Warn(ctx, "credential file unavailable, keeping loaded entries", "path", c.path, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return
	}
	if err := c.read(ctx); err != nil {
		c.log.Warn(ctx, "reload credentials failed, keeping loaded entries", "path", c.path, "error", err)
		return
	}
	c.log.Info(ctx, "reloaded credentials", "path", c.path, "users", len(c.digests))
}

func (c *Credentials) normalize(ctx context.Context, file map[string]json.RawMessage) bool {
	c.raw = make(map[string]map[string]json.RawMessage, len(file))
	c.digests = make(map[string]string, len(file))

	users := make([]string, 0, len(file))
	for u := range file {
		users = append(users, u)
	}
	slices.Sort(users)

	changed := false
	for _, user := range users {
		value := file[user]

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(value, &obj); err != nil || obj == nil {
			obj = map[string]json.RawMessage{passwordKey: quote(text(value))}
			changed = true
		}
		c.raw[user] = obj

		pwRaw, ok := obj[passwordKey]
		if !ok {
			c.log.Warn(ctx, "credential entry has no password, ignoring", "user", user)
			continue
		}

		pw := text(pwRaw)
		if utf8.RuneCountInString(pw) != digestLen {
			pw = Digest(pw)
		}
		if q := quote(pw); string(q) != string(pwRaw) {
			obj[passwordKey] = q
			changed = true
		}
		c.digests[strings.ToLower(user)] = pw
	}
	return changed
}

// Verify reports whether password matches the stored digest for username.
// The username is trimmed and compared case-insensitively.
func (c *Credentials) Verify(username, password string) bool {
	c.refresh(context.Background())

	c.mu.RLock()
	want, ok := c.digests[normalizeUser(username)]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(Digest(password))) == 1
}

// Authenticate returns the normalized username when the password matches,
// and common.ErrorUnauthorized otherwise.
func (c *Credentials) Authenticate(username, password string) (string, error) {
	if !c.Verify(username, password) {
		return "", fmt.Errorf("%w: invalid credentials for %q", common.ErrorUnauthorized, strings.TrimSpace(username))
	}
	return normalizeUser(username), nil
}

// Has reports whether username can currently log in.
func (c *Credentials) Has(username string) bool {
	c.refresh(context.Background())

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.digests[normalizeUser(username)]
	return ok
}

// SetPassword creates or updates username and rewrites the file.
func (c *Credentials) SetPassword(ctx context.Context, username, password string) error {
	user := normalizeUser(username)
	if user == "" {
		return fmt.Errorf("%w: empty username", common.ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: empty password", common.ErrInvalidInput)
	}

	c.refresh(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	key := user
	for k := range c.raw {
		if strings.ToLower(k) == user {
			key = k
			break
		}
	}
	obj := c.raw[key]
	if obj == nil {
		obj = map[string]json.RawMessage{}
		c.raw[key] = obj
	}
	digest := Digest(password)
	obj[passwordKey] = quote(digest)
	c.digests[user] = digest

	if err := c.persist(); err != nil {
		return err
	}
	c.log.Info(ctx, "password updated", "user", user)
	return nil
}

// Usernames returns the lowercase usernames that can log in, sorted.
func (c *Credentials) Usernames() []string {
	c.refresh(context.Background())

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.digests))
	for u := range c.digests {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

// Path returns the credential file location.
func (c *Credentials) Path() string { return c.path }

func (c *Credentials) persist() error {
	data, err := json.MarshalIndent(c.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode credentials: %w", common.ErrStorageIO, err)
	}
	if err := filex.WriteFile(c.path, append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	return c.stamp()
}

func normalizeUser(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// text renders a JSON value as a string: strings unquoted, anything else as
// its literal JSON text.
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
