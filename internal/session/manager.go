package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	DefaultCookieName = "quiz_sid"
	DefaultTTL        = 24 * time.Hour
)

// Data is what a session holds for its owner.
type Data struct {
	Token string `json:"token"`
}

// Manager binds Store entries to the caller through an opaque cookie.
type Manager struct {
	Store      Store
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{Store: store, CookieName: DefaultCookieName, TTL: ttl, Secure: secure}
}

// Start replaces any session the caller holds with a fresh one carrying data.
func (m *Manager) Start(c echo.Context, data Data) error {
	ctx := c.Request().Context()

	if old := m.id(c); old != "" {
		if err := m.Store.Destroy(ctx, old); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	id := uuid.NewString()
	if err := m.Store.Save(ctx, id, blob, m.TTL); err != nil {
		return err
	}
	c.SetCookie(m.cookie(id, time.Now().Add(m.TTL)))
	return nil
}

// Load returns ErrNotFound when the caller has no session or the session
// carries no token.
func (m *Manager) Load(c echo.Context) (Data, error) {
	id := m.id(c)
	if id == "" {
		return Data{}, ErrNotFound
	}
	blob, err := m.Store.Load(c.Request().Context(), id)
	if err != nil {
		return Data{}, err
	}
	var data Data
	if err := json.Unmarshal(blob, &data); err != nil {
		return Data{}, fmt.Errorf("decode session: %w", err)
	}
	if data.Token == "" {
		return Data{}, ErrNotFound
	}
	return data, nil
}

// End destroys the caller's active session and expires the cookie.
func (m *Manager) End(c echo.Context) error {
	if _, err := m.Load(c); err != nil {
		return err
	}
	if err := m.Store.Destroy(c.Request().Context(), m.id(c)); err != nil {
		return err
	}
	c.SetCookie(m.expiredCookie())
	return nil
}

func (m *Manager) id(c echo.Context) string {
	ck, err := c.Cookie(m.CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (m *Manager) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expiredCookie() *http.Cookie {
	ck := m.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}
