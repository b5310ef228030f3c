package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_quiz/internal/logging"
	"github.com/Skotchmaster/online_quiz/internal/models"
	"github.com/Skotchmaster/online_quiz/internal/session"
	"github.com/Skotchmaster/online_quiz/internal/tokens"
)

const principalKey = "principal"

const (
	MsgTokenRequired = "Access token required"
	MsgInvalidToken  = "Invalid token"
	MsgAccessDenied  = "Access denied: admins only"
)

type SessionLoader interface {
	Load(c echo.Context) (session.Data, error)
}

type TokenParser interface {
	Parse(token string) (*tokens.SessionClaims, error)
}

// Middleware authenticates requests from the token held in the caller's
// server-side session.
type Middleware struct {
	Sessions SessionLoader
	Tokens   TokenParser
}

func New(sessions SessionLoader, parser TokenParser) *Middleware {
	return &Middleware{Sessions: sessions, Tokens: parser}
}

type ValidatorFunc func(p tokens.Principal) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, adminOnly)
}

func (m *Middleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context())

		data, err := m.Sessions.Load(c)
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenRequired)
		}
		if err != nil {
			l.Error("session_load_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		claims, err := m.Tokens.Parse(data.Token)
		if err != nil {
			l.Warn("token_rejected", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, MsgInvalidToken)
		}

		p := claims.Principal()
		if validator != nil {
			if err := validator(p); err != nil {
				return err
			}
		}

		setPrincipal(c, p)
		return next(c)
	}
}

func adminOnly(p tokens.Principal) error {
	if p.Role() != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, MsgAccessDenied)
	}
	return nil
}

func setPrincipal(c echo.Context, p tokens.Principal) {
	c.Set(principalKey, p)
	c.Set("username", p.Username())
	c.Set("role", p.Role())

	var userID *uint
	if id, ok := p.Subject(); ok {
		c.Set("user_id", id)
		userID = &id
	}
	ctx := logging.WithPrincipal(c.Request().Context(), p.Username(), p.Role(), userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func PrincipalFrom(c echo.Context) (tokens.Principal, bool) {
	p, ok := c.Get(principalKey).(tokens.Principal)
	return p, ok
}
