package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_quiz/internal/logging"
	authmw "github.com/Skotchmaster/online_quiz/internal/middleware/auth"
	"github.com/Skotchmaster/online_quiz/internal/service"
	"github.com/Skotchmaster/online_quiz/internal/session"
	"github.com/Skotchmaster/online_quiz/internal/transport"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Sessions *session.Manager
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var image *multipart.FileHeader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("profileImage")
		switch {
		case err == nil:
			image = fh
		case errors.Is(err, http.ErrMissingFile):
		default:
			l.Warn("register_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid profile image")
		}
	}

	user, err := h.Svc.Register(ctx, req, image)
	if err != nil {
		return toHTTPError(c, "auth_register", err)
	}

	l.Info("register_success", "status", 201, "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password, baseURL(c))
	if err != nil {
		return toHTTPError(c, "auth_login", err)
	}

	if err := h.Sessions.Start(c, session.Data{Token: res.Token}); err != nil {
		return toHTTPError(c, "auth_login", err)
	}

	l.Info("login_successful", "username", res.Principal.Username())
	return c.JSON(http.StatusOK, echo.Map{"token": res.Token})
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_admin_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.AdminLogin(ctx, req.Username, req.Password)
	if err != nil {
		return toHTTPError(c, "auth_admin_login", err)
	}
	if err := h.Sessions.Start(c, session.Data{Token: res.Token}); err != nil {
		return toHTTPError(c, "auth_admin_login", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   res.Token,
		"message": "Admin login successful",
	})
}

func (h *AuthHTTP) GenerateOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_generate_otp")

	var req transport.GenerateOTPRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("generate_otp_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	expiry, err := h.Svc.GenerateOTP(ctx, req.Username, req.Email)
	if err != nil {
		return toHTTPError(c, "auth_generate_otp", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "OTP sent to your email",
		"otpExpiry": expiry,
	})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset")

	var req transport.ResetRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, req); err != nil {
		return toHTTPError(c, "auth_reset", err)
	}

	l.Info("reset_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Password reset successfully"})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	err := h.Sessions.End(c)
	if errors.Is(err, session.ErrNotFound) {
		l.Warn("logout_failed", "status", 400, "reason", "no active session")
		return echo.NewHTTPError(http.StatusBadRequest, MsgNoSession)
	}
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot destroy session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to destroy session")
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHTTP) AdminDashboard(c echo.Context) error {
	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, authmw.MsgTokenRequired)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to the admin dashboard",
		"user": echo.Map{
			"username": p.Username(),
			"role":     p.Role(),
		},
	})
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
