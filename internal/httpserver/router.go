package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/online_quiz/internal/middleware/auth"
	"github.com/Skotchmaster/online_quiz/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/online_quiz/internal/middleware/logging"
)

type Deps struct {
	AuthHandler *AuthHTTP
	QuizHandler *QuizHTTP
	AuthMW      *authmw.Middleware

	// Ready reports whether backing stores answer.
	Ready func(ctx context.Context) error
}

type Options struct {
	Logger       *slog.Logger
	CORSOrigins  []string
	CSRFEnabled  bool
	CookieSecure bool
	UploadDir    string
	PublicDir    string
	BodyLimit    string
}

// New builds the server's echo instance with its middleware chain and routes.
func New(opts Options, d *Deps) *echo.Echo {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "6M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(opts.Logger))
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	e.Use(echomw.BodyLimit(opts.BodyLimit))
	if len(opts.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID, "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}
	if opts.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:            opts.CookieSecure,
			TrustedOrigins:    opts.CORSOrigins,
			EnforceSameOrigin: true,
			SkipPaths: []string{
				"/register", "/login", "/admin", "/generateOtp", "/reset",
				"/health/live", "/health/ready",
			},
		}))
	}

	Register(e, d, opts)
	return e
}

func Register(e *echo.Echo, d *Deps, opts Options) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}
	if opts.PublicDir != "" {
		e.Static("/public", opts.PublicDir)
	}

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/admin", d.AuthHandler.AdminLogin)
	e.POST("/generateOtp", d.AuthHandler.GenerateOTP)
	e.POST("/reset", d.AuthHandler.ResetPassword)
	e.POST("/logout", d.AuthHandler.LogOut)

	e.GET("/api/questions", d.QuizHandler.ListQuestions)
	e.GET("/api/questions/search", d.QuizHandler.SearchQuestions)
	e.GET("/api/highestscorer", d.QuizHandler.HighestScorer)

	requireAuth, requireAdmin := d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin

	e.POST("/api/submitscore", d.QuizHandler.SubmitScore, requireAuth)
	e.POST("/comments", d.QuizHandler.AddComment, requireAuth)

	e.GET("/admin/dashboard", d.AuthHandler.AdminDashboard, requireAdmin)
	e.GET("/admin/usercomments", d.QuizHandler.ListComments, requireAdmin)
	e.POST("/api/questions", d.QuizHandler.CreateQuestion, requireAdmin)
	e.GET("/api/users/results", d.QuizHandler.ListResults, requireAdmin)
}
