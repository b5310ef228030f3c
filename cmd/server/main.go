package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/online_quiz/internal/config"
	"github.com/Skotchmaster/online_quiz/internal/db"
	"github.com/Skotchmaster/online_quiz/internal/httpserver"
	"github.com/Skotchmaster/online_quiz/internal/logging"
	authmw "github.com/Skotchmaster/online_quiz/internal/middleware/auth"
	"github.com/Skotchmaster/online_quiz/internal/mykafka"
	"github.com/Skotchmaster/online_quiz/internal/notify"
	"github.com/Skotchmaster/online_quiz/internal/repo"
	"github.com/Skotchmaster/online_quiz/internal/search"
	"github.com/Skotchmaster/online_quiz/internal/service"
	"github.com/Skotchmaster/online_quiz/internal/session"
	"github.com/Skotchmaster/online_quiz/internal/storage"
	"github.com/Skotchmaster/online_quiz/internal/tokens"
)

func main() {
	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var (
		rdb   *redis.Client
		store session.Store
	)
	switch cfg.SessionBackend {
	case "redis":
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		store = session.NewRedisStore(rdb)
	case "db":
		gs := session.NewGormStore(gdb)
		if n, err := gs.PurgeExpired(ctx); err != nil {
			logger.Warn("session_purge_failed", "error", err)
		} else {
			logger.Info("session_purge", "removed", n)
		}
		store = gs
	default:
		log.Fatalf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SessionCookieSecure)

	var events mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		if err := mykafka.EnsureTopics(ctx, cfg.KafkaBrokers[0],
			mykafka.TopicUserEvents, mykafka.TopicQuizEvents, mykafka.TopicNotificationEvents); err != nil {
			logger.Warn("kafka_topics_failed", "error", err)
		}
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		events = producer
	}

	var notifier notify.Sender
	switch cfg.NotifyBackend {
	case "kafka":
		notifier = notify.NewKafkaSender(events)
	default:
		notifier = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	var index service.QuestionIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		questions := search.NewQuestions(es, cfg.ESIndex)
		if err := questions.EnsureIndex(ctx); err != nil {
			log.Fatalf("elasticsearch index: %v", err)
		}
		index = questions
	}

	var images service.ImageStore
	switch cfg.ImageBackend {
	case "s3":
		images, err = storage.NewS3Images(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		images, err = storage.NewImages(cfg.UploadDir)
	}
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	issuer := tokens.NewIssuer(cfg.JWTSecret, tokens.DefaultTTL)
	r := repo.New(gdb)

	authSvc := &service.AuthService{
		Repo:     r,
		Tokens:   issuer,
		Notifier: notifier,
		Events:   events,
		Images:   images,
		Admin:    service.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
	}
	quizSvc := &service.QuizService{Repo: r, Index: index, Events: events}

	e := httpserver.New(httpserver.Options{
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		CSRFEnabled:  cfg.CSRFEnabled,
		CookieSecure: cfg.SessionCookieSecure,
		UploadDir:    cfg.UploadDir,
		PublicDir:    "public",
	}, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc, Sessions: sessions},
		QuizHandler: &httpserver.QuizHTTP{Svc: quizSvc},
		AuthMW:      authmw.New(sessions, issuer),
		Ready: func(ctx context.Context) error {
			if err := db.Ping(ctx, gdb); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_failed", "error", err)
		}
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_failed", "error", err)
		}
	}

	logger.Info("shutdown_complete")
}
