package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/online_quiz/internal/db/dbtest"
	"github.com/Skotchmaster/online_quiz/internal/notify"
	"github.com/Skotchmaster/online_quiz/internal/repo"
	"github.com/Skotchmaster/online_quiz/internal/storage"
	"github.com/Skotchmaster/online_quiz/internal/tokens"
	"github.com/Skotchmaster/online_quiz/internal/transport"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (f *fakeNotifier) Deliver(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type publishedEvent struct {
	topic string
	key   string
	event map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, _ := event.(map[string]interface{})
	f.events = append(f.events, publishedEvent{topic: topic, key: key, event: m})
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.event["type"].(string))
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type authEnv struct {
	svc      *AuthService
	repo     *repo.GormRepo
	notifier *fakeNotifier
	events   *fakePublisher
	clock    *testClock

	uploadDir string
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	r := repo.New(dbtest.New(t))
	uploadDir := t.TempDir()
	images, err := storage.NewImages(uploadDir)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)}
	env := &authEnv{
		repo:     r,
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
		clock:    clock,

		uploadDir: uploadDir,
	}
	env.svc = &AuthService{
		Repo:     r,
		Tokens:   tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour).WithClock(clock.Now),
		Notifier: env.notifier,
		Events:   env.events,
		Images:   images,
		Admin:    AdminCredentials{Username: "root", Password: "toor"},
		Now:      clock.Now,
	}
	return env
}

func (env *authEnv) register(t *testing.T, username, email, password string) {
	t.Helper()
	_, err := env.svc.Register(context.Background(), transport.RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
		Gender:   "Male",
	}, nil)
	require.NoError(t, err)
}

var errBoom = errors.New("boom")
