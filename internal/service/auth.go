package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Skotchmaster/online_quiz/internal/hash"
	"github.com/Skotchmaster/online_quiz/internal/logging"
	"github.com/Skotchmaster/online_quiz/internal/models"
	"github.com/Skotchmaster/online_quiz/internal/mykafka"
	"github.com/Skotchmaster/online_quiz/internal/notify"
	"github.com/Skotchmaster/online_quiz/internal/otp"
	"github.com/Skotchmaster/online_quiz/internal/repo"
	"github.com/Skotchmaster/online_quiz/internal/storage"
	"github.com/Skotchmaster/online_quiz/internal/tokens"
	"github.com/Skotchmaster/online_quiz/internal/transport"
	"github.com/Skotchmaster/online_quiz/internal/util"
)

const (
	MaleAvatar   = "public/Male.png"
	FemaleAvatar = "public/Female.png"
)

type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, ref string) error
}

type AdminCredentials struct {
	Username string
	Password string
}

type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Issuer
	Notifier notify.Sender
	Events   mykafka.Publisher
	Images   ImageStore
	Admin    AdminCredentials

	// Now is the clock used for token issue and OTP expiry.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func normalizeGender(gender string) string {
	switch {
	case strings.EqualFold(strings.TrimSpace(gender), models.GenderMale):
		return models.GenderMale
	case strings.EqualFold(strings.TrimSpace(gender), models.GenderFemale):
		return models.GenderFemale
	}
	return ""
}

func defaultAvatar(gender string) (string, bool) {
	switch gender {
	case models.GenderMale:
		return MaleAvatar, true
	case models.GenderFemale:
		return FemaleAvatar, true
	}
	return "", false
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func checkPassword(password, field string) error {
	if len(password) > hash.MaxPasswordBytes {
		return fmt.Errorf("%w: %s must be at most %d bytes", ErrValidation, field, hash.MaxPasswordBytes)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in transport.RegisterRequest, image *multipart.FileHeader) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if err := checkPassword(in.Password, "password"); err != nil {
		return nil, err
	}

	gender := normalizeGender(in.Gender)
	avatar, hasAvatar := defaultAvatar(gender)
	if image == nil && !hasAvatar {
		return nil, fmt.Errorf("%w: gender must be Male or Female when no profile image is uploaded", ErrValidation)
	}
	if image != nil && s.Images == nil {
		return nil, fmt.Errorf("%w: image uploads are disabled", ErrValidation)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	profileImage := avatar
	if image != nil {
		ref, err := s.Images.Save(ctx, image)
		if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err != nil {
			l.Error("register_error", "reason", "cannot store the image", "error", err)
			return nil, err
		}
		profileImage = ref
	}

	user := models.User{
		Username:     username,
		Email:        optional(in.Email),
		ContactNo:    optional(in.ContactNo),
		Gender:       gender,
		City:         strings.TrimSpace(in.City),
		ProfileImage: profileImage,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if image != nil {
			if rerr := s.Images.Remove(ctx, profileImage); rerr != nil {
				l.Warn("register_cleanup_failed", "image", profileImage, "error", rerr)
			}
		}
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: username, email or contact number is already registered", ErrConflict)
		}
		l.Error("register_error", "reason", "db_error", "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	return &user, nil
}

// Login verifies the credentials and issues a session token. baseURL turns
// the stored image reference into an absolute URL.
func (s *AuthService) Login(ctx context.Context, username, password, baseURL string) (*transport.LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.CheckCredentials(ctx, strings.TrimSpace(username), password)
	if errors.Is(err, repo.ErrInvalidCredentials) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	p := tokens.UserPrincipal{
		ID:           user.ID,
		Name:         user.Username,
		ProfileImage: util.AbsoluteURL(baseURL, user.ProfileImage),
		UserRole:     user.Role,
	}
	token, claims, err := s.Tokens.Issue(p, p.ProfileImage, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mykafka.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})
	return &transport.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, Principal: p}, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if s.Admin.Username == "" || s.Admin.Password == "" {
		return nil, ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.Admin.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	p := tokens.AdminPrincipal{Name: s.Admin.Username}
	token, claims, err := s.Tokens.Issue(p, "", s.now())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("admin_login", "username", p.Name)
	return &transport.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, Principal: p}, nil
}

// GenerateOTP stores a fresh reset code for the user and delivers it. The
// code never leaves this method other than through the notifier.
func (s *AuthService) GenerateOTP(ctx context.Context, username, email string) (time.Time, error) {
	l := logging.FromContext(ctx).With("svc", "auth.generate_otp")

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" {
		return time.Time{}, fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsernameAndEmail(ctx, username, email)
	if errors.Is(err, repo.ErrNotFound) {
		return time.Time{}, ErrUserNotFound
	}
	if err != nil {
		return time.Time{}, err
	}

	code, err := otp.Generate()
	if err != nil {
		return time.Time{}, err
	}
	expiry := otp.ExpiresAt(s.now().Truncate(time.Second))
	if err := s.Repo.SetOTP(ctx, user.ID, code, expiry); err != nil {
		return time.Time{}, err
	}

	msg, err := notify.OTPMessage(email, user.Username, code, expiry)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.Notifier.Deliver(ctx, msg); err != nil {
		l.Error("otp_delivery_failed", "user_id", user.ID, "error", err)
		return time.Time{}, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	l.Info("otp_generated", "user_id", user.ID, "expires_at", expiry)
	return expiry, nil
}

// ResetPassword checks every precondition before touching the user row. The
// final write only lands if the verified code is still the current one.
func (s *AuthService) ResetPassword(ctx context.Context, in transport.ResetRequest) error {
	username, email := strings.TrimSpace(in.Username), strings.TrimSpace(in.Email)
	if username == "" || email == "" || string(in.OTP) == "" || in.NewPassword == "" {
		return fmt.Errorf("%w: username, email, otp and newPassword are required", ErrValidation)
	}
	if err := checkPassword(in.NewPassword, "newPassword"); err != nil {
		return err
	}

	user, err := s.Repo.GetUserByUsernameAndEmail(ctx, username, email)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	code, ok := otp.Parse(string(in.OTP))
	if !ok || user.OTP == nil || user.OTPExpiry == nil || *user.OTP != code {
		return ErrOTPMismatch
	}
	if otp.Expired(*user.OTPExpiry, s.now()) {
		return ErrOTPExpired
	}

	pwHash, err := hash.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.ResetPassword(ctx, user.ID, code, *user.OTPExpiry, pwHash); err != nil {
		if errors.Is(err, repo.ErrOTPChanged) {
			return ErrOTPMismatch
		}
		return err
	}

	logging.FromContext(ctx).Info("password_reset", "user_id", user.ID)
	s.publish(ctx, mykafka.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "password_reset",
		"userID":   user.ID,
		"username": user.Username,
	})
	return nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
