package service

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/online_quiz/internal/hash"
	"github.com/Skotchmaster/online_quiz/internal/models"
	"github.com/Skotchmaster/online_quiz/internal/mykafka"
	"github.com/Skotchmaster/online_quiz/internal/otp"
	"github.com/Skotchmaster/online_quiz/internal/transport"
)

func pngUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("profileImage", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, fh, err := req.FormFile("profileImage")
	require.NoError(t, err)
	return fh
}

func TestAuthService_Register_Avatar(t *testing.T) {
	tests := []struct {
		name       string
		gender     string
		upload     bool
		wantImage  string
		wantPrefix string
		wantErr    error
	}{
		{name: "male default", gender: "Male", wantImage: MaleAvatar},
		{name: "female default", gender: "female", wantImage: FemaleAvatar},
		{name: "upload wins over gender", gender: "Male", upload: true, wantPrefix: "uploads/"},
		{name: "upload without gender", upload: true, wantPrefix: "uploads/"},
		{name: "no gender no image", wantErr: ErrValidation},
		{name: "unknown gender no image", gender: "other", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAuthEnv(t)
			var fh *multipart.FileHeader
			if tt.upload {
				fh = pngUpload(t)
			}

			u, err := env.svc.Register(context.Background(), transport.RegisterRequest{
				Username: "alice",
				Password: "secret",
				Gender:   tt.gender,
			}, fh)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantImage != "" {
				assert.Equal(t, tt.wantImage, u.ProfileImage)
			}
			if tt.wantPrefix != "" {
				assert.True(t, strings.HasPrefix(u.ProfileImage, tt.wantPrefix), u.ProfileImage)
			}
		})
	}
}

func TestAuthService_Register_Result(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	u, err := env.svc.Register(ctx, transport.RegisterRequest{
		Username: " alice ",
		Password: "secret",
		Email:    "a@example.com",
		Gender:   "Female",
		City:     "Lagos",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.GenderFemale, u.Gender)
	assert.True(t, hash.CheckPassword(u.PasswordHash, "secret"))

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), u.PasswordHash)
	assert.NotContains(t, string(raw), "password")

	assert.Equal(t, []string{"user_registered"}, env.events.types())
	assert.Equal(t, mykafka.TopicUserEvents, env.events.events[0].topic)

	_, err = env.svc.Register(ctx, transport.RegisterRequest{Username: "alice", Password: "x", Gender: "Male"}, nil)
	require.ErrorIs(t, err, ErrConflict)
	_, err = env.svc.Register(ctx, transport.RegisterRequest{Username: "bob", Password: "x", Gender: "Male", Email: "a@example.com"}, nil)
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "blank username", username: "   ", password: "secret"},
		{name: "empty password", username: "user", password: ""},
		{name: "password over 72 bytes", username: "user", password: strings.Repeat("a", hash.MaxPasswordBytes+1)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, transport.RegisterRequest{
				Username: tt.username,
				Password: tt.password,
				Gender:   "Male",
			}, nil)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_FailureLeavesNoUpload(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "taken", "", "secret")

	tests := []struct {
		name    string
		req     transport.RegisterRequest
		wantErr error
	}{
		{
			name:    "password too long",
			req:     transport.RegisterRequest{Username: "alice", Password: strings.Repeat("p", 73)},
			wantErr: ErrValidation,
		},
		{
			name:    "duplicate username",
			req:     transport.RegisterRequest{Username: "taken", Password: "secret"},
			wantErr: ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, tt.req, pngUpload(t))
			require.ErrorIs(t, err, tt.wantErr)

			entries, err := os.ReadDir(env.uploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestAuthService_Register_PublishFailureIsNotFatal(t *testing.T) {
	env := newAuthEnv(t)
	env.events.err = errBoom

	_, err := env.svc.Register(context.Background(), transport.RegisterRequest{
		Username: "alice", Password: "secret", Gender: "Male",
	}, nil)
	require.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "a@example.com", "secret")

	res, err := env.svc.Login(ctx, "alice", "secret", "https://quiz.example.com")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, env.clock.Now().Add(time.Hour), res.ExpiresAt)

	claims, err := env.svc.Tokens.Parse(res.Token)
	require.NoError(t, err)
	stored, err := env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, stored.Username, claims.Username)
	assert.Equal(t, stored.Role, claims.Role)
	require.NotNil(t, claims.UserID)
	assert.Equal(t, stored.ID, *claims.UserID)
	assert.Equal(t, "https://quiz.example.com/"+MaleAvatar, claims.ProfileImage)
	assert.Contains(t, env.events.types(), "user_logged_in")
}

func TestAuthService_Login_Failures(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "", "secret")

	_, wrongPass := env.svc.Login(ctx, "alice", "nope", "http://x")
	_, unknown := env.svc.Login(ctx, "bob", "secret", "http://x")
	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())

	_, err := env.svc.Login(ctx, "", "secret", "http://x")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Login(ctx, "alice", "", "http://x")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_AdminLogin(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	res, err := env.svc.AdminLogin(ctx, "root", "toor")
	require.NoError(t, err)
	claims, err := env.svc.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Nil(t, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, models.RoleAdmin, res.Principal.Role())

	_, err = env.svc.AdminLogin(ctx, "root", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.AdminLogin(ctx, "", "toor")
	require.ErrorIs(t, err, ErrValidation)

	env.svc.Admin = AdminCredentials{}
	_, err = env.svc.AdminLogin(ctx, "root", "toor")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_OTPRoundTrip(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "a@example.com", "old-password")

	expiry, err := env.svc.GenerateOTP(ctx, "alice", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now().Add(otp.TTL), expiry)

	u, err := env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.OTP)
	code := *u.OTP
	assert.GreaterOrEqual(t, code, otp.Min)
	assert.LessOrEqual(t, code, otp.Max)

	require.Len(t, env.notifier.msgs, 1)
	assert.Equal(t, "a@example.com", env.notifier.msgs[0].To)
	assert.Contains(t, env.notifier.msgs[0].HTML, strconv.Itoa(code))

	reset := transport.ResetRequest{
		Username:    "alice",
		Email:       "a@example.com",
		OTP:         transport.OTPCode(strconv.Itoa(code)),
		NewPassword: "new-password",
	}
	require.NoError(t, env.svc.ResetPassword(ctx, reset))

	u, err = env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, u.OTP)
	assert.Nil(t, u.OTPExpiry)
	assert.True(t, hash.CheckPassword(u.PasswordHash, "new-password"))

	_, err = env.svc.Login(ctx, "alice", "new-password", "http://x")
	require.NoError(t, err)

	require.ErrorIs(t, env.svc.ResetPassword(ctx, reset), ErrOTPMismatch)
	assert.Contains(t, env.events.types(), "password_reset")
}

func TestAuthService_ResetPassword_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{name: "one second before expiry", offset: -time.Second},
		{name: "at expiry", offset: 0},
		{name: "one second after expiry", offset: time.Second, wantErr: ErrOTPExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAuthEnv(t)
			ctx := context.Background()
			env.register(t, "alice", "a@example.com", "old-password")

			expiry, err := env.svc.GenerateOTP(ctx, "alice", "a@example.com")
			require.NoError(t, err)
			u, err := env.repo.GetUserByUsername(ctx, "alice")
			require.NoError(t, err)

			env.clock.Set(expiry.Add(tt.offset))
			err = env.svc.ResetPassword(ctx, transport.ResetRequest{
				Username:    "alice",
				Email:       "a@example.com",
				OTP:         transport.OTPCode(strconv.Itoa(*u.OTP)),
				NewPassword: "new-password",
			})

			after, getErr := env.repo.GetUserByUsername(ctx, "alice")
			require.NoError(t, getErr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotNil(t, after.OTP)
				assert.True(t, hash.CheckPassword(after.PasswordHash, "old-password"))
				return
			}
			require.NoError(t, err)
			assert.Nil(t, after.OTP)
		})
	}
}

func TestAuthService_ResetPassword_Preconditions(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "a@example.com", "pw")
	env.register(t, "bob", "b@example.com", "pw")

	_, err := env.svc.GenerateOTP(ctx, "bob", "b@example.com")
	require.NoError(t, err)
	bob, err := env.repo.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	bobCode := transport.OTPCode(strconv.Itoa(*bob.OTP))

	_, err = env.svc.GenerateOTP(ctx, "alice", "a@example.com")
	require.NoError(t, err)
	alice, err := env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	aliceCode := transport.OTPCode(strconv.Itoa(*alice.OTP))
	if aliceCode == bobCode {
		t.Skip("codes collided")
	}

	tests := []struct {
		name    string
		req     transport.ResetRequest
		wantErr error
	}{
		{
			name:    "unknown user",
			req:     transport.ResetRequest{Username: "carol", Email: "c@example.com", OTP: "1234", NewPassword: "x"},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "email does not match username",
			req:     transport.ResetRequest{Username: "alice", Email: "b@example.com", OTP: bobCode, NewPassword: "x"},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "another user's code",
			req:     transport.ResetRequest{Username: "alice", Email: "a@example.com", OTP: bobCode, NewPassword: "x"},
			wantErr: ErrOTPMismatch,
		},
		{
			name:    "not a number",
			req:     transport.ResetRequest{Username: "alice", Email: "a@example.com", OTP: "abcd", NewPassword: "x"},
			wantErr: ErrOTPMismatch,
		},
		{
			name:    "new password over 72 bytes with a valid code",
			req:     transport.ResetRequest{Username: "alice", Email: "a@example.com", OTP: aliceCode, NewPassword: strings.Repeat("n", 80)},
			wantErr: ErrValidation,
		},
		{
			name:    "missing new password",
			req:     transport.ResetRequest{Username: "alice", Email: "a@example.com", OTP: bobCode},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, env.svc.ResetPassword(ctx, tt.req), tt.wantErr)
		})
	}

	after, err := env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, after.OTP)
	assert.Equal(t, *alice.OTP, *after.OTP)
	assert.True(t, hash.CheckPassword(after.PasswordHash, "pw"))
}

func TestAuthService_ResetPassword_NoOTPIssued(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t, "alice", "a@example.com", "pw")

	err := env.svc.ResetPassword(context.Background(), transport.ResetRequest{
		Username: "alice", Email: "a@example.com", OTP: "1234", NewPassword: "x",
	})
	require.ErrorIs(t, err, ErrOTPMismatch)
}

func TestAuthService_GenerateOTP_Errors(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "a@example.com", "pw")

	_, err := env.svc.GenerateOTP(ctx, "alice", "wrong@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.svc.GenerateOTP(ctx, "", "a@example.com")
	require.ErrorIs(t, err, ErrValidation)

	env.notifier.err = errBoom
	_, err = env.svc.GenerateOTP(ctx, "alice", "a@example.com")
	require.ErrorIs(t, err, ErrDelivery)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_GenerateOTP_OverwritesPrevious(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "a@example.com", "pw")

	_, err := env.svc.GenerateOTP(ctx, "alice", "a@example.com")
	require.NoError(t, err)

	env.clock.Set(env.clock.Now().Add(5 * time.Minute))
	second, err := env.svc.GenerateOTP(ctx, "alice", "a@example.com")
	require.NoError(t, err)

	u, err := env.repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.OTPExpiry)
	assert.True(t, second.Equal(*u.OTPExpiry))
	assert.Len(t, env.notifier.msgs, 2)
}
