package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_quiz/internal/hash"
	"github.com/Skotchmaster/online_quiz/internal/models"
)

// CreateUser inserts u unless its username, email or contact number is taken.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.User{}).Where("username = ?", u.Username)
		if u.Email != nil {
			q = q.Or("email = ?", *u.Email)
		}
		if u.ContactNo != nil {
			q = q.Or("contact_no = ?", *u.ContactNo)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExist
		}

		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserAlreadyExist
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CheckCredentials returns the user only when the password matches. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (r *GormRepo) CheckCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (r *GormRepo) GetUserByUsernameAndEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? AND email = ?", username, email).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetOTP overwrites any earlier code held by the user.
func (r *GormRepo) SetOTP(ctx context.Context, userID uint, code int, expiry time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"otp": code, "otp_expiry": expiry})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword stores passwordHash and clears the OTP, but only while the
// row still holds the code and expiry the caller verified.
func (r *GormRepo) ResetPassword(ctx context.Context, userID uint, code int, expiry time.Time, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp = ? AND otp_expiry = ?", userID, code, expiry).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"otp":           nil,
			"otp_expiry":    nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOTPChanged
	}
	return nil
}

func (r *GormRepo) SetComment(ctx context.Context, username, comment string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(user).Update("usercomments", comment).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *GormRepo) ListUserComments(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Select("id", "username", "email", "usercomments", "created_at", "updated_at").
		Where("usercomments <> ''").
		Order("updated_at DESC").
		Find(&users).Error
	return users, err
}
