package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrQuestionExists     = errors.New("question already exist")
	ErrOTPChanged         = errors.New("otp changed since it was read")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
