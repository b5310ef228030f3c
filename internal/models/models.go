package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	GenderMale   = "Male"
	GenderFemale = "Female"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"          json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"              json:"username"`
	Email        *string    `gorm:"uniqueIndex"                       json:"email,omitempty"`
	PasswordHash string     `gorm:"not null"                          json:"-"`
	ContactNo    *string    `gorm:"uniqueIndex"                       json:"contactno,omitempty"`
	Gender       string     `gorm:"size:16"                           json:"gender,omitempty"`
	City         string     `                                         json:"city,omitempty"`
	ProfileImage string     `                                         json:"profileImage"`
	Role         string     `gorm:"not null;default:user"             json:"role"`
	OTP          *int       `gorm:"column:otp"                        json:"-"`
	OTPExpiry    *time.Time `gorm:"column:otp_expiry"                 json:"-"`
	UserComments string     `gorm:"column:usercomments;type:text"     json:"usercomments,omitempty"`
	CreatedAt    time.Time  `                                         json:"createdAt"`
	UpdatedAt    time.Time  `                                         json:"updatedAt"`
}

type Question struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	QuestionText  string    `gorm:"uniqueIndex;not null"      json:"questionText"`
	ChoiceA       string    `gorm:"not null"                  json:"choiceA"`
	ChoiceB       string    `gorm:"not null"                  json:"choiceB"`
	ChoiceC       string    `gorm:"not null"                  json:"choiceC"`
	ChoiceD       string    `gorm:"not null"                  json:"choiceD"`
	CorrectChoice string    `gorm:"not null"                  json:"correctChoice"`
	CreatedAt     time.Time `                                 json:"createdAt"`
	UpdatedAt     time.Time `                                 json:"updatedAt"`
}

type Result struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	UserID             uint            `gorm:"index;not null"                 json:"userId"`
	User               User            `gorm:"constraint:OnDelete:CASCADE"    json:"-"`
	Score              int             `gorm:"not null"                       json:"score"`
	UserAnswer         json.RawMessage `gorm:"serializer:json;type:text"      json:"userAnswer"`
	AttemptedQuestions int             `gorm:"not null;default:0"             json:"attemptedQuestions"`
	CorrectAnswers     int             `gorm:"not null;default:0"             json:"correctAnswers"`
	WrongAnswers       int             `gorm:"not null;default:0"             json:"wrongAnswers"`
	CreatedAt          time.Time       `                                      json:"createdAt"`
	UpdatedAt          time.Time       `                                      json:"updatedAt"`
}

// Session is the row used by the database-backed session store.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"  json:"id"`
	Data      []byte    `gorm:"not null"            json:"-"`
	ExpiresAt time.Time `gorm:"index;not null"      json:"expires_at"`
}
