package transport

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/online_quiz/internal/tokens"
)

type RegisterRequest struct {
	Username  string `json:"username"  form:"username"`
	Password  string `json:"password"  form:"password"`
	Email     string `json:"email"     form:"email"`
	ContactNo string `json:"contactno" form:"contactno"`
	Gender    string `json:"gender"    form:"gender"`
	City      string `json:"city"      form:"city"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type GenerateOTPRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
}

// OTPCode accepts the code as a JSON string or number.
type OTPCode string

func (o *OTPCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = OTPCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*o = OTPCode(n.String())
	return nil
}

type ResetRequest struct {
	Username    string  `json:"username"    form:"username"`
	Email       string  `json:"email"       form:"email"`
	OTP         OTPCode `json:"otp"         form:"otp"`
	NewPassword string  `json:"newPassword" form:"newPassword"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal tokens.Principal
}

type QuestionRequest struct {
	QuestionText  string `json:"questionText"`
	ChoiceA       string `json:"choiceA"`
	ChoiceB       string `json:"choiceB"`
	ChoiceC       string `json:"choiceC"`
	ChoiceD       string `json:"choiceD"`
	CorrectChoice string `json:"correctChoice"`
}

type ScoreRequest struct {
	Username           string          `json:"username"`
	Score              *int            `json:"score"`
	UserAnswer         json.RawMessage `json:"userAnswer"`
	AttemptedQuestions int             `json:"attemptedQuestions"`
	CorrectAnswers     int             `json:"correctAnswers"`
	WrongAnswers       int             `json:"wrongAnswers"`
}

type CommentRequest struct {
	Username     string `json:"username"`
	UserComments string `json:"usercomments"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
