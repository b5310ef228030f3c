package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Skotchmaster/online_quiz/internal/models"
)

// ResultRow is a result joined with the owner's public fields.
type ResultRow struct {
	ID                 uint            `json:"id"`
	UserID             uint            `json:"userId"`
	Username           string          `json:"username"`
	ProfileImage       string          `json:"profileImage"`
	Score              int             `json:"score"`
	UserAnswer         json.RawMessage `gorm:"serializer:json" json:"userAnswer,omitempty"`
	AttemptedQuestions int             `json:"attemptedQuestions"`
	CorrectAnswers     int             `json:"correctAnswers"`
	WrongAnswers       int             `json:"wrongAnswers"`
	CreatedAt          time.Time       `json:"createdAt"`
}

const resultRowColumns = "results.id, results.user_id, users.username, users.profile_image, results.score, " +
	"results.user_answer, results.attempted_questions, results.correct_answers, results.wrong_answers, results.created_at"

func (r *GormRepo) CreateResult(ctx context.Context, res *models.Result) error {
	return r.DB.WithContext(ctx).Omit("User").Create(res).Error
}

// ListResults returns one page of results, newest first, plus the total count.
func (r *GormRepo) ListResults(ctx context.Context, offset, limit int) ([]ResultRow, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Result{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ResultRow
	err := r.DB.WithContext(ctx).
		Table("results").
		Select(resultRowColumns).
		Joins("JOIN users ON users.id = results.user_id").
		Order("results.created_at DESC, results.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// Leaderboard orders results by score. limit <= 0 returns every result.
func (r *GormRepo) Leaderboard(ctx context.Context, limit int) ([]ResultRow, error) {
	q := r.DB.WithContext(ctx).
		Table("results").
		Select(resultRowColumns).
		Joins("JOIN users ON users.id = results.user_id").
		Order("results.score DESC, results.created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []ResultRow
	err := q.Scan(&rows).Error
	return rows, err
}
