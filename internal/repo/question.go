package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_quiz/internal/models"
)

func (r *GormRepo) CreateQuestion(ctx context.Context, q *models.Question) error {
	tx := r.DB.WithContext(ctx).Where("question_text = ?", q.QuestionText).FirstOrCreate(q)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrQuestionExists
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrQuestionExists
	}
	return nil
}

func (r *GormRepo) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&qs).Error
	return qs, err
}
