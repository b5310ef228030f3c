package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/online_quiz/internal/logging"
	"github.com/Skotchmaster/online_quiz/internal/models"
	"github.com/Skotchmaster/online_quiz/internal/mykafka"
	"github.com/Skotchmaster/online_quiz/internal/repo"
	"github.com/Skotchmaster/online_quiz/internal/transport"
	"github.com/Skotchmaster/online_quiz/internal/util"
)

type QuestionIndex interface {
	IndexQuestion(ctx context.Context, q models.Question) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Question, error)
}

type QuizService struct {
	Repo   *repo.GormRepo
	Index  QuestionIndex
	Events mykafka.Publisher
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func (s *QuizService) CreateQuestion(ctx context.Context, in transport.QuestionRequest) (*models.Question, error) {
	l := logging.FromContext(ctx).With("svc", "quiz.create_question")

	q := models.Question{
		QuestionText:  strings.TrimSpace(in.QuestionText),
		ChoiceA:       strings.TrimSpace(in.ChoiceA),
		ChoiceB:       strings.TrimSpace(in.ChoiceB),
		ChoiceC:       strings.TrimSpace(in.ChoiceC),
		ChoiceD:       strings.TrimSpace(in.ChoiceD),
		CorrectChoice: strings.ToUpper(strings.TrimSpace(in.CorrectChoice)),
	}
	if q.QuestionText == "" || q.ChoiceA == "" || q.ChoiceB == "" || q.ChoiceC == "" || q.ChoiceD == "" {
		return nil, fmt.Errorf("%w: questionText and all four choices are required", ErrValidation)
	}
	switch q.CorrectChoice {
	case "A", "B", "C", "D":
	default:
		return nil, fmt.Errorf("%w: correctChoice must be one of A, B, C or D", ErrValidation)
	}

	if err := s.Repo.CreateQuestion(ctx, &q); err != nil {
		if errors.Is(err, repo.ErrQuestionExists) {
			return nil, fmt.Errorf("%w: question already exists", ErrConflict)
		}
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexQuestion(ctx, q); err != nil {
			l.Error("question_index_failed", "question_id", q.ID, "error", err)
		}
	}
	return &q, nil
}

func (s *QuizService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	qs, err := s.Repo.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []models.Question{}
	}
	return qs, nil
}

func (s *QuizService) SearchQuestions(ctx context.Context, query string, page, size int) (*Page[models.Question], error) {
	if s.Index == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	w := util.Paginate(page, size)
	total, qs, err := s.Index.Search(ctx, query, w.Offset, w.Size)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []models.Question{}
	}
	return &Page[models.Question]{Items: qs, Total: total, Page: w.Page, Size: w.Size}, nil
}

func (s *QuizService) SubmitScore(ctx context.Context, in transport.ScoreRequest) (*models.Result, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Score == nil {
		return nil, fmt.Errorf("%w: username and score are required", ErrValidation)
	}
	if len(in.UserAnswer) > 0 && !json.Valid(in.UserAnswer) {
		return nil, fmt.Errorf("%w: userAnswer must be valid JSON", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user does not exist", ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	res := models.Result{
		UserID:             user.ID,
		Score:              *in.Score,
		UserAnswer:         in.UserAnswer,
		AttemptedQuestions: in.AttemptedQuestions,
		CorrectAnswers:     in.CorrectAnswers,
		WrongAnswers:       in.WrongAnswers,
	}
	if err := s.Repo.CreateResult(ctx, &res); err != nil {
		return nil, err
	}

	if s.Events != nil {
		event := map[string]interface{}{
			"type":     "score_submitted",
			"userID":   user.ID,
			"username": user.Username,
			"score":    res.Score,
		}
		if err := s.Events.PublishEvent(ctx, mykafka.TopicQuizEvents, fmt.Sprint(user.ID), event); err != nil {
			logging.FromContext(ctx).Error("kafka_publish_failed", "topic", mykafka.TopicQuizEvents, "error", err)
		}
	}
	return &res, nil
}

func (s *QuizService) ListResults(ctx context.Context, page, size int) (*Page[repo.ResultRow], error) {
	w := util.Paginate(page, size)
	rows, total, err := s.Repo.ListResults(ctx, w.Offset, w.Size)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no results found", ErrNotFound)
	}
	if rows == nil {
		rows = []repo.ResultRow{}
	}
	return &Page[repo.ResultRow]{Items: rows, Total: total, Page: w.Page, Size: w.Size}, nil
}

func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]repo.ResultRow, error) {
	rows, err := s.Repo.Leaderboard(ctx, util.Limit(limit))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no results found", ErrNotFound)
	}
	return rows, nil
}

func (s *QuizService) AddComment(ctx context.Context, in transport.CommentRequest) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	comment := strings.TrimSpace(in.UserComments)
	if username == "" || comment == "" {
		return nil, fmt.Errorf("%w: username and usercomments are required", ErrValidation)
	}

	user, err := s.Repo.SetComment(ctx, username, comment)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user does not exist", ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	user.UserComments = comment
	return user, nil
}

func (s *QuizService) ListComments(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.ListUserComments(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no comments found", ErrNotFound)
	}
	return users, nil
}
