package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_quiz/internal/logging"
	"github.com/Skotchmaster/online_quiz/internal/service"
	"github.com/Skotchmaster/online_quiz/internal/transport"
	"github.com/Skotchmaster/online_quiz/internal/util"
)

type QuizHTTP struct {
	Svc *service.QuizService
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (h *QuizHTTP) CreateQuestion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "quiz_create_question")

	var req transport.QuestionRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_question_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	q, err := h.Svc.CreateQuestion(ctx, req)
	if err != nil {
		return toHTTPError(c, "quiz_create_question", err)
	}
	l.Info("question_created", "question_id", q.ID)
	return c.JSON(http.StatusCreated, q)
}

func (h *QuizHTTP) ListQuestions(c echo.Context) error {
	qs, err := h.Svc.ListQuestions(c.Request().Context())
	if err != nil {
		return toHTTPError(c, "quiz_list_questions", err)
	}
	return c.JSON(http.StatusOK, qs)
}

func (h *QuizHTTP) SearchQuestions(c echo.Context) error {
	page, err := h.Svc.SearchQuestions(
		c.Request().Context(),
		c.QueryParam("q"),
		queryInt(c, "page", 1),
		queryInt(c, "size", 10),
	)
	if err != nil {
		return toHTTPError(c, "quiz_search_questions", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *QuizHTTP) SubmitScore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "quiz_submit_score")

	var req transport.ScoreRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("submit_score_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.SubmitScore(ctx, req)
	if err != nil {
		return toHTTPError(c, "quiz_submit_score", err)
	}
	l.Info("score_submitted", "result_id", res.ID, "score", res.Score)
	return c.JSON(http.StatusCreated, res)
}

func (h *QuizHTTP) ListResults(c echo.Context) error {
	page, err := h.Svc.ListResults(c.Request().Context(), queryInt(c, "page", 1), queryInt(c, "size", 10))
	if err != nil {
		return toHTTPError(c, "quiz_list_results", err)
	}
	base := baseURL(c)
	for i := range page.Items {
		page.Items[i].ProfileImage = util.AbsoluteURL(base, page.Items[i].ProfileImage)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"results": page.Items,
		"total":   page.Total,
		"page":    page.Page,
		"size":    page.Size,
	})
}

func (h *QuizHTTP) HighestScorer(c echo.Context) error {
	rows, err := h.Svc.Leaderboard(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		return toHTTPError(c, "quiz_highest_scorer", err)
	}

	base := baseURL(c)
	out := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, echo.Map{
			"userId":       r.UserID,
			"username":     r.Username,
			"profileImage": util.AbsoluteURL(base, r.ProfileImage),
			"score":        r.Score,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *QuizHTTP) AddComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "quiz_add_comment")

	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_comment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.AddComment(ctx, req)
	if err != nil {
		return toHTTPError(c, "quiz_add_comment", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Comment saved",
		"username":     u.Username,
		"usercomments": u.UserComments,
	})
}

func (h *QuizHTTP) ListComments(c echo.Context) error {
	users, err := h.Svc.ListComments(c.Request().Context())
	if err != nil {
		return toHTTPError(c, "quiz_list_comments", err)
	}

	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":           u.ID,
			"username":     u.Username,
			"email":        u.Email,
			"usercomments": u.UserComments,
			"updatedAt":    u.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
