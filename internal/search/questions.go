package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/online_quiz/internal/models"
)

const DefaultIndex = "questions"

var questionMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":            map[string]interface{}{"type": "long"},
			"questionText":  map[string]interface{}{"type": "text"},
			"choiceA":       map[string]interface{}{"type": "text"},
			"choiceB":       map[string]interface{}{"type": "text"},
			"choiceC":       map[string]interface{}{"type": "text"},
			"choiceD":       map[string]interface{}{"type": "text"},
			"correctChoice": map[string]interface{}{"type": "keyword"},
			"createdAt":     map[string]interface{}{"type": "date"},
			"updatedAt":     map[string]interface{}{"type": "date"},
		},
	},
}

// Questions is the full-text index over quiz questions.
type Questions struct {
	es    *elasticsearch.Client
	index string
}

func NewQuestions(es *elasticsearch.Client, index string) *Questions {
	if index == "" {
		index = DefaultIndex
	}
	return &Questions{es: es, index: index}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (q *Questions) EnsureIndex(ctx context.Context) error {
	res, err := q.es.Indices.Exists([]string{q.index}, q.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(questionMapping)
	if err != nil {
		return err
	}
	res, err = q.es.Indices.Create(q.index,
		q.es.Indices.Create.WithContext(ctx),
		q.es.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("index create: %w", err)
	}
	return checkResponse("index create", res)
}

func (q *Questions) IndexQuestion(ctx context.Context, question models.Question) error {
	body, err := encode(question)
	if err != nil {
		return err
	}
	res, err := q.es.Index(q.index, body,
		q.es.Index.WithContext(ctx),
		q.es.Index.WithDocumentID(strconv.FormatUint(uint64(question.ID), 10)),
		q.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index question: %w", err)
	}
	return checkResponse("index question", res)
}

func (q *Questions) Search(ctx context.Context, query string, from, size int) (int64, []models.Question, error) {
	body, err := encode(map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"questionText^2", "choiceA", "choiceB", "choiceC", "choiceD"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := q.es.Search(
		q.es.Search.WithContext(ctx),
		q.es.Search.WithIndex(q.index),
		q.es.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Question `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	out := make([]models.Question, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return r.Hits.Total.Value, out, nil
}

func encode(v interface{}) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return &buf, nil
}

func checkResponse(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), msg)
	}
	return nil
}
