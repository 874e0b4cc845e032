package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trivia-game-service/internal/domain"
)

// HTTPSource fetches one question per request from a JSON endpoint.
// Expected payload:
//
//	{
//	  "id": "abc123",
//	  "type": "multiple-choice" | "true-false" | "free-response",
//	  "question": "...",
//	  "correct_answers": ["..."],
//	  "incorrect_answers": ["..."],
//	  "difficulty": "easy"
//	}
type HTTPSource struct {
	name   string
	url    string
	client *http.Client
}

func NewHTTPSource(name, url string) *HTTPSource {
	return &HTTPSource{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return s.name }

type httpQuestionPayload struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Question         string   `json:"question"`
	CorrectAnswers   []string `json:"correct_answers"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Difficulty       string   `json:"difficulty"`
}

func (s *HTTPSource) FetchOne(ctx context.Context, _ FetchOptions) (RawQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return RawQuestion{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return RawQuestion{}, fmt.Errorf("fetch question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RawQuestion{}, fmt.Errorf("fetch question: unexpected status %d", resp.StatusCode)
	}

	var payload httpQuestionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return RawQuestion{}, fmt.Errorf("decode question: %w", err)
	}
	if payload.ID == "" || payload.Question == "" {
		return RawQuestion{}, ErrNoData
	}

	qt, err := parseQuestionType(payload.Type)
	if err != nil {
		return RawQuestion{}, err
	}
	return RawQuestion{
		ID:               payload.ID,
		Type:             qt,
		Text:             payload.Question,
		CorrectAnswers:   payload.CorrectAnswers,
		IncorrectAnswers: payload.IncorrectAnswers,
		Difficulty:       payload.Difficulty,
	}, nil
}

func parseQuestionType(raw string) (domain.QuestionType, error) {
	switch raw {
	case "multiple-choice", "multiple", "boolean-choice":
		return domain.MultipleChoice, nil
	case "true-false", "boolean":
		return domain.TrueFalse, nil
	case "free-response", "text", "question-answer":
		return domain.FreeResponse, nil
	default:
		return 0, fmt.Errorf("unknown question type %q", raw)
	}
}
