package questions

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

//go:embed questions.json
var catalogJSON []byte

// Catalog is an in-memory question bank used when no database is configured.
type Catalog struct {
	questions []domain.Question
}

// Load parses the embedded mangrove catalogue.
func Load() (*Catalog, error) {
	return Parse(catalogJSON)
}

func Parse(data []byte) (*Catalog, error) {
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse question catalogue: %w", err)
	}
	for _, q := range questions {
		if err := validate(q); err != nil {
			return nil, err
		}
	}
	return &Catalog{questions: questions}, nil
}

func validate(q domain.Question) error {
	switch {
	case q.Id == "" || q.Prompt == "":
		return fmt.Errorf("%w: %q missing id or prompt", domain.ErrInvalidQuestion, q.Id)
	case len(q.Options) < 2:
		return fmt.Errorf("%w: %q needs at least two options", domain.ErrInvalidQuestion, q.Id)
	case q.CorrectOption < 0 || q.CorrectOption >= len(q.Options):
		return fmt.Errorf("%w: %q correct option out of range", domain.ErrInvalidQuestion, q.Id)
	case q.Points <= 0:
		return fmt.Errorf("%w: %q points must be positive", domain.ErrInvalidQuestion, q.Id)
	}
	return nil
}

func (c *Catalog) All() []domain.Question {
	all := make([]domain.Question, len(c.questions))
	copy(all, c.questions)
	return all
}

// RandomQuestions implements game.QuestionBank with min(count, size) shuffled questions.
func (c *Catalog) RandomQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 || len(c.questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	picked := make([]domain.Question, 0, min(count, len(c.questions)))
	for _, i := range rand.Perm(len(c.questions)) {
		if len(picked) == count {
			break
		}
		picked = append(picked, c.questions[i])
	}
	return picked, nil
}
