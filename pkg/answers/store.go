package answers

import (
	"sync"

	"github.com/goliatone/go-regform/pkg/model"
)

// Lookup resolves the current answer for a question id. The boolean is false
// when no answer exists.
type Lookup interface {
	Get(questionID int) (model.Answer, bool)
}

// LookupFunc adapts a function into a Lookup.
type LookupFunc func(questionID int) (model.Answer, bool)

// Get delegates to the underlying function.
func (fn LookupFunc) Get(questionID int) (model.Answer, bool) {
	return fn(questionID)
}

// Store tracks at most one answer per question id. Insertion order is kept so
// submission payloads are deterministic.
type Store struct {
	mu     sync.RWMutex
	order  []int
	values map[int]string
}

// NewStore seeds the store with the provided answers.
func NewStore(seed ...model.Answer) *Store {
	s := &Store{}
	s.ReplaceAll(seed)
	return s
}

// Upsert normalizes value to its string form and records it for questionID,
// replacing any previous answer.
func (s *Store) Upsert(questionID int, value any) model.Answer {
	normalized := Normalize(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[int]string)
	}
	if _, exists := s.values[questionID]; !exists {
		s.order = append(s.order, questionID)
	}
	s.values[questionID] = normalized
	return model.Answer{QuestionID: questionID, Value: normalized}
}

// Get returns the answer for questionID.
func (s *Store) Get(questionID int) (model.Answer, bool) {
	if s == nil {
		return model.Answer{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[questionID]
	if !ok {
		return model.Answer{}, false
	}
	return model.Answer{QuestionID: questionID, Value: value}, true
}

// ReplaceAll discards the current answers and installs answers in a single
// step. When ids repeat, the last entry wins.
func (s *Store) ReplaceAll(answers []model.Answer) {
	values := make(map[int]string, len(answers))
	order := make([]int, 0, len(answers))
	for _, answer := range answers {
		if _, exists := values[answer.QuestionID]; !exists {
			order = append(order, answer.QuestionID)
		}
		values[answer.QuestionID] = answer.Value
	}

	s.mu.Lock()
	s.values = values
	s.order = order
	s.mu.Unlock()
}

// All returns a copy of every answer in insertion order.
func (s *Store) All() []model.Answer {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, model.Answer{QuestionID: id, Value: s.values[id]})
	}
	return out
}

// Len reports how many questions have an answer.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
