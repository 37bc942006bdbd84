package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xxxsen/oneiro/internal/model"
	appErr "github.com/xxxsen/oneiro/internal/pkg/errors"
)

func TestInterpretRejectsEmptyDream(t *testing.T) {
	s := NewInterpretService(nil, nil, nil, 100)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Interpret(context.Background(), text, nil, "rag")
		assert.ErrorIs(t, err, appErr.ErrInvalid)
	}
}

func TestInterpretRejectsOversizedDream(t *testing.T) {
	s := NewInterpretService(nil, nil, nil, 100)
	_, err := s.Interpret(context.Background(), strings.Repeat("a", 101), nil, "rag")
	assert.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestInterpretRejectsUnknownStrategy(t *testing.T) {
	s := NewInterpretService(nil, nil, nil, 100)
	_, err := s.Interpret(context.Background(), "a dream", nil, "oracle")
	assert.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestFollowupRejectsEmptyQuestion(t *testing.T) {
	s := NewInterpretService(nil, nil, nil, 100)
	_, err := s.Followup(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestRequestKeyStableAcrossContextOrder(t *testing.T) {
	a := requestKey("rag", "dream", model.UserContext{"stress_level": "high", "emotional_state": "anxious"})
	b := requestKey("rag", "dream", model.UserContext{"emotional_state": "anxious", "stress_level": "high"})
	assert.Equal(t, a, b)
}

func TestRequestKeyVariesByStrategy(t *testing.T) {
	a := requestKey("rag", "dream", nil)
	b := requestKey("agentic", "dream", nil)
	assert.NotEqual(t, a, b)
}
