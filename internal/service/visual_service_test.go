package service

import (
	"math"
	"math/rand"
	"testing"

	"havenmind_backend/internal/config"
	"havenmind_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func newTestVisualService() *VisualService {
	return NewVisualService(
		config.SanctuaryConfig{CanvasWidth: 800, CanvasHeight: 600},
		rand.New(rand.NewSource(42)),
	)
}

func TestEmotionColor(t *testing.T) {
	s := newTestVisualService()

	assert.Equal(t, "#FFD700", s.EmotionColor("joy"))
	assert.Equal(t, "#FFD700", s.EmotionColor("JOY"))
	assert.Equal(t, "#696969", s.EmotionColor("anxiety"))
	assert.Equal(t, defaultElementColor, s.EmotionColor("ennui"))
}

func TestSentimentEmotionBands(t *testing.T) {
	s := newTestVisualService()

	tests := []struct {
		score float64
		pool  []string
	}{
		{0.8, []string{"joy", "excitement", "gratitude", "love", "hope"}},
		{0.4, []string{"contentment", "calm", "peace", "optimism"}},
		{0.0, []string{"neutral", "contemplation", "acceptance"}},
		{-0.4, []string{"sadness", "worry", "disappointment", "longing"}},
		{-0.8, []string{"anger", "frustration", "despair", "anxiety"}},
	}

	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			assert.Contains(t, tt.pool, s.SentimentEmotion(tt.score))
		}
	}
}

func TestElementTypeBands(t *testing.T) {
	s := newTestVisualService()

	tests := []struct {
		score float64
		pool  []string
	}{
		{0.6, []string{"flower", "tree", "butterfly", "bird"}},
		{0.2, []string{"plant", "stone", "water", "cloud"}},
		{-0.2, []string{"rock", "moss", "mist", "stream"}},
		{-0.6, []string{"crystal", "cave", "shadow", "wind"}},
	}

	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			assert.Contains(t, tt.pool, s.ElementType(tt.score))
		}
	}
}

func TestElementSize(t *testing.T) {
	s := newTestVisualService()

	assert.InDelta(t, 1.0, s.ElementSize(0), 1e-9)
	assert.InDelta(t, 1.25, s.ElementSize(0.5), 1e-9)
	assert.InDelta(t, 1.25, s.ElementSize(-0.5), 1e-9)
	assert.InDelta(t, 1.5, s.ElementSize(1.0), 1e-9)
}

func TestPositionStaysInsideMargins(t *testing.T) {
	s := newTestVisualService()

	for i := 0; i < 100; i++ {
		x, y := s.Position(nil)
		assert.GreaterOrEqual(t, x, 50.0)
		assert.LessOrEqual(t, x, 750.0)
		assert.GreaterOrEqual(t, y, 50.0)
		assert.LessOrEqual(t, y, 550.0)
	}
}

func TestPositionAvoidsExistingElements(t *testing.T) {
	s := newTestVisualService()

	existing := []model.SanctuaryElement{
		{XPosition: 400, YPosition: 300},
	}

	for i := 0; i < 50; i++ {
		x, y := s.Position(existing)
		dist := math.Hypot(x-400, y-300)
		assert.GreaterOrEqual(t, dist, minElementDistance)
	}
}

func TestPositionGivesUpWhenCanvasIsFull(t *testing.T) {
	// a grid dense enough that no free spot exists
	s := newTestVisualService()

	var existing []model.SanctuaryElement
	for x := 0.0; x <= 800; x += 40 {
		for y := 0.0; y <= 600; y += 40 {
			existing = append(existing, model.SanctuaryElement{XPosition: x, YPosition: y})
		}
	}

	x, y := s.Position(existing)
	assert.GreaterOrEqual(t, x, 50.0)
	assert.LessOrEqual(t, x, 750.0)
	assert.GreaterOrEqual(t, y, 50.0)
	assert.LessOrEqual(t, y, 550.0)

	// the budget is 50 attempts and the last candidate is kept as is
	control := rand.New(rand.NewSource(42))
	var ex, ey float64
	for i := 0; i < 50; i++ {
		ex = 50 + control.Float64()*(800-100)
		ey = 50 + control.Float64()*(600-100)
	}
	assert.Equal(t, ex, x)
	assert.Equal(t, ey, y)
}
