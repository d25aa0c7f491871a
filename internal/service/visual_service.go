package service

import (
	"math"
	"math/rand"
	"strings"
	"sync"

	"havenmind_backend/internal/config"
	"havenmind_backend/internal/model"
)

// emotionColors maps an emotion to the hex color its sanctuary elements use.
var emotionColors = map[string]string{
	"joy":            "#FFD700",
	"excitement":     "#FF6B35",
	"gratitude":      "#98D8C8",
	"love":           "#FF69B4",
	"hope":           "#87CEEB",
	"contentment":    "#DDA0DD",
	"calm":           "#B0E0E6",
	"peace":          "#F0F8FF",
	"optimism":       "#FFA07A",
	"neutral":        "#D3D3D3",
	"contemplation":  "#9370DB",
	"acceptance":     "#F5DEB3",
	"sadness":        "#4169E1",
	"worry":          "#8B7D6B",
	"disappointment": "#708090",
	"longing":        "#DDA0DD",
	"anger":          "#DC143C",
	"frustration":    "#CD5C5C",
	"despair":        "#2F4F4F",
	"anxiety":        "#696969",
}

const defaultElementColor = "#D3D3D3"

const minElementDistance = 80.0

// VisualService translates sentiment into the visual vocabulary of the
// sanctuary: element types, colors, sizes and canvas positions.
type VisualService struct {
	canvasWidth  float64
	canvasHeight float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewVisualService(cfg config.SanctuaryConfig, rng *rand.Rand) *VisualService {
	return &VisualService{
		canvasWidth:  float64(cfg.CanvasWidth),
		canvasHeight: float64(cfg.CanvasHeight),
		rng:          rng,
	}
}

// EmotionColor resolves the display color for an emotion, case-insensitively.
func (s *VisualService) EmotionColor(emotion string) string {
	if color, ok := emotionColors[strings.ToLower(emotion)]; ok {
		return color
	}
	return defaultElementColor
}

// SentimentEmotion picks a display emotion from the band the score falls in.
func (s *VisualService) SentimentEmotion(score float64) string {
	var pool []string
	switch {
	case score > 0.6:
		pool = []string{"joy", "excitement", "gratitude", "love", "hope"}
	case score > 0.2:
		pool = []string{"contentment", "calm", "peace", "optimism"}
	case score > -0.2:
		pool = []string{"neutral", "contemplation", "acceptance"}
	case score > -0.6:
		pool = []string{"sadness", "worry", "disappointment", "longing"}
	default:
		pool = []string{"anger", "frustration", "despair", "anxiety"}
	}
	return pool[s.intn(len(pool))]
}

// ElementType picks an element kind from the score's band.
func (s *VisualService) ElementType(score float64) string {
	var pool []string
	switch {
	case score > 0.4:
		pool = []string{"flower", "tree", "butterfly", "bird"}
	case score > 0:
		pool = []string{"plant", "stone", "water", "cloud"}
	case score > -0.4:
		pool = []string{"rock", "moss", "mist", "stream"}
	default:
		pool = []string{"crystal", "cave", "shadow", "wind"}
	}
	return pool[s.intn(len(pool))]
}

// ElementSize scales with emotional intensity.
func (s *VisualService) ElementSize(score float64) float64 {
	return 1.0 + math.Abs(score)*0.5
}

// Position finds a canvas spot at least minElementDistance away from every
// existing element. After 50 failed attempts the last candidate is used as
// is; a crowded sanctuary is better than a stuck one.
func (s *VisualService) Position(existing []model.SanctuaryElement) (float64, float64) {
	var x, y float64
	for attempt := 0; attempt < 50; attempt++ {
		x = s.randomCoord(s.canvasWidth)
		y = s.randomCoord(s.canvasHeight)

		tooClose := false
		for _, el := range existing {
			dx := x - el.XPosition
			dy := y - el.YPosition
			if math.Sqrt(dx*dx+dy*dy) < minElementDistance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			break
		}
	}
	return x, y
}

func (s *VisualService) randomCoord(extent float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 50 + s.rng.Float64()*(extent-100)
}

func (s *VisualService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
