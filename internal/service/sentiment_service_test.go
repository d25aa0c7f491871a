package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeGratitudeEntry(t *testing.T) {
	s := NewSentimentService()

	result := s.Analyze("I am so grateful for my wonderful friends. I feel blessed and happy today!")

	assert.Greater(t, result.SentimentScore, 0.0)
	assert.Contains(t, result.Emotions, "gratitude")
	assert.Contains(t, result.Themes, "gratitude")
	assert.Equal(t, 14, result.WordCount)
}

func TestAnalyzeNegativeEntry(t *testing.T) {
	s := NewSentimentService()

	result := s.Analyze("I feel so lonely and sad. Everything seems hopeless and I am overwhelmed.")

	assert.Less(t, result.SentimentScore, 0.0)
	assert.Contains(t, result.Emotions, "loneliness")
	assert.Contains(t, result.Emotions, "sadness")
}

func TestAnalyzeBounds(t *testing.T) {
	s := NewSentimentService()

	entries := []string{
		"Today was fine.",
		"I LOVE LOVE LOVE this amazing wonderful fantastic day!!!",
		"terrible horrible awful worst day ever, angry and furious",
		"meeting at three, groceries after",
	}

	for _, entry := range entries {
		result := s.Analyze(entry)

		assert.GreaterOrEqual(t, result.SentimentScore, -1.0)
		assert.LessOrEqual(t, result.SentimentScore, 1.0)
		assert.GreaterOrEqual(t, result.Subjectivity, 0.0)
		assert.LessOrEqual(t, result.Subjectivity, 1.0)
		assert.GreaterOrEqual(t, result.Intensity, 0.0)
		assert.LessOrEqual(t, result.Intensity, 1.0)
		assert.GreaterOrEqual(t, result.Confidence, 0.1)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.NotEmpty(t, result.PrimaryEmotion)
		assert.NotEmpty(t, result.Themes)
	}
}

func TestAnalyzeEmptyTextFallsBack(t *testing.T) {
	s := NewSentimentService()

	result := s.Analyze("   ")

	assert.Equal(t, fallbackAnalysis(0), result)
	assert.Equal(t, "neutral", result.PrimaryEmotion)
	assert.Equal(t, []string{"reflection"}, result.Themes)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "hello   world\n\ttest", "hello world test"},
		{"strips unusual punctuation", "great day @#$% here!", "great day  here!"},
		{"lowercases", "Hello World", "hello world"},
		{"keeps basic punctuation", "wait, really? yes!", "wait, really? yes!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}

func TestDetectEmotionsSubstringMatch(t *testing.T) {
	// "caring" should be found inside "uncaring"
	emotions := detectEmotions("he was uncaring")
	assert.Contains(t, emotions, "love")
}

func TestPrimaryEmotionTieBreaksLexicographically(t *testing.T) {
	emotions := map[string]float64{"sadness": 0.5, "anger": 0.5}
	assert.Equal(t, "anger", primaryEmotion(emotions, -0.5))
}

func TestPrimaryEmotionScoreLadder(t *testing.T) {
	empty := map[string]float64{}

	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "joy"},
		{0.4, "calm"},
		{0.0, "neutral"},
		{-0.4, "sadness"},
		{-0.9, "anxiety"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, primaryEmotion(empty, tt.score))
	}
}

func TestExtractThemesDefault(t *testing.T) {
	themes := extractThemes("the sky was cloudy")
	assert.Equal(t, []string{"reflection"}, themes)
}

func TestExtractThemesSorted(t *testing.T) {
	themes := extractThemes("i want to grow and heal and appreciate my family")

	require.NotEmpty(t, themes)
	assert.True(t, sortedStrings(themes), "themes should be sorted: %v", themes)
	assert.Contains(t, themes, "growth")
	assert.Contains(t, themes, "healing")
	assert.Contains(t, themes, "gratitude")
	assert.Contains(t, themes, "relationships")
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if strings.Compare(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}
