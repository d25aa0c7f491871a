package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"havenmind_backend/pkg/logger"

	govader "github.com/jonreiter/govader"
	"go.uber.org/zap"
)

// SentimentAnalysis is the full result of analyzing one piece of journal text.
type SentimentAnalysis struct {
	SentimentScore float64            `json:"sentiment_score"`
	Subjectivity   float64            `json:"subjectivity"`
	PrimaryEmotion string             `json:"primary_emotion"`
	Emotions       map[string]float64 `json:"emotions"`
	Intensity      float64            `json:"intensity"`
	Themes         []string           `json:"themes"`
	Confidence     float64            `json:"confidence"`
	WordCount      int                `json:"word_count"`
}

// emotionKeywords maps each emotion to the lexicon matched against every word
// of the cleaned text. A keyword matches when it appears as a substring of a
// word, so "caring" also matches "uncaring".
var emotionKeywords = map[string][]string{
	"joy":            {"happy", "excited", "delighted", "thrilled", "ecstatic", "cheerful", "elated"},
	"love":           {"love", "adore", "cherish", "affection", "caring", "devoted", "tender"},
	"gratitude":      {"grateful", "thankful", "blessed", "appreciative", "fortunate"},
	"hope":           {"hopeful", "optimistic", "confident", "positive", "bright", "promising"},
	"calm":           {"peaceful", "serene", "tranquil", "relaxed", "calm", "content", "soothed"},
	"sadness":        {"sad", "down", "blue", "melancholy", "gloomy", "dejected", "sorrowful"},
	"anger":          {"angry", "furious", "mad", "irritated", "annoyed", "frustrated", "livid"},
	"fear":           {"scared", "afraid", "terrified", "anxious", "worried", "nervous", "fearful"},
	"anxiety":        {"anxious", "stressed", "overwhelmed", "panicked", "tense", "uneasy"},
	"loneliness":     {"lonely", "isolated", "alone", "abandoned", "disconnected", "empty"},
	"confusion":      {"confused", "uncertain", "lost", "bewildered", "puzzled", "unclear"},
	"disappointment": {"disappointed", "let down", "discouraged", "deflated", "disheartened"},
}

var themePatterns = map[string]*regexp.Regexp{
	"growth":        regexp.MustCompile(`\b(grow|growth|develop|progress|improve|better|learning|evolve)\b`),
	"resilience":    regexp.MustCompile(`\b(overcome|strong|survive|endure|bounce back|recover|resilient)\b`),
	"gratitude":     regexp.MustCompile(`\b(thank|grateful|appreciate|blessed|lucky|fortunate)\b`),
	"self_care":     regexp.MustCompile(`\b(care|rest|relax|treat myself|self-love|nurture|wellness)\b`),
	"relationships": regexp.MustCompile(`\b(friend|family|love|connection|together|support|bond)\b`),
	"mindfulness":   regexp.MustCompile(`\b(present|aware|mindful|focus|breathe|meditate|conscious)\b`),
	"goals":         regexp.MustCompile(`\b(achieve|goal|dream|aspire|ambition|future|success)\b`),
	"healing":       regexp.MustCompile(`\b(heal|recover|mend|restore|peace|wholeness|therapy)\b`),
	"creativity":    regexp.MustCompile(`\b(create|art|music|write|express|imagine|inspire)\b`),
	"spirituality":  regexp.MustCompile(`\b(spirit|soul|meaning|purpose|faith|divine|sacred)\b`),
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctStripRe = regexp.MustCompile(`[^\w\s.,!?-]`)
)

// SentimentService scores journal text with VADER and layers keyword emotion
// detection and theme extraction on top. Analyze never fails: any internal
// panic degrades to a neutral fallback result.
type SentimentService struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentService() *SentimentService {
	return &SentimentService{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Analyze runs the full pipeline on raw journal text.
func (s *SentimentService) Analyze(text string) (result SentimentAnalysis) {
	wordCount := len(strings.Fields(text))

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("sentiment analysis panicked, using fallback",
				zap.Any("panic", r))
			result = fallbackAnalysis(wordCount)
		}
	}()

	cleaned := cleanText(text)
	if cleaned == "" {
		return fallbackAnalysis(wordCount)
	}

	scores := s.analyzer.PolarityScores(cleaned)
	score := scores.Compound
	subjectivity := clamp(1.0-scores.Neutral, 0.0, 1.0)

	emotions := detectEmotions(cleaned)
	primary := primaryEmotion(emotions, score)
	themes := extractThemes(cleaned)

	var emotionSum float64
	for _, v := range emotions {
		emotionSum += v
	}

	intensity := math.Min(round3(math.Abs(score)+subjectivity*0.3+emotionSum*0.2), 1.0)
	confidence := clamp(
		round3(0.5+math.Abs(score)*0.3+math.Min(emotionSum, 0.3)-math.Abs(subjectivity-0.5)*0.1),
		0.1, 1.0)

	return SentimentAnalysis{
		SentimentScore: round3(score),
		Subjectivity:   round3(subjectivity),
		PrimaryEmotion: primary,
		Emotions:       emotions,
		Intensity:      intensity,
		Themes:         themes,
		Confidence:     confidence,
		WordCount:      wordCount,
	}
}

// cleanText normalizes whitespace, strips unusual punctuation and lowercases.
func cleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctStripRe.ReplaceAllString(text, "")
	return strings.ToLower(strings.TrimSpace(text))
}

func detectEmotions(cleaned string) map[string]float64 {
	words := strings.Fields(cleaned)
	emotions := make(map[string]float64)
	if len(words) == 0 {
		return emotions
	}

	for emotion, keywords := range emotionKeywords {
		count := 0
		for _, word := range words {
			for _, keyword := range keywords {
				if strings.Contains(word, keyword) {
					count++
					break
				}
			}
		}
		if count > 0 {
			emotions[emotion] = round3(float64(count) / float64(len(words)))
		}
	}
	return emotions
}

// primaryEmotion picks the strongest detected emotion; ties break
// lexicographically so results stay deterministic. With no keyword hits the
// polarity score alone decides.
func primaryEmotion(emotions map[string]float64, score float64) string {
	if len(emotions) > 0 {
		names := make([]string, 0, len(emotions))
		for name := range emotions {
			names = append(names, name)
		}
		sort.Strings(names)

		best := names[0]
		for _, name := range names[1:] {
			if emotions[name] > emotions[best] {
				best = name
			}
		}
		return best
	}

	switch {
	case score > 0.6:
		return "joy"
	case score > 0.2:
		return "calm"
	case score > -0.2:
		return "neutral"
	case score > -0.6:
		return "sadness"
	default:
		return "anxiety"
	}
}

func extractThemes(cleaned string) []string {
	themes := make([]string, 0, 4)
	names := make([]string, 0, len(themePatterns))
	for name := range themePatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if themePatterns[name].MatchString(cleaned) {
			themes = append(themes, name)
		}
	}
	if len(themes) == 0 {
		themes = append(themes, "reflection")
	}
	return themes
}

func fallbackAnalysis(wordCount int) SentimentAnalysis {
	return SentimentAnalysis{
		SentimentScore: 0.0,
		Subjectivity:   0.5,
		PrimaryEmotion: "neutral",
		Emotions:       map[string]float64{},
		Intensity:      0.1,
		Themes:         []string{"reflection"},
		Confidence:     0.3,
		WordCount:      wordCount,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
