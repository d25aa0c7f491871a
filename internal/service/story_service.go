package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"havenmind_backend/internal/model"
	"havenmind_backend/internal/provider"
	"havenmind_backend/internal/repository"
	"havenmind_backend/internal/util"
	"havenmind_backend/pkg/logger"
	"havenmind_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const storytellerSystemPrompt = "You are a master storyteller creating therapeutic stories for emotional healing and growth."

// StorySessionContext captures the sanctuary state a story is grounded in.
type StorySessionContext struct {
	SessionID         string                   `json:"session_id"`
	RecentEmotions    []string                 `json:"recent_emotions"`
	IdentifiedThemes  []string                 `json:"identified_themes"`
	SentimentTrend    string                   `json:"sentiment_trend"`
	DominantEmotion   string                   `json:"dominant_emotion"`
	SanctuaryElements []map[string]interface{} `json:"sanctuary_elements"`
	TotalElements     int                      `json:"total_elements"`
	AvgSentiment      float64                  `json:"avg_sentiment"`
	JournalEntryCount int                      `json:"journal_entry_count"`
}

// GeneratedStory is a processed story ready to persist.
type GeneratedStory struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Style       string `json:"style"`
	Theme       string `json:"theme"`
	ReadingTime int    `json:"reading_time"`
	WordCount   int    `json:"word_count"`
}

// StoryRecommendation suggests a style and theme for the next story.
type StoryRecommendation struct {
	RecommendedStyle string `json:"recommended_style"`
	RecommendedTheme string `json:"recommended_theme"`
	Reason           string `json:"reason"`
}

// CatalogEntry is one style or theme of the public story catalog.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var storyStyleInstructions = map[string]string{
	"allegory":   "Create an allegorical story with symbolic characters and situations that mirror the user's emotional journey. Use metaphors and symbols throughout. The story should have a clear moral or insight that relates to therapeutic growth.",
	"fairy_tale": "Write in the style of a healing fairy tale with magical elements, gentle wisdom, and a hopeful ending. Include elements like wise animals, magical forests, or benevolent spirits. Focus on transformation and wonder.",
	"meditation": "Create a meditative, contemplative narrative that guides the reader through a peaceful inner journey. Use sensory details, breathing imagery, and calming natural settings. The pace should be slow and reflective.",
	"adventure":  "Write an uplifting adventure story where the protagonist faces challenges and discovers inner strength. Include elements of courage, discovery, and personal growth. The journey should mirror therapeutic progress.",
	"wisdom":     "Tell a wisdom story in the tradition of ancient parables or teachings. Include a wise character who shares insights about life, healing, and growth. Focus on timeless truths and gentle guidance.",
}

var storyStyleTitles = map[string][]string{
	"allegory":   {"The Garden of Understanding", "The Bridge of Becoming", "The Mirror of Truth", "The Lighthouse Within"},
	"fairy_tale": {"The Enchanted Sanctuary", "The Wise Tree's Gift", "The Crystal of Healing", "The Magic of Growing"},
	"meditation": {"A Journey to Stillness", "Breathing with the Earth", "The Peaceful Path Within", "Moments of Grace"},
	"adventure":  {"The Quest for Inner Strength", "Journey to the Hidden Valley", "The Courage to Continue", "Adventure of the Heart"},
	"wisdom":     {"The Teacher Within", "Lessons from the Ancient Oak", "The Wisdom of Seasons", "Words from the Heart"},
}

var storyThemeTitles = map[string][]string{
	"overcoming_challenges":        {"Rising from the Storm", "The Mountain's Lesson"},
	"transformation_and_growth":    {"The Butterfly's Promise", "Seeds of Change"},
	"finding_inner_light":          {"The Candle Within", "Light in the Darkness"},
	"connection_and_belonging":     {"The Circle of Hearts", "Finding Home"},
	"finding_peace_in_uncertainty": {"Dancing with the Unknown", "Peace in the Storm"},
	"the_healing_journey":          {"Steps Toward Wholeness", "The Healing Garden"},
	"present_moment_awareness":     {"The Gift of Now", "Here in This Moment"},
	"discovering_inner_wisdom":     {"The Voice Within", "Ancient Knowing"},
}

// StoryStyles is the public catalog of story styles.
var StoryStyles = []CatalogEntry{
	{"allegory", "Allegory", "Symbolic stories that mirror your emotional journey with metaphorical characters and situations."},
	{"fairy_tale", "Fairy Tale", "Magical stories with enchanted elements, wise creatures, and transformative adventures."},
	{"meditation", "Meditation", "Contemplative narratives that guide you through peaceful inner journeys and mindful reflection."},
	{"adventure", "Adventure", "Uplifting tales of courage and discovery that mirror your personal growth journey."},
	{"wisdom", "Wisdom Story", "Ancient parable-style stories that share timeless insights about healing and growth."},
}

// StoryThemes is the public catalog of story themes.
var StoryThemes = []CatalogEntry{
	{"overcoming_challenges", "Overcoming Challenges", "Stories about resilience, strength, and rising above difficulties."},
	{"transformation_and_growth", "Transformation & Growth", "Tales of personal evolution, change, and reaching your potential."},
	{"finding_inner_light", "Finding Inner Light", "Stories about discovering joy, hope, and the bright spots in life."},
	{"connection_and_belonging", "Connection & Belonging", "Narratives about relationships, community, and finding your place."},
	{"finding_peace_in_uncertainty", "Peace in Uncertainty", "Stories about finding calm and acceptance amid life's unknowns."},
	{"the_healing_journey", "The Healing Journey", "Tales of recovery, self-care, and the process of becoming whole."},
	{"present_moment_awareness", "Present Moment Awareness", "Stories about mindfulness, being here now, and finding peace in the present."},
	{"discovering_inner_wisdom", "Discovering Inner Wisdom", "Narratives about trusting yourself and accessing your inner knowledge."},
}

var (
	storyTitleRe       = regexp.MustCompile(`(?m)^#\s*(.+)$|^Title:\s*(.+)$|^\*\*(.+)\*\*$`)
	excessNewlinesRe   = regexp.MustCompile(`\n\s*\n\s*\n`)
	positiveEmotionSet = map[string]bool{"joy": true, "love": true, "gratitude": true, "hope": true, "contentment": true, "calm": true, "peace": true}
	negativeEmotionSet = map[string]bool{"sadness": true, "anger": true, "anxiety": true, "fear": true, "disappointment": true, "frustration": true}
)

// storyStore is the subset of repository.StoryRepository the service uses.
type storyStore interface {
	Create(*model.Story) error
	FindByID(uint) (*model.Story, error)
	FindBySession(string, int, int) ([]model.Story, error)
	Delete(uint) error
}

// StoryService generates therapeutic stories from sanctuary context, with a
// provider chain and hand-written fallback stories when every provider fails.
type StoryService struct {
	providers   []provider.TextProvider
	journalRepo *repository.JournalRepository
	elementRepo *repository.ElementRepository
	storyRepo   storyStore

	mu  sync.Mutex
	rng *rand.Rand
}

func NewStoryService(
	providers []provider.TextProvider,
	journalRepo *repository.JournalRepository,
	elementRepo *repository.ElementRepository,
	storyRepo storyStore,
	rng *rand.Rand,
) *StoryService {
	return &StoryService{
		providers:   providers,
		journalRepo: journalRepo,
		elementRepo: elementRepo,
		storyRepo:   storyRepo,
		rng:         rng,
	}
}

// Generate creates a story for a session and persists it. The requested theme
// and style are optional; missing values are derived from the sanctuary.
func (s *StoryService) Generate(ctx context.Context, sessionID, style, requestedTheme string) (*model.Story, error) {
	if style == "" {
		style = "allegory"
	}

	sessionCtx, err := s.SessionContext(sessionID)
	if err != nil {
		return nil, err
	}

	theme := requestedTheme
	if theme == "" {
		theme = determineStoryTheme(sessionCtx)
	}

	prompt := storyPrompt(sessionCtx, style, theme)
	content := s.generateContent(ctx, prompt)

	var generated GeneratedStory
	if content == "" {
		generated = s.fallbackStory(style, theme)
	} else {
		generated = s.processContent(content, style, theme)
	}

	story := &model.Story{
		SessionID:   sessionID,
		Title:       generated.Title,
		Content:     generated.Content,
		Style:       generated.Style,
		Theme:       generated.Theme,
		ReadingTime: generated.ReadingTime,
		SanctuaryContext: model.JSONMap{
			"recent_emotions":     sessionCtx.RecentEmotions,
			"identified_themes":   sessionCtx.IdentifiedThemes,
			"sentiment_trend":     sessionCtx.SentimentTrend,
			"dominant_emotion":    sessionCtx.DominantEmotion,
			"total_elements":      sessionCtx.TotalElements,
			"avg_sentiment":       sessionCtx.AvgSentiment,
			"journal_entry_count": sessionCtx.JournalEntryCount,
		},
		EmotionContext: sessionCtx.DominantEmotion,
	}
	if err := s.storyRepo.Create(story); err != nil {
		return nil, err
	}
	return story, nil
}

// SessionContext assembles the sanctuary snapshot a story is grounded in.
func (s *StoryService) SessionContext(sessionID string) (*StorySessionContext, error) {
	entries, err := s.journalRepo.RecentBySession(sessionID, 20)
	if err != nil {
		return nil, err
	}
	elements, err := s.elementRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	recentEmotions := make([]string, 0, len(entries))
	themeSet := map[string]bool{}
	var sentimentSum float64

	for _, entry := range entries {
		recentEmotions = append(recentEmotions, entry.Emotion)
		sentimentSum += entry.SentimentScore

		if entry.AnalyzedThemes != nil {
			if raw, ok := entry.AnalyzedThemes["themes"]; ok {
				if list, ok := raw.([]interface{}); ok {
					for _, item := range list {
						if theme, ok := item.(string); ok {
							themeSet[theme] = true
						}
					}
				}
			}
		}
	}

	avgSentiment := 0.0
	trend := "neutral"
	if len(entries) > 0 {
		avgSentiment = sentimentSum / float64(len(entries))
		if avgSentiment > 0.3 {
			trend = "positive"
		} else if avgSentiment < -0.3 {
			trend = "negative"
		}
	}

	dominant := "neutral"
	if len(recentEmotions) > 0 {
		counts := map[string]int{}
		for _, emotion := range recentEmotions {
			counts[emotion]++
		}
		best := 0
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if counts[name] > best {
				best = counts[name]
				dominant = name
			}
		}
	}

	themes := make([]string, 0, len(themeSet))
	for theme := range themeSet {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	elementData := make([]map[string]interface{}, 0, len(elements))
	for _, element := range elements {
		elementData = append(elementData, map[string]interface{}{
			"element_type":    element.ElementType,
			"emotion":         element.Emotion,
			"sentiment_score": element.SentimentScore,
			"created_at":      element.CreatedAt.Format(time.RFC3339),
		})
	}

	if len(recentEmotions) > 10 {
		recentEmotions = recentEmotions[:10]
	}

	return &StorySessionContext{
		SessionID:         sessionID,
		RecentEmotions:    recentEmotions,
		IdentifiedThemes:  themes,
		SentimentTrend:    trend,
		DominantEmotion:   dominant,
		SanctuaryElements: elementData,
		TotalElements:     len(elementData),
		AvgSentiment:      avgSentiment,
		JournalEntryCount: len(entries),
	}, nil
}

func (s *StoryService) generateContent(ctx context.Context, prompt string) string {
	opts := provider.TextOptions{MaxTokens: 1000, Temperature: 0.8, TopP: 0.9}
	for _, p := range s.providers {
		start := time.Now()
		content, err := p.Complete(ctx, storytellerSystemPrompt, prompt, opts)
		monitoring.ObserveAICall(p.Name(), start, err)
		if err != nil {
			logger.Log.Warn("story provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			return content
		}
	}
	return ""
}

func determineStoryTheme(ctx *StorySessionContext) string {
	hasTheme := func(name string) bool {
		for _, theme := range ctx.IdentifiedThemes {
			if theme == name {
				return true
			}
		}
		return false
	}
	hasEmotion := func(names ...string) bool {
		for _, candidate := range names {
			for _, emotion := range ctx.RecentEmotions {
				if emotion == candidate {
					return true
				}
			}
		}
		return false
	}

	switch {
	case hasTheme("resilience") || hasEmotion("anger", "frustration", "sadness"):
		return "overcoming_challenges"
	case hasTheme("growth") || hasTheme("goals"):
		return "transformation_and_growth"
	case hasTheme("gratitude") || hasEmotion("joy", "love", "contentment"):
		return "finding_inner_light"
	case hasTheme("relationships"):
		return "connection_and_belonging"
	case hasEmotion("anxiety", "worry"):
		return "finding_peace_in_uncertainty"
	case hasTheme("healing") || hasTheme("self_care"):
		return "the_healing_journey"
	case hasTheme("mindfulness"):
		return "present_moment_awareness"
	default:
		return "discovering_inner_wisdom"
	}
}

func storyPrompt(ctx *StorySessionContext, style, theme string) string {
	styleInstructions, ok := storyStyleInstructions[style]
	if !ok {
		styleInstructions = storyStyleInstructions["allegory"]
	}

	recentEmotions := ctx.RecentEmotions
	if len(recentEmotions) > 5 {
		recentEmotions = recentEmotions[:5]
	}

	return fmt.Sprintf(`You are a master storyteller creating therapeutic stories for a healing app called HavenMind.

User's Sanctuary Context:
%s

Recent emotional themes: %s
Therapeutic themes identified: %s
Story theme to explore: %s
Story style: %s

%s

Story Requirements:
1. Length: 400-800 words
2. Include a clear title
3. Incorporate elements from the user's sanctuary naturally
4. Address the therapeutic theme of "%s"
5. End with hope, growth, or wisdom
6. Use inclusive, gentle language
7. Avoid dark or triggering content
8. Include sensory details and emotional resonance

Please write a complete story that will provide comfort, insight, and inspiration to someone on a healing journey.`,
		sanctuaryDescription(ctx.SanctuaryElements),
		strings.Join(recentEmotions, ", "),
		strings.Join(ctx.IdentifiedThemes, ", "),
		theme, style, styleInstructions, theme)
}

func sanctuaryDescription(elements []map[string]interface{}) string {
	if len(elements) == 0 {
		return "A new sanctuary, full of potential and waiting to be filled with meaningful elements."
	}

	typeCounts := map[string]int{}
	typeOrder := []string{}
	emotionsPresent := []string{}
	seenEmotions := map[string]bool{}

	for _, element := range elements {
		elementType, _ := element["element_type"].(string)
		if elementType == "" {
			elementType = "unknown"
		}
		emotion, _ := element["emotion"].(string)
		if emotion == "" {
			emotion = "neutral"
		}

		if typeCounts[elementType] == 0 {
			typeOrder = append(typeOrder, elementType)
		}
		typeCounts[elementType]++
		if !seenEmotions[emotion] {
			seenEmotions[emotion] = true
			emotionsPresent = append(emotionsPresent, emotion)
		}
	}

	parts := make([]string, 0, len(typeOrder))
	for _, elementType := range typeOrder {
		count := typeCounts[elementType]
		if count == 1 {
			parts = append(parts, "a "+elementType)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", count, elementType))
		}
	}

	if len(emotionsPresent) > 4 {
		emotionsPresent = emotionsPresent[:4]
	}

	return fmt.Sprintf("A sanctuary containing %d meaningful elements: %s. The emotional landscape includes feelings of %s.",
		len(elements), strings.Join(parts, ", "), strings.Join(emotionsPresent, ", "))
}

func (s *StoryService) processContent(content, style, theme string) GeneratedStory {
	title := ""
	if match := storyTitleRe.FindStringSubmatch(content); match != nil {
		for _, group := range match[1:] {
			if group != "" {
				title = strings.TrimSpace(group)
				break
			}
		}
		content = strings.TrimSpace(strings.Replace(content, match[0], "", 1))
	}
	if title == "" {
		title = s.generateTitle(style, theme)
	}

	wordCount := len(strings.Fields(content))
	readingTime := int(math.Max(1, math.Round(float64(wordCount)/200)))

	return GeneratedStory{
		Title:       title,
		Content:     cleanStoryContent(content),
		Style:       style,
		Theme:       theme,
		ReadingTime: readingTime,
		WordCount:   wordCount,
	}
}

func cleanStoryContent(content string) string {
	content = excessNewlinesRe.ReplaceAllString(content, "\n\n")

	paragraphs := strings.Split(content, "\n\n")
	cleaned := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if trimmed := strings.TrimSpace(paragraph); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n\n")
}

func (s *StoryService) generateTitle(style, theme string) string {
	if titles, ok := storyThemeTitles[theme]; ok {
		return titles[s.intn(len(titles))]
	}
	titles, ok := storyStyleTitles[style]
	if !ok {
		titles = storyStyleTitles["wisdom"]
	}
	return titles[s.intn(len(titles))]
}

func (s *StoryService) fallbackStory(style, theme string) GeneratedStory {
	type fallback struct {
		title   string
		content string
	}

	stories := map[string]fallback{
		"allegory": {
			title: "The Garden of Patience",
			content: `In a small village, there lived a gardener who tended to a most unusual garden. Unlike other gardens, this one grew not just flowers and vegetables, but emotions—each plant representing a feeling that had been carefully nurtured and understood.

One day, a traveler arrived, carrying heavy burdens of worry and sadness. "My garden grows only weeds," the traveler confessed. "Nothing beautiful seems to take root."

The wise gardener smiled and led the visitor through the sanctuary of growing things. "See this patch here?" she pointed to an area where delicate blue flowers swayed gently. "These grew from tears of sadness. And these golden blooms? They sprouted from moments of joy, however small."

"But how?" asked the traveler. "How do you make beauty from such difficult feelings?"

"I don't make them beautiful," the gardener replied. "I simply tend to them with patience and compassion. Every feeling, like every seed, contains within it the potential for growth and wisdom. The key is not to fight them, but to understand what they need to flourish."

The traveler spent many days learning to tend their own inner garden, discovering that even the most difficult emotions, when met with kindness, could transform into sources of strength and beauty. When they finally left, their step was lighter, carrying with them the seeds of self-compassion.`,
		},
		"fairy_tale": {
			title: "The Crystal of Healing Hearts",
			content: `Once upon a time, in a realm where emotions took the form of gentle creatures, there lived a young person whose heart-creature had become very small and dim. The joy-butterflies no longer visited, and the peace-deer had wandered far away.

Feeling lost, they embarked on a journey to find the legendary Crystal of Healing Hearts, said to restore emotional balance to all who found it. Through forests of contemplation and valleys of reflection, they traveled, meeting other creatures along the way.

A wise owl shared the secret of breathing with the wind. A patient tortoise taught the art of moving slowly through difficult feelings. A family of rabbits showed how small moments of gratitude could light up even the darkest days.

As the journey continued, something wonderful began to happen. With each act of kindness toward themselves and others, the traveler's heart-creature grew brighter and stronger. The joy-butterflies returned, joined by new friends: courage-lions, compassion-bears, and hope-birds.

When they finally reached the legendary crystal, they found it was actually a mirror. In its surface, they saw the truth—the power to heal had been within them all along, growing stronger with each step of their journey. The real magic was learning to tend to their own heart with the same gentleness they showed others.

And so they returned home, not just healed, but transformed into a beacon of light for others who had lost their way.`,
		},
	}

	story, ok := stories[style]
	if !ok {
		story = stories["allegory"]
	}

	return GeneratedStory{
		Title:       story.title,
		Content:     story.content,
		Style:       style,
		Theme:       theme,
		ReadingTime: 3,
		WordCount:   len(strings.Fields(story.content)),
	}
}

// History returns a session's stories, newest first.
func (s *StoryService) History(sessionID string, limit, offset int) ([]model.Story, error) {
	return s.storyRepo.FindBySession(sessionID, limit, offset)
}

// Delete removes a story by id.
func (s *StoryService) Delete(storyID uint) error {
	if _, err := s.storyRepo.FindByID(storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStoryNotFound
		}
		return err
	}
	return s.storyRepo.Delete(storyID)
}

// Recommend suggests a style and theme from recent emotional patterns.
func (s *StoryService) Recommend(sessionID string) (*StoryRecommendation, error) {
	recent, err := s.journalRepo.RecentBySession(sessionID, 10)
	if err != nil {
		return nil, err
	}

	if len(recent) == 0 {
		return &StoryRecommendation{
			RecommendedStyle: "fairy_tale",
			RecommendedTheme: "discovering_inner_wisdom",
			Reason:           "Perfect for beginning your healing journey with gentle wisdom and wonder.",
		}, nil
	}

	emotions := make([]string, 0, len(recent))
	var sentimentSum float64
	for _, entry := range recent {
		emotions = append(emotions, entry.Emotion)
		sentimentSum += entry.SentimentScore
	}
	avgSentiment := sentimentSum / float64(len(recent))

	return determineStoryRecommendation(emotions, avgSentiment), nil
}

func determineStoryRecommendation(recentEmotions []string, avgSentiment float64) *StoryRecommendation {
	positive, negative := 0, 0
	has := func(names ...string) bool {
		for _, name := range names {
			for _, emotion := range recentEmotions {
				if emotion == name {
					return true
				}
			}
		}
		return false
	}
	for _, emotion := range recentEmotions {
		if positiveEmotionSet[emotion] {
			positive++
		}
		if negativeEmotionSet[emotion] {
			negative++
		}
	}

	switch {
	case negative > positive && avgSentiment < -0.2:
		if has("anxiety", "fear") {
			return &StoryRecommendation{
				RecommendedStyle: "meditation",
				RecommendedTheme: "finding_peace_in_uncertainty",
				Reason:           "Gentle meditation stories can help calm anxiety and bring peace to uncertain times.",
			}
		}
		return &StoryRecommendation{
			RecommendedStyle: "wisdom",
			RecommendedTheme: "the_healing_journey",
			Reason:           "Wisdom stories offer guidance and hope during challenging times.",
		}
	case positive > negative && avgSentiment > 0.2:
		return &StoryRecommendation{
			RecommendedStyle: "adventure",
			RecommendedTheme: "transformation_and_growth",
			Reason:           "Adventure stories can inspire you to continue growing and reaching new heights.",
		}
	case has("anger", "frustration"):
		return &StoryRecommendation{
			RecommendedStyle: "allegory",
			RecommendedTheme: "overcoming_challenges",
			Reason:           "Allegorical stories can help you process difficult emotions and find strength.",
		}
	case has("gratitude", "love"):
		return &StoryRecommendation{
			RecommendedStyle: "fairy_tale",
			RecommendedTheme: "finding_inner_light",
			Reason:           "Magical fairy tales can amplify your positive energy and sense of wonder.",
		}
	default:
		return &StoryRecommendation{
			RecommendedStyle: "meditation",
			RecommendedTheme: "present_moment_awareness",
			Reason:           "Meditation stories can help you find balance and appreciate the present moment.",
		}
	}
}

func (s *StoryService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
