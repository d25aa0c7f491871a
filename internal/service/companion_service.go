package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"havenmind_backend/internal/provider"
	"havenmind_backend/pkg/logger"
	"havenmind_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const lunaSystemPrompt = "You are Luna, a wise and empathetic AI companion providing therapeutic support."

// SanctuaryContext gives the companion a snapshot of the user's sanctuary.
type SanctuaryContext struct {
	ElementCount   int64
	RecentEmotions []string
}

// SessionStats summarizes a session's activity for encouragement messages.
type SessionStats struct {
	TotalEntries    int64
	DaysActive      int
	DominantEmotion string
}

var companionEmotionResponses = map[string][]string{
	"joy": {
		"I can feel the happiness radiating from your words! It's wonderful to witness these moments of joy in your sanctuary.",
		"Your joy is like sunshine breaking through clouds. These bright moments are precious gifts to cherish.",
		"There's such beautiful energy in what you've shared. Joy has a way of creating ripples of positivity.",
	},
	"love": {
		"The love you're experiencing shines through so clearly. Love has this amazing way of transforming everything it touches.",
		"Your heart seems so open and full right now. Love is one of the most powerful healing forces we have.",
		"I can sense the warmth and connection in your words. Love creates such beautiful sanctuary spaces.",
	},
	"gratitude": {
		"Your gratitude is like a gentle light that illuminates all the goodness around you. Thank you for sharing this.",
		"There's something so grounding about gratitude - it connects us to what truly matters in this moment.",
		"I love how gratitude has a way of shifting our entire perspective. Your awareness of these blessings is beautiful.",
	},
	"calm": {
		"I can feel the peacefulness in your reflection. These moments of calm are like gentle anchors for your soul.",
		"Your sense of tranquility comes through so clearly. Calm is a gift you give yourself and your sanctuary.",
		"There's something so restorative about the peace you're describing. Let this feeling nourish you deeply.",
	},
	"sadness": {
		"I hear the tenderness in your sadness, and I want you to know that these feelings are completely valid and important.",
		"Sadness often carries wisdom within it. Your sanctuary is a safe place to feel and process these emotions.",
		"Thank you for trusting me with these deeper feelings. Even in sadness, you're growing and healing.",
	},
	"anxiety": {
		"I can sense the weight you're carrying right now. Anxiety can feel overwhelming, but you're not facing it alone.",
		"Your awareness of these anxious feelings is actually a sign of strength. Your sanctuary can be an anchor in the storm.",
		"These worried thoughts are trying to protect you, even if they feel uncomfortable. You're safe here to explore them.",
	},
	"anger": {
		"I can feel the intensity of what you're experiencing. Anger often signals that something important to you needs attention.",
		"Your anger is valid and understandable. This emotion carries important information about your boundaries and values.",
		"Thank you for expressing these powerful feelings. Your sanctuary can help transform this energy in healing ways.",
	},
	"neutral": {
		"Sometimes the most profound moments happen in the quiet spaces between emotions. I'm here with you in this reflection.",
		"There's wisdom in these contemplative moments. Your sanctuary grows even in the gentle, quiet times.",
		"I appreciate you sharing these thoughts with me. Every entry adds depth and meaning to your healing journey.",
	},
}

var companionThemeAdditions = map[string]string{
	"growth":        "I can see how much you're growing through this experience.",
	"resilience":    "Your strength and resilience shine through your words.",
	"healing":       "This reflection is part of your beautiful healing journey.",
	"relationships": "The connections you're nurturing seem so meaningful.",
	"self_care":     "It's wonderful to see you prioritizing your well-being.",
	"mindfulness":   "Your presence and awareness in this moment is inspiring.",
	"goals":         "Your vision for the future adds such purpose to your journey.",
	"creativity":    "There's such creative energy flowing through your thoughts.",
}

var returningWelcomeMessages = []string{
	"Welcome back to your sanctuary! I'm so glad to see you again. What's stirring in your heart today?",
	"Hello again, dear friend! Your sanctuary has been quietly waiting for your return. How are you feeling?",
	"It's wonderful to have you back! I can sense you have something to share. I'm here to listen.",
	"Welcome back to this safe space. Your sanctuary grows more beautiful with each visit. What would you like to explore today?",
}

var newUserWelcomeMessages = []string{
	"Welcome to HavenMind! I'm Luna, your companion on this journey of healing and growth. What brings you here today?",
	"Hello and welcome! I'm so honored to meet you. This is your sacred space for reflection and healing. What's on your mind?",
	"Welcome to your personal sanctuary! I'm Luna, here to listen, support, and walk alongside you. What would you like to share?",
	"Hello, beautiful soul! Welcome to HavenMind. This is a safe space where your feelings are honored and your growth is celebrated.",
}

// CompanionService generates Luna's responses. Providers are tried in order;
// when all of them fail the templated fallback guarantees a response.
type CompanionService struct {
	providers []provider.TextProvider

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCompanionService(providers []provider.TextProvider, rng *rand.Rand) *CompanionService {
	return &CompanionService{
		providers: providers,
		rng:       rng,
	}
}

// Respond generates Luna's reply to a journal entry. It never returns an
// error: the template fallback always produces something.
func (s *CompanionService) Respond(
	ctx context.Context,
	journalEntry, emotion string,
	sentimentScore float64,
	themes []string,
	sanctuaryCtx *SanctuaryContext,
) string {
	prompt := companionPrompt(journalEntry, emotion, sentimentScore, themes, sanctuaryCtx)
	opts := provider.TextOptions{MaxTokens: 200, Temperature: 0.7, TopP: 0.8}

	for _, p := range s.providers {
		start := time.Now()
		response, err := p.Complete(ctx, lunaSystemPrompt, prompt, opts)
		monitoring.ObserveAICall(p.Name(), start, err)
		if err != nil {
			logger.Log.Warn("companion provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if response = strings.TrimSpace(response); response != "" {
			return response
		}
	}

	return s.templateFallback(emotion, themes)
}

func companionPrompt(
	journalEntry, emotion string,
	sentimentScore float64,
	themes []string,
	sanctuaryCtx *SanctuaryContext,
) string {
	contextInfo := ""
	if sanctuaryCtx != nil {
		recent := sanctuaryCtx.RecentEmotions
		if len(recent) > 3 {
			recent = recent[:3]
		}
		contextInfo = fmt.Sprintf("\nUser has created %d sanctuary elements. Recent emotions: %s.",
			sanctuaryCtx.ElementCount, strings.Join(recent, ", "))
	}

	return fmt.Sprintf(`You are Luna, a wise and empathetic AI companion in a therapeutic app called HavenMind. Your role is to provide supportive, nurturing responses to users' journal entries.

User's journal entry: "%s"

Emotional context:
- Primary emotion: %s
- Sentiment score: %.3f (range: -1 to 1)
- Identified themes: %s
%s

Guidelines for your response:
1. Be warm, empathetic, and non-judgmental
2. Acknowledge their feelings without minimizing them
3. Offer gentle insights or perspectives when appropriate
4. Keep responses between 2-4 sentences
5. Use supportive language that validates their experience
6. If appropriate, gently suggest therapeutic themes or growth opportunities
7. Avoid giving direct advice - instead, ask questions that promote self-reflection
8. Reference their sanctuary journey when relevant

Please respond as Luna would - with wisdom, compassion, and genuine care.`,
		journalEntry, emotion, sentimentScore, strings.Join(themes, ", "), contextInfo)
}

// templateFallback builds a response from the emotion and theme templates.
func (s *CompanionService) templateFallback(emotion string, themes []string) string {
	pool, ok := companionEmotionResponses[emotion]
	if !ok {
		pool = companionEmotionResponses["neutral"]
	}
	response := pool[s.intn(len(pool))]

	for _, theme := range themes {
		if addition, ok := companionThemeAdditions[theme]; ok {
			response += " " + addition
			break
		}
	}
	return response
}

// WelcomeMessage greets a user, varying between new and returning visitors.
func (s *CompanionService) WelcomeMessage(isReturning bool) string {
	pool := newUserWelcomeMessages
	if isReturning {
		pool = returningWelcomeMessages
	}
	return pool[s.intn(len(pool))]
}

// Encouragement celebrates the user's progress so far.
func (s *CompanionService) Encouragement(stats SessionStats) string {
	switch {
	case stats.TotalEntries == 1:
		return "What a beautiful beginning! Your first sanctuary element is like planting the seed of healing. I'm excited to see how your sanctuary grows."
	case stats.TotalEntries < 5:
		return fmt.Sprintf("You've created %d sanctuary elements so far. Each one represents a moment of courage and self-reflection. You're building something truly special.", stats.TotalEntries)
	case stats.TotalEntries < 10:
		return fmt.Sprintf("Look at your sanctuary flourishing! With %d elements, you're creating a rich landscape of emotional awareness and growth.", stats.TotalEntries)
	case stats.DaysActive >= 7:
		return fmt.Sprintf("You've been nurturing your sanctuary for %d days now. This consistency shows such dedication to your healing journey. I'm truly inspired by your commitment.", stats.DaysActive)
	default:
		return fmt.Sprintf("Your sanctuary is becoming a magnificent reflection of your inner world. With %d elements across %d days, you're creating something truly meaningful.", stats.TotalEntries, stats.DaysActive)
	}
}

func (s *CompanionService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
