package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"havenmind_backend/internal/provider"

	"github.com/stretchr/testify/assert"
)

// fakeTextProvider scripts one Complete result for fallback-chain tests.
type fakeTextProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeTextProvider) Name() string { return f.name }

func (f *fakeTextProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts provider.TextOptions) (string, error) {
	f.calls++
	return f.response, f.err
}

func newTestCompanionService(providers ...provider.TextProvider) *CompanionService {
	return NewCompanionService(providers, rand.New(rand.NewSource(1)))
}

func TestRespondUsesFirstWorkingProvider(t *testing.T) {
	primary := &fakeTextProvider{name: "primary", response: "I hear you."}
	secondary := &fakeTextProvider{name: "secondary", response: "backup"}
	s := newTestCompanionService(primary, secondary)

	response := s.Respond(context.Background(), "today was hard", "sadness", -0.4, nil, nil)

	assert.Equal(t, "I hear you.", response)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestRespondFallsThroughOnError(t *testing.T) {
	broken := &fakeTextProvider{name: "broken", err: errors.New("rate limited")}
	working := &fakeTextProvider{name: "working", response: "That sounds heavy."}
	s := newTestCompanionService(broken, working)

	response := s.Respond(context.Background(), "rough day", "sadness", -0.4, nil, nil)

	assert.Equal(t, "That sounds heavy.", response)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestRespondSkipsEmptyResponses(t *testing.T) {
	blank := &fakeTextProvider{name: "blank", response: "   "}
	working := &fakeTextProvider{name: "working", response: "I'm here with you."}
	s := newTestCompanionService(blank, working)

	response := s.Respond(context.Background(), "hello", "neutral", 0.0, nil, nil)

	assert.Equal(t, "I'm here with you.", response)
}

func TestRespondTemplateFallback(t *testing.T) {
	down := &fakeTextProvider{name: "down", err: errors.New("unreachable")}
	s := newTestCompanionService(down)

	for emotion, pool := range companionEmotionResponses {
		response := s.Respond(context.Background(), "entry", emotion, 0.0, nil, nil)
		assert.Contains(t, pool, response, emotion)
	}
}

func TestTemplateFallbackUnknownEmotionUsesNeutral(t *testing.T) {
	s := newTestCompanionService()

	response := s.templateFallback("bewilderment", nil)
	assert.Contains(t, companionEmotionResponses["neutral"], response)
}

func TestTemplateFallbackAppendsFirstMatchingTheme(t *testing.T) {
	s := newTestCompanionService()

	response := s.templateFallback("joy", []string{"unknown_theme", "growth", "healing"})
	assert.Contains(t, response, companionThemeAdditions["growth"])
	assert.NotContains(t, response, companionThemeAdditions["healing"])
}

func TestWelcomeMessage(t *testing.T) {
	s := newTestCompanionService()

	assert.Contains(t, newUserWelcomeMessages, s.WelcomeMessage(false))
	assert.Contains(t, returningWelcomeMessages, s.WelcomeMessage(true))
}

func TestEncouragementTiers(t *testing.T) {
	s := newTestCompanionService()

	first := s.Encouragement(SessionStats{TotalEntries: 1})
	assert.Contains(t, first, "beautiful beginning")

	early := s.Encouragement(SessionStats{TotalEntries: 3})
	assert.Contains(t, early, "3 sanctuary elements")

	growing := s.Encouragement(SessionStats{TotalEntries: 8})
	assert.Contains(t, growing, "flourishing")

	streak := s.Encouragement(SessionStats{TotalEntries: 20, DaysActive: 10})
	assert.Contains(t, streak, "10 days")

	established := s.Encouragement(SessionStats{TotalEntries: 15, DaysActive: 3})
	assert.Contains(t, established, "15 elements across 3 days")
}

func TestCompanionPromptIncludesContext(t *testing.T) {
	prompt := companionPrompt("a long walk", "calm", 0.42, []string{"mindfulness"}, &SanctuaryContext{
		ElementCount:   7,
		RecentEmotions: []string{"calm", "joy", "hope", "neutral"},
	})

	assert.Contains(t, prompt, `"a long walk"`)
	assert.Contains(t, prompt, "Primary emotion: calm")
	assert.Contains(t, prompt, "0.420")
	assert.Contains(t, prompt, "7 sanctuary elements")
	// only the three most recent emotions are included
	assert.Contains(t, prompt, "calm, joy, hope")
	assert.NotContains(t, prompt, "hope, neutral")
}
