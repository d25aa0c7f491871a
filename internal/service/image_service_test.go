package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"havenmind_backend/internal/provider"

	"github.com/stretchr/testify/assert"
)

// fakeImageProvider scripts one Generate result.
type fakeImageProvider struct {
	name  string
	url   string
	err   error
	calls int
}

func (f *fakeImageProvider) Name() string { return f.name }

func (f *fakeImageProvider) Generate(ctx context.Context, prompt string, kind provider.ImageKind) (string, error) {
	f.calls++
	return f.url, f.err
}

func TestSanctuaryImagePrompt(t *testing.T) {
	prompt := sanctuaryImagePrompt("flower", "joy", "I feel like I'm growing stronger", "fantasy-art")

	assert.Contains(t, prompt, "ethereal flower")
	assert.Contains(t, prompt, "radiating golden light")
	assert.Contains(t, prompt, "embodying themes of growth")
	assert.Contains(t, prompt, "fantasy art style")
	assert.Contains(t, prompt, "therapeutic atmosphere")
}

func TestSanctuaryImagePromptUnknownInputs(t *testing.T) {
	prompt := sanctuaryImagePrompt("nebula", "wistfulness", "", "fantasy-art")

	assert.Contains(t, prompt, "a mystical sanctuary element")
	assert.Contains(t, prompt, "with gentle, natural energy")
	assert.NotContains(t, prompt, "embodying themes")
}

func TestExtractVisualThemes(t *testing.T) {
	themes := extractVisualThemes("I am growing, feeling strong, finally at peace, healing and free")

	// capped at three, in fixed order
	assert.Equal(t, []string{"growth", "strength", "peace"}, themes)
}

func TestStoryImagePrompt(t *testing.T) {
	t.Run("location from content", func(t *testing.T) {
		prompt := storyImagePrompt("deep in the forest stood a wise old owl", "fantasy-art", "wisdom")
		assert.Contains(t, prompt, "mystical forest with ancient trees")
		assert.Contains(t, prompt, "with ancient wisdom and golden light")
		assert.Contains(t, prompt, "fantasy art style")
		assert.Contains(t, prompt, "scholarly atmosphere")
	})

	t.Run("theme setting when no location", func(t *testing.T) {
		prompt := storyImagePrompt("a tale of learning", "cinematic", "wisdom")
		assert.Contains(t, prompt, "an ancient library or study")
		assert.Contains(t, prompt, "cinematic composition")
	})

	t.Run("unknown style and theme fall back", func(t *testing.T) {
		prompt := storyImagePrompt("a tale", "charcoal", "seafaring")
		assert.Contains(t, prompt, "a cinematic scene")
		assert.Contains(t, prompt, "cinematic lighting, artistic")
		assert.Contains(t, prompt, "atmospheric, cinematic")
	})
}

func TestUnsplashFallbackURL(t *testing.T) {
	t.Run("theme keywords", func(t *testing.T) {
		url := unsplashFallbackURL("an epic tale", "adventure")
		assert.True(t, strings.HasPrefix(url, "https://source.unsplash.com/1344x768/?"))
		assert.Contains(t, url, "mountain%20landscape%20adventure")
		assert.Contains(t, url, "collections=1114848,1127901,3356108")
	})

	t.Run("location overrides primary keyword", func(t *testing.T) {
		url := unsplashFallbackURL("they crossed the ocean at night", "adventure")
		assert.Contains(t, url, "ocean%20landscape")
		assert.Contains(t, url, "night%20dramatic")
	})

	t.Run("unknown theme defaults", func(t *testing.T) {
		url := unsplashFallbackURL("a story", "seafaring")
		assert.Contains(t, url, "fantasy%20landscape")
	})
}

func TestStoryImageFallsBackToUnsplash(t *testing.T) {
	broken := &fakeImageProvider{name: "broken", err: errors.New("provider down")}
	s := NewImageService(nil, []provider.ImageProvider{broken}, NewProceduralRenderer(rand.New(rand.NewSource(1))), nil)

	url := s.StoryImage(context.Background(), "a castle story", "The Castle Keep", "fantasy-art", "fantasy")

	assert.Equal(t, 1, broken.calls)
	assert.Contains(t, url, "source.unsplash.com")
	assert.Contains(t, url, "castle%20landscape")
}

func TestStoryImageUsesProviderURL(t *testing.T) {
	working := &fakeImageProvider{name: "working", url: "data:image/png;base64,abc"}
	s := NewImageService(nil, []provider.ImageProvider{working}, nil, nil)

	url := s.StoryImage(context.Background(), "a story", "A Story", "fantasy-art", "fantasy")

	assert.Equal(t, "data:image/png;base64,abc", url)
}

func TestProceduralRendererProducesDataURL(t *testing.T) {
	r := NewProceduralRenderer(rand.New(rand.NewSource(9)))

	for _, elementType := range []string{"flower", "tree", "crystal", "butterfly", "bird", "stone", "water", "shadow"} {
		url, err := r.Render(elementType, "joy")
		assert.NoError(t, err, elementType)
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), elementType)
	}
}
