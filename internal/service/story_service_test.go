package service

import (
	"math/rand"
	"strings"
	"testing"

	"havenmind_backend/internal/model"
	"havenmind_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStoryStore keeps stories in a map for delete tests.
type fakeStoryStore struct {
	stories map[uint]*model.Story
}

func (f *fakeStoryStore) Create(story *model.Story) error {
	f.stories[story.ID] = story
	return nil
}

func (f *fakeStoryStore) FindByID(id uint) (*model.Story, error) {
	if story, ok := f.stories[id]; ok {
		return story, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStoryStore) FindBySession(sessionID string, limit, offset int) ([]model.Story, error) {
	return nil, nil
}

func (f *fakeStoryStore) Delete(id uint) error {
	delete(f.stories, id)
	return nil
}

func newTestStoryService() *StoryService {
	return &StoryService{rng: rand.New(rand.NewSource(7))}
}

func TestProcessContentExtractsTitle(t *testing.T) {
	s := newTestStoryService()

	tests := []struct {
		name    string
		content string
		title   string
	}{
		{"markdown heading", "# The Quiet River\n\nOnce there was a river.", "The Quiet River"},
		{"title prefix", "Title: A New Dawn\n\nThe sun rose slowly.", "A New Dawn"},
		{"bold title", "**The Listening Tree**\n\nDeep in the forest stood a tree.", "The Listening Tree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := s.processContent(tt.content, "allegory", "overcoming_challenges")
			assert.Equal(t, tt.title, story.Title)
			assert.NotContains(t, story.Content, tt.title)
		})
	}
}

func TestProcessContentGeneratesTitleWhenMissing(t *testing.T) {
	s := newTestStoryService()

	story := s.processContent("Once upon a time there was a quiet pond.", "allegory", "overcoming_challenges")
	assert.NotEmpty(t, story.Title)
}

func TestProcessContentReadingTime(t *testing.T) {
	s := newTestStoryService()

	short := s.processContent("just a few words here", "wisdom", "the_healing_journey")
	assert.Equal(t, 1, short.ReadingTime)

	long := s.processContent(strings.Repeat("word ", 600), "wisdom", "the_healing_journey")
	assert.Equal(t, 3, long.ReadingTime)
	assert.Equal(t, 600, long.WordCount)
}

func TestCleanStoryContent(t *testing.T) {
	cleaned := cleanStoryContent("first paragraph\n\n\n\n  second paragraph  \n\n\nthird")
	assert.Equal(t, "first paragraph\n\nsecond paragraph\n\nthird", cleaned)
}

func TestFallbackStoryTotality(t *testing.T) {
	s := newTestStoryService()

	for _, style := range []string{"allegory", "fairy_tale", "meditation", "adventure", "wisdom"} {
		story := s.fallbackStory(style, "discovering_inner_wisdom")

		assert.NotEmpty(t, story.Title, style)
		assert.NotEmpty(t, story.Content, style)
		assert.Equal(t, style, story.Style)
		assert.Equal(t, "discovering_inner_wisdom", story.Theme)
		assert.Equal(t, 3, story.ReadingTime)
		assert.Greater(t, story.WordCount, 100)
	}

	assert.Equal(t, "The Garden of Patience", s.fallbackStory("allegory", "x").Title)
	assert.Equal(t, "The Crystal of Healing Hearts", s.fallbackStory("fairy_tale", "x").Title)
	// unmapped styles share the allegory text
	assert.Equal(t, "The Garden of Patience", s.fallbackStory("meditation", "x").Title)
}

func TestDetermineStoryTheme(t *testing.T) {
	tests := []struct {
		name string
		ctx  StorySessionContext
		want string
	}{
		{
			"resilience wins",
			StorySessionContext{IdentifiedThemes: []string{"resilience", "growth"}},
			"overcoming_challenges",
		},
		{
			"anger counts as resilience territory",
			StorySessionContext{RecentEmotions: []string{"anger"}},
			"overcoming_challenges",
		},
		{
			"growth",
			StorySessionContext{IdentifiedThemes: []string{"growth"}},
			"transformation_and_growth",
		},
		{
			"gratitude",
			StorySessionContext{RecentEmotions: []string{"joy"}},
			"finding_inner_light",
		},
		{
			"relationships",
			StorySessionContext{IdentifiedThemes: []string{"relationships"}},
			"connection_and_belonging",
		},
		{
			"anxiety",
			StorySessionContext{RecentEmotions: []string{"anxiety"}},
			"finding_peace_in_uncertainty",
		},
		{
			"healing",
			StorySessionContext{IdentifiedThemes: []string{"self_care"}},
			"the_healing_journey",
		},
		{
			"mindfulness",
			StorySessionContext{IdentifiedThemes: []string{"mindfulness"}},
			"present_moment_awareness",
		},
		{
			"default",
			StorySessionContext{},
			"discovering_inner_wisdom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineStoryTheme(&tt.ctx))
		})
	}
}

func TestSanctuaryDescription(t *testing.T) {
	t.Run("empty sanctuary", func(t *testing.T) {
		desc := sanctuaryDescription(nil)
		assert.Contains(t, desc, "full of potential")
	})

	t.Run("counts and emotions", func(t *testing.T) {
		elements := []map[string]interface{}{
			{"element_type": "flower", "emotion": "joy"},
			{"element_type": "flower", "emotion": "calm"},
			{"element_type": "tree", "emotion": "joy"},
		}
		desc := sanctuaryDescription(elements)

		assert.Contains(t, desc, "3 meaningful elements")
		assert.Contains(t, desc, "2 flowers")
		assert.Contains(t, desc, "a tree")
		assert.Contains(t, desc, "joy")
		assert.Contains(t, desc, "calm")
	})
}

func TestDetermineStoryRecommendation(t *testing.T) {
	tests := []struct {
		name      string
		emotions  []string
		avg       float64
		wantStyle string
		wantTheme string
	}{
		{"anxious and negative", []string{"anxiety", "sadness"}, -0.5, "meditation", "finding_peace_in_uncertainty"},
		{"negative without anxiety", []string{"sadness", "anger"}, -0.5, "wisdom", "the_healing_journey"},
		{"positive streak", []string{"joy", "gratitude"}, 0.5, "adventure", "transformation_and_growth"},
		{"angry but balanced", []string{"anger"}, 0.0, "allegory", "overcoming_challenges"},
		{"grateful but balanced", []string{"gratitude"}, 0.0, "fairy_tale", "finding_inner_light"},
		{"neutral", []string{"neutral"}, 0.0, "meditation", "present_moment_awareness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := determineStoryRecommendation(tt.emotions, tt.avg)
			require.NotNil(t, rec)
			assert.Equal(t, tt.wantStyle, rec.RecommendedStyle)
			assert.Equal(t, tt.wantTheme, rec.RecommendedTheme)
			assert.NotEmpty(t, rec.Reason)
		})
	}
}

func TestDeleteMissingStory(t *testing.T) {
	s := &StoryService{storyRepo: &fakeStoryStore{stories: map[uint]*model.Story{}}}

	assert.ErrorIs(t, s.Delete(42), util.ErrStoryNotFound)
}

func TestDeleteExistingStory(t *testing.T) {
	store := &fakeStoryStore{stories: map[uint]*model.Story{7: {Title: "The Quiet River"}}}
	s := &StoryService{storyRepo: store}

	assert.NoError(t, s.Delete(7))
	assert.NotContains(t, store.stories, uint(7))
}

func TestStoryCatalogs(t *testing.T) {
	assert.Len(t, StoryStyles, 5)
	assert.Len(t, StoryThemes, 8)

	for _, style := range StoryStyles {
		assert.NotEmpty(t, style.ID)
		assert.NotEmpty(t, style.Name)
		assert.NotEmpty(t, style.Description)
		assert.Contains(t, storyStyleInstructions, style.ID)
	}
}
