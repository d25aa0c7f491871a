package service

import (
	"testing"

	"havenmind_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

// fakeSkillStore keeps skill rows in a map, keyed by skill name.
type fakeSkillStore struct {
	skills map[string]*model.UserSkill
}

func newFakeSkillStore() *fakeSkillStore {
	return &fakeSkillStore{skills: map[string]*model.UserSkill{}}
}

func (f *fakeSkillStore) Create(s *model.UserSkill) error {
	f.skills[s.SkillName] = s
	return nil
}

func (f *fakeSkillStore) Save(s *model.UserSkill) error {
	f.skills[s.SkillName] = s
	return nil
}

func (f *fakeSkillStore) FindBySession(sessionID string) ([]model.UserSkill, error) {
	out := make([]model.UserSkill, 0, len(f.skills))
	for _, s := range f.skills {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSkillStore) FindBySessionAndName(sessionID, name string) (*model.UserSkill, error) {
	if s, ok := f.skills[name]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSkillStore) UnlockedBySession(sessionID string) ([]model.UserSkill, error) {
	var out []model.UserSkill
	for _, s := range f.skills {
		if s.Unlocked {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSkillStore) CountUnlocked(sessionID string) (int64, error) { return 0, nil }

func (f *fakeSkillStore) MasteryDistribution(sessionID string) (map[int]int64, error) {
	return nil, nil
}

func TestExperienceGained(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		rating   *int
		want     int
	}{
		{"duration only", 10, nil, 20},
		{"duration plus rating", 10, intPtr(5), 45},
		{"capped at 100", 60, intPtr(10), 100},
		{"one minute", 1, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, experienceGained(tt.duration, tt.rating))
		})
	}
}

func TestMasteryLevelFor(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{149, 1},
		{150, 2},
		{300, 3},
		{500, 4},
		{799, 4},
		{800, 5},
		{5000, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, masteryLevelFor(tt.xp), "xp=%d", tt.xp)
	}
}

func TestProgressToNext(t *testing.T) {
	assert.InDelta(t, 0.0, progressToNext(0, 0), 1e-9)
	assert.InDelta(t, 0.5, progressToNext(0, 25), 1e-9)
	assert.InDelta(t, 0.0, progressToNext(1, 50), 1e-9)
	assert.InDelta(t, 0.5, progressToNext(1, 100), 1e-9)
	// max level always reads as complete
	assert.InDelta(t, 1.0, progressToNext(5, 800), 1e-9)
	assert.InDelta(t, 1.0, progressToNext(5, 0), 1e-9)
}

func TestShouldUnlockSkill(t *testing.T) {
	entries := func(pairs ...struct {
		emotion string
		score   float64
	}) []model.JournalEntry {
		out := make([]model.JournalEntry, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, model.JournalEntry{Emotion: p.emotion, SentimentScore: p.score})
		}
		return out
	}
	pair := func(emotion string, score float64) struct {
		emotion string
		score   float64
	} {
		return struct {
			emotion string
			score   float64
		}{emotion, score}
	}

	t.Run("empty history unlocks only breathing", func(t *testing.T) {
		assert.True(t, shouldUnlockSkill("mindful_breathing", nil, 0))
		assert.False(t, shouldUnlockSkill("gratitude_practice", nil, 0))
		assert.False(t, shouldUnlockSkill("positive_visualization", nil, 0))
	})

	t.Run("breathing always unlocked", func(t *testing.T) {
		assert.True(t, shouldUnlockSkill("mindful_breathing", entries(pair("sadness", -0.9)), 1))
	})

	t.Run("gratitude needs a clearly positive recent entry", func(t *testing.T) {
		assert.True(t, shouldUnlockSkill("gratitude_practice", entries(pair("joy", 0.5)), 1))
		assert.False(t, shouldUnlockSkill("gratitude_practice", entries(pair("neutral", 0.2)), 1))
	})

	t.Run("gratitude only checks the 5 most recent", func(t *testing.T) {
		history := entries(
			pair("neutral", 0.0),
			pair("neutral", 0.0),
			pair("neutral", 0.0),
			pair("neutral", 0.0),
			pair("neutral", 0.0),
			pair("joy", 0.9), // sixth entry, too old
		)
		assert.False(t, shouldUnlockSkill("gratitude_practice", history, 6))
	})

	t.Run("emotional regulation needs three intense entries", func(t *testing.T) {
		two := entries(pair("anger", -0.8), pair("joy", 0.9))
		three := entries(pair("anger", -0.8), pair("joy", 0.9), pair("despair", -0.75))
		assert.False(t, shouldUnlockSkill("emotional_regulation", two, 2))
		assert.True(t, shouldUnlockSkill("emotional_regulation", three, 3))
	})

	t.Run("self compassion on sadness or disappointment", func(t *testing.T) {
		assert.True(t, shouldUnlockSkill("self_compassion", entries(pair("sadness", -0.4)), 1))
		assert.True(t, shouldUnlockSkill("self_compassion", entries(pair("disappointment", -0.3)), 1))
		assert.False(t, shouldUnlockSkill("self_compassion", entries(pair("joy", 0.5)), 1))
	})

	t.Run("grounding on anxiety or worry", func(t *testing.T) {
		assert.True(t, shouldUnlockSkill("grounding_techniques", entries(pair("anxiety", -0.5)), 1))
		assert.True(t, shouldUnlockSkill("grounding_techniques", entries(pair("worry", -0.3)), 1))
		assert.False(t, shouldUnlockSkill("grounding_techniques", entries(pair("calm", 0.4)), 1))
	})

	t.Run("visualization after three entries", func(t *testing.T) {
		history := entries(pair("neutral", 0.0))
		assert.False(t, shouldUnlockSkill("positive_visualization", history, 2))
		assert.True(t, shouldUnlockSkill("positive_visualization", history, 3))
	})

	t.Run("unknown skill never unlocks", func(t *testing.T) {
		assert.False(t, shouldUnlockSkill("telepathy", entries(pair("joy", 0.9)), 10))
	})
}

func TestUpdateSkillUnlocksIsIdempotent(t *testing.T) {
	store := newFakeSkillStore()
	s := &SkillsService{skillRepo: store}

	history := []model.JournalEntry{{Emotion: "joy", SentimentScore: 0.6}}

	first, err := s.UpdateSkillUnlocks("session-1", history, 1)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"mindful_breathing", "gratitude_practice"}, first)

	second, err := s.UpdateSkillUnlocks("session-1", history, 1)
	assert.NoError(t, err)
	assert.Empty(t, second)
}

func TestUpdateSkillUnlocksFlipsExistingLockedRow(t *testing.T) {
	store := newFakeSkillStore()
	store.skills["grounding_techniques"] = &model.UserSkill{
		SessionID: "session-1",
		SkillName: "grounding_techniques",
	}
	s := &SkillsService{skillRepo: store}

	history := []model.JournalEntry{{Emotion: "anxiety", SentimentScore: -0.5}}

	unlocked, err := s.UpdateSkillUnlocks("session-1", history, 1)
	assert.NoError(t, err)
	assert.Contains(t, unlocked, "grounding_techniques")
	assert.True(t, store.skills["grounding_techniques"].Unlocked)

	again, err := s.UpdateSkillUnlocks("session-1", history, 1)
	assert.NoError(t, err)
	assert.NotContains(t, again, "grounding_techniques")
}

func TestGenerateRecommendations(t *testing.T) {
	allUnlocked := map[string]bool{}
	for _, name := range AvailableSkills {
		allUnlocked[name] = true
	}

	t.Run("anxiety surfaces grounding first", func(t *testing.T) {
		recs := generateRecommendations([]string{"anxiety"}, allUnlocked)
		assert.NotEmpty(t, recs)
		assert.Equal(t, "grounding_techniques", recs[0].SkillName)
		assert.Equal(t, "high", recs[0].Priority)
	})

	t.Run("locked skills are never recommended", func(t *testing.T) {
		recs := generateRecommendations([]string{"anxiety"}, map[string]bool{"mindful_breathing": true})
		for _, rec := range recs {
			assert.Equal(t, "mindful_breathing", rec.SkillName)
		}
	})

	t.Run("neutral history falls back to breathing", func(t *testing.T) {
		recs := generateRecommendations([]string{"neutral"}, allUnlocked)
		assert.Len(t, recs, 1)
		assert.Equal(t, "mindful_breathing", recs[0].SkillName)
	})

	t.Run("mixed emotions cap at three sorted by priority", func(t *testing.T) {
		recs := generateRecommendations([]string{"anxiety", "sadness", "anger", "joy"}, allUnlocked)
		assert.Len(t, recs, 3)
		priorityRank := map[string]int{"high": 0, "medium": 1, "low": 2}
		for i := 1; i < len(recs); i++ {
			assert.LessOrEqual(t, priorityRank[recs[i-1].Priority], priorityRank[recs[i].Priority])
		}
	})

	t.Run("nothing unlocked yields nothing", func(t *testing.T) {
		recs := generateRecommendations([]string{"anxiety"}, map[string]bool{})
		assert.Empty(t, recs)
	})
}

func TestGuidanceCustomization(t *testing.T) {
	s := &SkillsService{}

	t.Run("short time shrinks duration", func(t *testing.T) {
		g := s.Guidance("mindful_breathing", 0, GuidanceContext{TimeAvailable: "short"})
		assert.NotContains(t, g.Duration, "10-15")
		assert.Contains(t, g.Tips, "Even a short practice can be beneficial")
	})

	t.Run("emotion tip appended", func(t *testing.T) {
		g := s.Guidance("mindful_breathing", 0, GuidanceContext{CurrentEmotion: "anxiety"})
		assert.Contains(t, g.Tips, "Go slowly and be gentle with yourself")
	})

	t.Run("customization does not mutate the shared table", func(t *testing.T) {
		before := len(skillGuidanceData["mindful_breathing"][0].Tips)
		_ = s.Guidance("mindful_breathing", 0, GuidanceContext{CurrentEmotion: "anxiety", TimeAvailable: "short"})
		after := len(skillGuidanceData["mindful_breathing"][0].Tips)
		assert.Equal(t, before, after)
	})

	t.Run("unknown level falls back to generic plan", func(t *testing.T) {
		g := s.Guidance("mindful_breathing", 4, GuidanceContext{})
		assert.Equal(t, "Level 4 Practice", g.Title)
	})

	t.Run("high stress prepends a settling step", func(t *testing.T) {
		g := s.Guidance("mindful_breathing", 0, GuidanceContext{StressLevel: "high"})
		assert.Equal(t, "Take three slow breaths before you begin", g.Steps[0])
		assert.Contains(t, g.Tips, "With stress running high, go slower than feels necessary")
	})

	t.Run("other stress levels leave the plan unchanged", func(t *testing.T) {
		base := s.Guidance("mindful_breathing", 0, GuidanceContext{})
		g := s.Guidance("mindful_breathing", 0, GuidanceContext{StressLevel: "low"})
		assert.Equal(t, base.Steps, g.Steps)
		assert.Equal(t, base.Tips, g.Tips)
	})
}

func TestCatalogCoversAllSkills(t *testing.T) {
	s := &SkillsService{}
	catalog := s.Catalog()

	assert.Len(t, catalog, len(AvailableSkills))
	for _, entry := range catalog {
		assert.NotEmpty(t, entry.DisplayName)
		assert.NotEmpty(t, entry.Description)
		assert.NotEmpty(t, entry.Category)
		assert.NotEmpty(t, entry.Difficulty)
		assert.NotEmpty(t, entry.Benefits)
	}
}

func TestSkillDescriptionTopTier(t *testing.T) {
	for _, name := range AvailableSkills {
		info, levelInfo := SkillDescription(name, masteryLevels-1)
		assert.Len(t, info.Levels, masteryLevels, name)
		assert.Equal(t, masteryLevels-1, levelInfo.Level, name)
	}

	// unknown skills get a generic entry with the same number of tiers
	info, levelInfo := SkillDescription("telepathy", masteryLevels-1)
	assert.Len(t, info.Levels, masteryLevels)
	assert.Equal(t, masteryLevels-1, levelInfo.Level)
}
