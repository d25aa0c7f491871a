package service

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"havenmind_backend/internal/model"
	"havenmind_backend/internal/repository"
	"havenmind_backend/internal/util"
	"havenmind_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserSkillView is a skill row joined with its catalog data.
type UserSkillView struct {
	SkillName        string           `json:"skill_name"`
	DisplayName      string           `json:"display_name"`
	Description      string           `json:"description"`
	MasteryLevel     int              `json:"mastery_level"`
	ExperiencePoints int              `json:"experience_points"`
	TimesPracticed   int              `json:"times_practiced"`
	Unlocked         bool             `json:"unlocked"`
	LastPracticed    *time.Time       `json:"last_practiced"`
	CurrentLevelInfo SkillLevelInfo   `json:"current_level_info"`
	AllLevels        []SkillLevelInfo `json:"all_levels"`
	ProgressToNext   float64          `json:"progress_to_next"`
}

// PracticeResult summarizes the outcome of recording one practice session.
type PracticeResult struct {
	ExperienceGained int            `json:"experience_gained"`
	TotalExperience  int            `json:"total_experience"`
	OldLevel         int            `json:"old_level"`
	NewLevel         int            `json:"new_level"`
	LevelUp          bool           `json:"level_up"`
	TimesPracticed   int            `json:"times_practiced"`
	SkillInfo        SkillInfo      `json:"skill_info"`
	CurrentLevelInfo SkillLevelInfo `json:"current_level_info"`
}

// SkillStatistics aggregates practice activity for a session.
type SkillStatistics struct {
	TotalPracticeTimeMinutes  int64         `json:"total_practice_time_minutes"`
	TotalSessions             int64         `json:"total_sessions"`
	UnlockedSkillsCount       int64         `json:"unlocked_skills_count"`
	TotalSkillsCount          int           `json:"total_skills_count"`
	AverageCompletionRating   float64       `json:"average_completion_rating"`
	MostPracticedSkill        string        `json:"most_practiced_skill"`
	CurrentStreakDays         int           `json:"current_streak_days"`
	SkillsMasteryDistribution map[int]int64 `json:"skills_mastery_distribution"`
}

// SkillRecommendation suggests a skill to practice next.
type SkillRecommendation struct {
	SkillName        string `json:"skill_name"`
	Reason           string `json:"reason"`
	Priority         string `json:"priority"`
	ImmediateBenefit string `json:"immediate_benefit"`
}

// CatalogSkill is one entry of the public skill catalog.
type CatalogSkill struct {
	SkillName   string   `json:"skill_name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Benefits    []string `json:"benefits"`
}

// GuidanceContext carries the caller's current state so guidance can be
// adjusted to it. Zero values mean "not provided".
type GuidanceContext struct {
	CurrentEmotion string
	StressLevel    string
	TimeAvailable  string
}

// skillStore is the subset of repository.SkillRepository the service uses.
type skillStore interface {
	Create(*model.UserSkill) error
	Save(*model.UserSkill) error
	FindBySession(string) ([]model.UserSkill, error)
	FindBySessionAndName(string, string) (*model.UserSkill, error)
	UnlockedBySession(string) ([]model.UserSkill, error)
	CountUnlocked(string) (int64, error)
	MasteryDistribution(string) (map[int]int64, error)
}

// SkillsService manages skill progression: unlocks, practice sessions,
// experience and mastery levels, guidance and statistics.
type SkillsService struct {
	db               *gorm.DB
	skillRepo        skillStore
	skillSessionRepo *repository.SkillSessionRepository
	journalRepo      *repository.JournalRepository
}

func NewSkillsService(
	db *gorm.DB,
	skillRepo skillStore,
	skillSessionRepo *repository.SkillSessionRepository,
	journalRepo *repository.JournalRepository,
) *SkillsService {
	return &SkillsService{
		db:               db,
		skillRepo:        skillRepo,
		skillSessionRepo: skillSessionRepo,
		journalRepo:      journalRepo,
	}
}

// GetUserSkills returns every skill for a session, creating missing rows with
// defaults first. Unlocked skills sort before locked ones.
func (s *SkillsService) GetUserSkills(sessionID string) ([]UserSkillView, error) {
	existing, err := s.skillRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(existing))
	for _, skill := range existing {
		known[skill.SkillName] = true
	}

	for _, name := range AvailableSkills {
		if known[name] {
			continue
		}
		skill := &model.UserSkill{
			SessionID: sessionID,
			SkillName: name,
			Unlocked:  name == "mindful_breathing",
		}
		if err := s.skillRepo.Create(skill); err != nil {
			return nil, err
		}
	}

	all, err := s.skillRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	views := make([]UserSkillView, 0, len(all))
	for _, skill := range all {
		info, levelInfo := SkillDescription(skill.SkillName, skill.MasteryLevel)
		views = append(views, UserSkillView{
			SkillName:        skill.SkillName,
			DisplayName:      info.Name,
			Description:      info.Description,
			MasteryLevel:     skill.MasteryLevel,
			ExperiencePoints: skill.ExperiencePoints,
			TimesPracticed:   skill.TimesPracticed,
			Unlocked:         skill.Unlocked,
			LastPracticed:    skill.LastPracticed,
			CurrentLevelInfo: levelInfo,
			AllLevels:        info.Levels,
			ProgressToNext:   progressToNext(skill.MasteryLevel, skill.ExperiencePoints),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Unlocked != views[j].Unlocked {
			return views[i].Unlocked
		}
		return views[i].SkillName < views[j].SkillName
	})
	return views, nil
}

// PracticeSkill records a practice session and advances the skill. The session
// row and the progression update commit or roll back together.
func (s *SkillsService) PracticeSkill(
	sessionID, skillName string,
	durationMinutes int,
	completionRating *int,
	notes string,
	emotionsBefore, emotionsAfter model.JSONMap,
) (*PracticeResult, error) {
	if !KnownSkill(skillName) {
		return nil, util.ErrUnknownSkill
	}

	var result PracticeResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var skill model.UserSkill
		err := tx.Where("session_id = ? AND skill_name = ?", sessionID, skillName).
			First(&skill).Error
		if err == gorm.ErrRecordNotFound {
			skill = model.UserSkill{
				SessionID: sessionID,
				SkillName: skillName,
				Unlocked:  true,
			}
			if err := tx.Create(&skill).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		practice := model.SkillSession{
			SessionID:        sessionID,
			SkillName:        skillName,
			DurationMinutes:  durationMinutes,
			CompletionRating: completionRating,
			Notes:            notes,
			EmotionsBefore:   emotionsBefore,
			EmotionsAfter:    emotionsAfter,
		}
		if err := tx.Create(&practice).Error; err != nil {
			return err
		}

		oldLevel := skill.MasteryLevel
		gained := experienceGained(durationMinutes, completionRating)

		now := time.Now().UTC()
		skill.ExperiencePoints += gained
		skill.TimesPracticed++
		skill.LastPracticed = &now

		newLevel := masteryLevelFor(skill.ExperiencePoints)
		if newLevel > masteryLevels-1 {
			newLevel = masteryLevels - 1
		}
		skill.MasteryLevel = newLevel

		if err := tx.Save(&skill).Error; err != nil {
			return err
		}

		info, levelInfo := SkillDescription(skillName, skill.MasteryLevel)
		result = PracticeResult{
			ExperienceGained: gained,
			TotalExperience:  skill.ExperiencePoints,
			OldLevel:         oldLevel,
			NewLevel:         skill.MasteryLevel,
			LevelUp:          skill.MasteryLevel > oldLevel,
			TimesPracticed:   skill.TimesPracticed,
			SkillInfo:        info,
			CurrentLevelInfo: levelInfo,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateSkillUnlocks re-evaluates every unlock condition against the session's
// recent journal history and returns the names of newly unlocked skills. The
// check is idempotent; already-unlocked skills are left alone.
func (s *SkillsService) UpdateSkillUnlocks(sessionID string, recentEntries []model.JournalEntry, journalCount int64) ([]string, error) {
	newlyUnlocked := []string{}

	for _, name := range AvailableSkills {
		if !shouldUnlockSkill(name, recentEntries, journalCount) {
			continue
		}

		skill, err := s.skillRepo.FindBySessionAndName(sessionID, name)
		if err == gorm.ErrRecordNotFound {
			newSkill := &model.UserSkill{
				SessionID: sessionID,
				SkillName: name,
				Unlocked:  true,
			}
			if err := s.skillRepo.Create(newSkill); err != nil {
				return newlyUnlocked, err
			}
			newlyUnlocked = append(newlyUnlocked, name)
			continue
		}
		if err != nil {
			return newlyUnlocked, err
		}

		if !skill.Unlocked {
			skill.Unlocked = true
			if err := s.skillRepo.Save(skill); err != nil {
				return newlyUnlocked, err
			}
			newlyUnlocked = append(newlyUnlocked, name)
		}
	}

	return newlyUnlocked, nil
}

// ForceUnlock unlocks a skill directly, bypassing the pattern checks.
func (s *SkillsService) ForceUnlock(sessionID, skillName string) error {
	if !KnownSkill(skillName) {
		return util.ErrUnknownSkill
	}

	skill, err := s.skillRepo.FindBySessionAndName(sessionID, skillName)
	if err == gorm.ErrRecordNotFound {
		return s.skillRepo.Create(&model.UserSkill{
			SessionID: sessionID,
			SkillName: skillName,
			Unlocked:  true,
		})
	}
	if err != nil {
		return err
	}

	skill.Unlocked = true
	return s.skillRepo.Save(skill)
}

// Guidance returns a practice plan for a skill at a mastery level, adjusted to
// the caller's current context.
func (s *SkillsService) Guidance(skillName string, masteryLevel int, ctx GuidanceContext) SkillGuidance {
	var guidance SkillGuidance
	if levels, ok := skillGuidanceData[skillName]; ok {
		if g, ok := levels[masteryLevel]; ok {
			guidance = g
			// copy tips so customization never mutates the shared table
			guidance.Tips = append([]string(nil), g.Tips...)
			guidance.Steps = append([]string(nil), g.Steps...)
		}
	}

	if guidance.Title == "" {
		guidance = SkillGuidance{
			Title:       "Level " + strconv.Itoa(masteryLevel) + " Practice",
			Description: "Continue developing your " + strings.ReplaceAll(skillName, "_", " ") + " skills",
			Steps: []string{
				"Set aside dedicated practice time",
				"Focus on consistency over perfection",
				"Notice how the practice affects you",
				"Be patient with your progress",
			},
			Duration: "10-15 minutes",
			Tips: []string{
				"Regular practice is key to mastery",
				"Celebrate small improvements",
			},
		}
	}

	return customizeGuidance(guidance, ctx)
}

func customizeGuidance(guidance SkillGuidance, ctx GuidanceContext) SkillGuidance {
	switch ctx.TimeAvailable {
	case "short":
		guidance.Duration = strings.ReplaceAll(guidance.Duration, "10-15", "5-8")
		guidance.Duration = strings.ReplaceAll(guidance.Duration, "15-20", "8-12")
		guidance.Tips = append(guidance.Tips, "Even a short practice can be beneficial")
	case "long":
		guidance.Duration = strings.ReplaceAll(guidance.Duration, "5-10", "10-15")
		guidance.Duration = strings.ReplaceAll(guidance.Duration, "10-15", "15-25")
		guidance.Tips = append(guidance.Tips, "Take advantage of this longer time to deepen your practice")
	}

	emotionTips := map[string]string{
		"anxiety": "Go slowly and be gentle with yourself",
		"sadness": "It's okay if emotions come up during practice",
		"anger":   "Use this practice to create space and calm",
		"joy":     "Let this positive energy enhance your practice",
		"stress":  "Focus on releasing tension with each breath",
	}
	if tip, ok := emotionTips[ctx.CurrentEmotion]; ok {
		guidance.Tips = append(guidance.Tips, tip)
	}

	if ctx.StressLevel == "high" {
		guidance.Steps = append([]string{"Take three slow breaths before you begin"}, guidance.Steps...)
		guidance.Tips = append(guidance.Tips, "With stress running high, go slower than feels necessary")
	}

	return guidance
}

// Statistics aggregates all practice activity for a session.
func (s *SkillsService) Statistics(sessionID string) (*SkillStatistics, error) {
	totalTime, err := s.skillSessionRepo.TotalDuration(sessionID)
	if err != nil {
		return nil, err
	}
	totalSessions, err := s.skillSessionRepo.CountBySession(sessionID)
	if err != nil {
		return nil, err
	}
	unlockedCount, err := s.skillRepo.CountUnlocked(sessionID)
	if err != nil {
		return nil, err
	}
	avgRating, err := s.skillSessionRepo.AverageRating(sessionID)
	if err != nil {
		return nil, err
	}
	mostPracticed, err := s.skillSessionRepo.MostPracticed(sessionID)
	if err != nil {
		return nil, err
	}
	streak, err := s.practiceStreak(sessionID)
	if err != nil {
		return nil, err
	}
	distribution, err := s.skillRepo.MasteryDistribution(sessionID)
	if err != nil {
		return nil, err
	}

	return &SkillStatistics{
		TotalPracticeTimeMinutes:  totalTime,
		TotalSessions:             totalSessions,
		UnlockedSkillsCount:       unlockedCount,
		TotalSkillsCount:          len(AvailableSkills),
		AverageCompletionRating:   math.Round(avgRating*10) / 10,
		MostPracticedSkill:        mostPracticed,
		CurrentStreakDays:         streak,
		SkillsMasteryDistribution: distribution,
	}, nil
}

// practiceStreak counts consecutive calendar days with at least one practice
// session, walking back from today.
func (s *SkillsService) practiceStreak(sessionID string) (int, error) {
	dates, err := s.skillSessionRepo.DistinctPracticeDates(sessionID)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		// MySQL DATE() may come back with or without a time component.
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, d); err != nil {
				logger.Log.Warn("unparseable practice date", zap.String("date", d))
				continue
			}
		}
		parsed = append(parsed, t)
	}

	streak := 0
	current := time.Now().UTC().Truncate(24 * time.Hour)
	for _, day := range parsed {
		day = day.Truncate(24 * time.Hour)
		if day.Equal(current) || day.Equal(current.AddDate(0, 0, -1)) {
			streak++
			current = day
		} else {
			break
		}
	}
	return streak, nil
}

// Recommendations suggests up to 3 skills based on recent emotional patterns.
// Only unlocked skills are recommended.
func (s *SkillsService) Recommendations(sessionID string) ([]SkillRecommendation, error) {
	recent, err := s.journalRepo.RecentBySession(sessionID, 10)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.skillRepo.UnlockedBySession(sessionID)
	if err != nil {
		return nil, err
	}

	unlockedSet := make(map[string]bool, len(unlocked))
	for _, skill := range unlocked {
		unlockedSet[skill.SkillName] = true
	}
	recentEmotions := make([]string, 0, len(recent))
	for _, entry := range recent {
		recentEmotions = append(recentEmotions, entry.Emotion)
	}

	return generateRecommendations(recentEmotions, unlockedSet), nil
}

func generateRecommendations(recentEmotions []string, unlocked map[string]bool) []SkillRecommendation {
	has := func(emotions ...string) bool {
		for _, candidate := range emotions {
			for _, emotion := range recentEmotions {
				if emotion == candidate {
					return true
				}
			}
		}
		return false
	}

	recommendations := []SkillRecommendation{}

	if has("anxiety", "worry") {
		if unlocked["grounding_techniques"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "grounding_techniques",
				Reason:           "Your recent anxiety patterns suggest grounding techniques could be very helpful",
				Priority:         "high",
				ImmediateBenefit: "Helps calm anxious thoughts and brings you back to the present moment",
			})
		}
		if unlocked["mindful_breathing"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "mindful_breathing",
				Reason:           "Breathing exercises are excellent for managing anxiety",
				Priority:         "high",
				ImmediateBenefit: "Activates your body's relaxation response",
			})
		}
	}

	if has("sadness", "disappointment") {
		if unlocked["self_compassion"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "self_compassion",
				Reason:           "Self-compassion can help you navigate difficult emotions with kindness",
				Priority:         "medium",
				ImmediateBenefit: "Reduces self-criticism and provides emotional comfort",
			})
		}
		if unlocked["gratitude_practice"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "gratitude_practice",
				Reason:           "Gratitude practice can help shift focus to positive aspects of your life",
				Priority:         "medium",
				ImmediateBenefit: "Naturally boosts mood and perspective",
			})
		}
	}

	if has("anger", "frustration") {
		if unlocked["emotional_regulation"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "emotional_regulation",
				Reason:           "Learning emotional regulation can help you respond rather than react",
				Priority:         "high",
				ImmediateBenefit: "Creates space between triggers and responses",
			})
		}
		if unlocked["mindful_breathing"] {
			recommendations = append(recommendations, SkillRecommendation{
				SkillName:        "mindful_breathing",
				Reason:           "Deep breathing can help cool down intense emotions",
				Priority:         "medium",
				ImmediateBenefit: "Physically calms your nervous system",
			})
		}
	}

	if has("joy", "gratitude") && unlocked["positive_visualization"] {
		recommendations = append(recommendations, SkillRecommendation{
			SkillName:        "positive_visualization",
			Reason:           "Your positive energy makes this a great time for visualization practice",
			Priority:         "low",
			ImmediateBenefit: "Amplifies positive emotions and builds confidence",
		})
	}

	if len(recommendations) == 0 && unlocked["mindful_breathing"] {
		recommendations = append(recommendations, SkillRecommendation{
			SkillName:        "mindful_breathing",
			Reason:           "Daily breathing practice forms a solid foundation for emotional wellness",
			Priority:         "medium",
			ImmediateBenefit: "Establishes a regular mindfulness practice",
		})
	}

	priorityOrder := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityOrder[recommendations[i].Priority] < priorityOrder[recommendations[j].Priority]
	})

	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}
	return recommendations
}

// Catalog returns the static list of all skills with categories, difficulties
// and benefits.
func (s *SkillsService) Catalog() []CatalogSkill {
	catalog := make([]CatalogSkill, 0, len(AvailableSkills))
	for _, name := range AvailableSkills {
		info, _ := SkillDescription(name, 0)
		entry := CatalogSkill{
			SkillName:   name,
			DisplayName: info.Name,
			Description: info.Description,
			Category:    "General Wellness",
			Difficulty:  "Beginner",
			Benefits:    []string{"Promotes emotional wellness", "Supports mental health"},
		}
		if category, ok := skillCategories[name]; ok {
			entry.Category = category
		}
		if difficulty, ok := skillDifficulties[name]; ok {
			entry.Difficulty = difficulty
		}
		if benefits, ok := skillBenefits[name]; ok {
			entry.Benefits = benefits
		}
		catalog = append(catalog, entry)
	}
	return catalog
}

// experienceGained awards 2 XP per minute plus 5 per rating star, capped at
// 100 per session.
func experienceGained(durationMinutes int, completionRating *int) int {
	experience := durationMinutes * 2
	if completionRating != nil {
		experience += *completionRating * 5
	}
	if experience > 100 {
		experience = 100
	}
	return experience
}

func masteryLevelFor(experiencePoints int) int {
	for level, threshold := range masteryThresholds {
		if experiencePoints < threshold {
			if level-1 < 0 {
				return 0
			}
			return level - 1
		}
	}
	return len(masteryThresholds) - 1
}

func progressToNext(masteryLevel, experiencePoints int) float64 {
	if masteryLevel >= masteryLevels-1 {
		return 1.0
	}

	current := masteryThresholds[masteryLevel]
	next := masteryThresholds[masteryLevel+1]

	progress := float64(experiencePoints-current) / float64(next-current)
	if progress > 1.0 {
		return 1.0
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// shouldUnlockSkill evaluates one skill's unlock condition against the most
// recent journal entries (newest first).
func shouldUnlockSkill(skillName string, recentEntries []model.JournalEntry, journalCount int64) bool {
	if len(recentEntries) == 0 {
		return skillName == "mindful_breathing"
	}

	recentEmotions := make([]string, 0, len(recentEntries))
	recentSentiments := make([]float64, 0, len(recentEntries))
	for _, entry := range recentEntries {
		recentEmotions = append(recentEmotions, entry.Emotion)
		recentSentiments = append(recentSentiments, entry.SentimentScore)
	}

	hasEmotion := func(names ...string) bool {
		for _, name := range names {
			for _, emotion := range recentEmotions {
				if emotion == name {
					return true
				}
			}
		}
		return false
	}

	switch skillName {
	case "mindful_breathing":
		return true
	case "gratitude_practice":
		// any of the 5 most recent entries clearly positive
		limit := len(recentSentiments)
		if limit > 5 {
			limit = 5
		}
		for _, sentiment := range recentSentiments[:limit] {
			if sentiment > 0.3 {
				return true
			}
		}
		return false
	case "emotional_regulation":
		intense := 0
		for _, sentiment := range recentSentiments {
			if math.Abs(sentiment) > 0.7 {
				intense++
			}
		}
		return intense >= 3
	case "self_compassion":
		return hasEmotion("sadness", "disappointment")
	case "grounding_techniques":
		return hasEmotion("anxiety", "worry")
	case "positive_visualization":
		return journalCount >= 3
	default:
		return false
	}
}
