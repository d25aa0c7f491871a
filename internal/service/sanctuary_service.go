package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"havenmind_backend/internal/model"
	"havenmind_backend/internal/repository"
	"havenmind_backend/internal/util"
	"havenmind_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	statsCacheTTL        = 60 * time.Second
	backgroundTaskBudget = 3 * time.Minute
)

// JournalEntryResult is returned immediately after an entry is accepted; the
// companion response, element and images arrive asynchronously.
type JournalEntryResult struct {
	Entry     *model.JournalEntry `json:"entry"`
	SessionID string              `json:"session_id"`
	Analysis  SentimentAnalysis   `json:"analysis"`
}

// SanctuaryStats summarizes one session's sanctuary.
type SanctuaryStats struct {
	TotalElements       int64            `json:"total_elements"`
	EmotionDistribution map[string]int64 `json:"emotion_distribution"`
	DominantEmotion     string           `json:"dominant_emotion"`
	AverageSentiment    float64          `json:"average_sentiment"`
	SessionDurationDays int              `json:"session_duration_days"`
	ElementsThisWeek    int64            `json:"elements_this_week"`
}

// SanctuaryService is the write path of the journaling flow: it persists the
// entry synchronously and fans the slow work (companion response, element
// placement, image generation, skill unlocks) out to background goroutines.
type SanctuaryService struct {
	journalRepo *repository.JournalRepository
	elementRepo *repository.ElementRepository
	sentiment   *SentimentService
	visual      *VisualService
	companion   *CompanionService
	images      *ImageService
	skills      *SkillsService
	redis       *redis.Client
}

func NewSanctuaryService(
	journalRepo *repository.JournalRepository,
	elementRepo *repository.ElementRepository,
	sentiment *SentimentService,
	visual *VisualService,
	companion *CompanionService,
	images *ImageService,
	skills *SkillsService,
	redisClient *redis.Client,
) *SanctuaryService {
	return &SanctuaryService{
		journalRepo: journalRepo,
		elementRepo: elementRepo,
		sentiment:   sentiment,
		visual:      visual,
		companion:   companion,
		images:      images,
		skills:      skills,
		redis:       redisClient,
	}
}

// NewSessionID mints a fresh anonymous session id.
func (s *SanctuaryService) NewSessionID() string {
	return uuid.New().String()
}

// CreateJournalEntry analyzes and stores a journal entry, then kicks off the
// asynchronous enrichment. A missing session id starts a new session.
func (s *SanctuaryService) CreateJournalEntry(ctx context.Context, sessionID, content string) (*JournalEntryResult, error) {
	if sessionID == "" {
		sessionID = s.NewSessionID()
	}

	analysis := s.sentiment.Analyze(content)

	entry := &model.JournalEntry{
		SessionID:      sessionID,
		Content:        content,
		Emotion:        analysis.PrimaryEmotion,
		SentimentScore: analysis.SentimentScore,
		AnalyzedThemes: model.JSONMap{
			"themes":     analysis.Themes,
			"emotions":   analysis.Emotions,
			"intensity":  analysis.Intensity,
			"confidence": analysis.Confidence,
		},
	}
	if err := s.journalRepo.Create(entry); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, sessionID)

	go s.generateCompanionResponse(entry.ID, sessionID, content, analysis)
	go s.growSanctuaryElement(entry.ID, sessionID, content, analysis)
	go s.refreshSkillUnlocks(sessionID)

	return &JournalEntryResult{
		Entry:     entry,
		SessionID: sessionID,
		Analysis:  analysis,
	}, nil
}

// generateCompanionResponse asks Luna for a reply and stores it on the entry.
func (s *SanctuaryService) generateCompanionResponse(entryID uint, sessionID, content string, analysis SentimentAnalysis) {
	defer recoverBackgroundTask("companion response")

	ctx, cancel := context.WithTimeout(context.Background(), backgroundTaskBudget)
	defer cancel()

	elementCount, err := s.elementRepo.CountBySession(sessionID)
	if err != nil {
		logger.Log.Warn("counting elements for companion context failed", zap.Error(err))
	}

	recentEmotions := []string{}
	if recent, err := s.journalRepo.RecentBySession(sessionID, 5); err == nil {
		for _, entry := range recent {
			recentEmotions = append(recentEmotions, entry.Emotion)
		}
	}

	response := s.companion.Respond(ctx, content, analysis.PrimaryEmotion, analysis.SentimentScore, analysis.Themes, &SanctuaryContext{
		ElementCount:   elementCount,
		RecentEmotions: recentEmotions,
	})

	if err := s.journalRepo.UpdateCompanionResponse(entryID, response); err != nil {
		logger.Log.Error("storing companion response failed",
			zap.Uint("entry_id", entryID),
			zap.Error(err))
	}
}

// growSanctuaryElement derives a new visual element from the entry and
// attaches a generated image to it.
func (s *SanctuaryService) growSanctuaryElement(entryID uint, sessionID, content string, analysis SentimentAnalysis) {
	defer recoverBackgroundTask("sanctuary element")

	ctx, cancel := context.WithTimeout(context.Background(), backgroundTaskBudget)
	defer cancel()

	existing, err := s.elementRepo.FindBySession(sessionID)
	if err != nil {
		logger.Log.Error("loading elements for placement failed", zap.Error(err))
		return
	}

	emotion := s.visual.SentimentEmotion(analysis.SentimentScore)
	elementType := s.visual.ElementType(analysis.SentimentScore)
	x, y := s.visual.Position(existing)

	element := &model.SanctuaryElement{
		SessionID:      sessionID,
		ElementType:    elementType,
		XPosition:      x,
		YPosition:      y,
		Size:           s.visual.ElementSize(analysis.SentimentScore),
		Color:          s.visual.EmotionColor(emotion),
		Emotion:        emotion,
		SentimentScore: analysis.SentimentScore,
		JournalEntry:   content,
	}
	if err := s.elementRepo.Create(element); err != nil {
		logger.Log.Error("creating sanctuary element failed",
			zap.Uint("entry_id", entryID),
			zap.Error(err))
		return
	}

	s.invalidateStats(ctx, sessionID)

	imageURL, imagePrompt := s.images.SanctuaryImage(ctx, elementType, emotion, content)
	if imageURL == "" {
		return
	}

	element.ImageURL = imageURL
	element.ImagePrompt = imagePrompt
	if err := s.elementRepo.Save(element); err != nil {
		logger.Log.Error("attaching image to element failed",
			zap.Uint("element_id", element.ID),
			zap.Error(err))
	}
}

// refreshSkillUnlocks re-runs the unlock rules after each new entry.
func (s *SanctuaryService) refreshSkillUnlocks(sessionID string) {
	defer recoverBackgroundTask("skill unlocks")

	recent, err := s.journalRepo.RecentBySession(sessionID, 10)
	if err != nil {
		logger.Log.Error("loading entries for skill unlocks failed", zap.Error(err))
		return
	}
	total, err := s.journalRepo.CountBySession(sessionID)
	if err != nil {
		logger.Log.Error("counting entries for skill unlocks failed", zap.Error(err))
		return
	}

	unlocked, err := s.skills.UpdateSkillUnlocks(sessionID, recent, total)
	if err != nil {
		logger.Log.Error("updating skill unlocks failed", zap.Error(err))
		return
	}
	if len(unlocked) > 0 {
		logger.Log.Info("skills unlocked",
			zap.String("session_id", sessionID),
			zap.Strings("skills", unlocked))
	}
}

func recoverBackgroundTask(task string) {
	if r := recover(); r != nil {
		logger.Log.Error("background task panicked",
			zap.String("task", task),
			zap.Any("panic", r))
	}
}

// Elements returns a session's elements, oldest first.
func (s *SanctuaryService) Elements(sessionID string) ([]model.SanctuaryElement, error) {
	return s.elementRepo.FindBySession(sessionID)
}

// Entries returns a session's journal entries, newest first.
func (s *SanctuaryService) Entries(sessionID string, limit, offset int) ([]model.JournalEntry, error) {
	return s.journalRepo.FindBySession(sessionID, limit, offset)
}

// DeleteElement removes one element.
func (s *SanctuaryService) DeleteElement(ctx context.Context, elementID uint) error {
	element, err := s.elementRepo.FindByID(elementID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrElementNotFound
	}
	if err != nil {
		return err
	}

	if err := s.elementRepo.Delete(elementID); err != nil {
		return err
	}
	s.invalidateStats(ctx, element.SessionID)
	return nil
}

// Stats aggregates sanctuary statistics, cached in redis for a minute.
func (s *SanctuaryService) Stats(ctx context.Context, sessionID string) (*SanctuaryStats, error) {
	cacheKey := statsCacheKey(sessionID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats SanctuaryStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("stats cache read failed", zap.Error(err))
		}
	}

	total, err := s.elementRepo.CountBySession(sessionID)
	if err != nil {
		return nil, err
	}
	distribution, err := s.elementRepo.EmotionDistribution(sessionID)
	if err != nil {
		return nil, err
	}
	avgSentiment, err := s.elementRepo.AverageSentiment(sessionID)
	if err != nil {
		return nil, err
	}

	dominant := "neutral"
	var best int64
	for emotion, count := range distribution {
		if count > best || (count == best && emotion < dominant) {
			best = count
			dominant = emotion
		}
	}

	durationDays := 0
	first, err := s.elementRepo.FirstBySession(sessionID)
	if err == nil {
		durationDays = int(time.Since(first.CreatedAt).Hours() / 24)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	thisWeek, err := s.elementRepo.CountBySessionSince(sessionID, weekAgo)
	if err != nil {
		return nil, err
	}

	stats := &SanctuaryStats{
		TotalElements:       total,
		EmotionDistribution: distribution,
		DominantEmotion:     dominant,
		AverageSentiment:    math.Round(avgSentiment*1000) / 1000,
		SessionDurationDays: durationDays,
		ElementsThisWeek:    thisWeek,
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, statsCacheTTL).Err(); err != nil {
				logger.Log.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *SanctuaryService) invalidateStats(ctx context.Context, sessionID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey(sessionID)).Err(); err != nil {
		logger.Log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func statsCacheKey(sessionID string) string {
	return "sanctuary:stats:" + sessionID
}
