package repository

import (
	"time"

	"havenmind_backend/internal/model"

	"gorm.io/gorm"
)

type ElementRepository struct {
	DB *gorm.DB
}

func NewElementRepository(db *gorm.DB) *ElementRepository {
	return &ElementRepository{DB: db}
}

func (r *ElementRepository) Create(element *model.SanctuaryElement) error {
	return r.DB.Create(element).Error
}

func (r *ElementRepository) Save(element *model.SanctuaryElement) error {
	return r.DB.Save(element).Error
}

func (r *ElementRepository) FindByID(id uint) (*model.SanctuaryElement, error) {
	var element model.SanctuaryElement
	err := r.DB.First(&element, id).Error
	if err != nil {
		return nil, err
	}
	return &element, nil
}

// FindBySession returns elements oldest first so the client can replay the
// sanctuary's growth in order.
func (r *ElementRepository) FindBySession(sessionID string) ([]model.SanctuaryElement, error) {
	var elements []model.SanctuaryElement
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&elements).Error
	if err != nil {
		return nil, err
	}
	return elements, nil
}

func (r *ElementRepository) Delete(id uint) error {
	return r.DB.Delete(&model.SanctuaryElement{}, id).Error
}

func (r *ElementRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SanctuaryElement{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *ElementRepository) CountBySessionSince(sessionID string, since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SanctuaryElement{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}

// EmotionDistribution counts elements per emotion for one session.
func (r *ElementRepository) EmotionDistribution(sessionID string) (map[string]int64, error) {
	type row struct {
		Emotion string
		Count   int64
	}
	var rows []row
	err := r.DB.Model(&model.SanctuaryElement{}).
		Select("emotion, count(*) as count").
		Where("session_id = ?", sessionID).
		Group("emotion").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	distribution := make(map[string]int64, len(rows))
	for _, item := range rows {
		distribution[item.Emotion] = item.Count
	}
	return distribution, nil
}

func (r *ElementRepository) AverageSentiment(sessionID string) (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.SanctuaryElement{}).
		Select("avg(sentiment_score)").
		Where("session_id = ?", sessionID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// FirstBySession returns the oldest element, used to compute session age.
func (r *ElementRepository) FirstBySession(sessionID string) (*model.SanctuaryElement, error) {
	var element model.SanctuaryElement
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").
		First(&element).Error
	if err != nil {
		return nil, err
	}
	return &element, nil
}
