package repository

import (
	"havenmind_backend/internal/model"

	"gorm.io/gorm"
)

type SkillSessionRepository struct {
	DB *gorm.DB
}

func NewSkillSessionRepository(db *gorm.DB) *SkillSessionRepository {
	return &SkillSessionRepository{DB: db}
}

func (r *SkillSessionRepository) Create(session *model.SkillSession) error {
	return r.DB.Create(session).Error
}

func (r *SkillSessionRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SkillSession{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *SkillSessionRepository) TotalDuration(sessionID string) (int64, error) {
	var total *int64
	err := r.DB.Model(&model.SkillSession{}).
		Select("sum(duration_minutes)").
		Where("session_id = ?", sessionID).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *SkillSessionRepository) AverageRating(sessionID string) (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.SkillSession{}).
		Select("avg(completion_rating)").
		Where("session_id = ? AND completion_rating IS NOT NULL", sessionID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// MostPracticed returns the skill with the highest session count, or "" when
// nothing has been practiced.
func (r *SkillSessionRepository) MostPracticed(sessionID string) (string, error) {
	type row struct {
		SkillName string
		Count     int64
	}
	var result row
	err := r.DB.Model(&model.SkillSession{}).
		Select("skill_name, count(*) as count").
		Where("session_id = ?", sessionID).
		Group("skill_name").
		Order("count desc").
		Limit(1).
		Scan(&result).Error
	if err != nil {
		return "", err
	}
	return result.SkillName, nil
}

// DistinctPracticeDates returns the distinct calendar dates with at least one
// practice session, newest first. Dates come back as "2006-01-02" strings.
func (r *SkillSessionRepository) DistinctPracticeDates(sessionID string) ([]string, error) {
	var dates []string
	err := r.DB.Model(&model.SkillSession{}).
		Select("DISTINCT DATE(created_at) as practice_date").
		Where("session_id = ?", sessionID).
		Order("practice_date desc").
		Pluck("practice_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
