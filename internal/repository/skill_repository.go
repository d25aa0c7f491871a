package repository

import (
	"havenmind_backend/internal/model"

	"gorm.io/gorm"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) Create(skill *model.UserSkill) error {
	return r.DB.Create(skill).Error
}

func (r *SkillRepository) Save(skill *model.UserSkill) error {
	return r.DB.Save(skill).Error
}

func (r *SkillRepository) FindBySession(sessionID string) ([]model.UserSkill, error) {
	var skills []model.UserSkill
	err := r.DB.Where("session_id = ?", sessionID).
		Order("skill_name asc").
		Find(&skills).Error
	if err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *SkillRepository) FindBySessionAndName(sessionID, skillName string) (*model.UserSkill, error) {
	var skill model.UserSkill
	err := r.DB.Where("session_id = ? AND skill_name = ?", sessionID, skillName).
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *SkillRepository) UnlockedBySession(sessionID string) ([]model.UserSkill, error) {
	var skills []model.UserSkill
	err := r.DB.Where("session_id = ? AND unlocked = ?", sessionID, true).
		Find(&skills).Error
	if err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *SkillRepository) CountUnlocked(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserSkill{}).
		Where("session_id = ? AND unlocked = ?", sessionID, true).
		Count(&count).Error
	return count, err
}

// MasteryDistribution counts unlocked skills per mastery level.
func (r *SkillRepository) MasteryDistribution(sessionID string) (map[int]int64, error) {
	type row struct {
		MasteryLevel int
		Count        int64
	}
	var rows []row
	err := r.DB.Model(&model.UserSkill{}).
		Select("mastery_level, count(*) as count").
		Where("session_id = ? AND unlocked = ?", sessionID, true).
		Group("mastery_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	distribution := make(map[int]int64, len(rows))
	for _, item := range rows {
		distribution[item.MasteryLevel] = item.Count
	}
	return distribution, nil
}
