package repository

import (
	"havenmind_backend/internal/model"

	"gorm.io/gorm"
)

type StoryRepository struct {
	DB *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{DB: db}
}

func (r *StoryRepository) Create(story *model.Story) error {
	return r.DB.Create(story).Error
}

func (r *StoryRepository) FindByID(id uint) (*model.Story, error) {
	var story model.Story
	err := r.DB.First(&story, id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *StoryRepository) FindBySession(sessionID string, limit, offset int) ([]model.Story, error) {
	var stories []model.Story
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *StoryRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Story{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *StoryRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Story{}, id).Error
}
