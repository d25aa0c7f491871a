package repository

import (
	"havenmind_backend/internal/model"

	"gorm.io/gorm"
)

type JournalRepository struct {
	DB *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{DB: db}
}

func (r *JournalRepository) Create(entry *model.JournalEntry) error {
	return r.DB.Create(entry).Error
}

func (r *JournalRepository) FindByID(id uint) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	err := r.DB.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *JournalRepository) FindBySession(sessionID string, limit, offset int) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentBySession returns the newest entries first.
func (r *JournalRepository) RecentBySession(sessionID string, limit int) ([]model.JournalEntry, error) {
	return r.FindBySession(sessionID, limit, 0)
}

func (r *JournalRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.JournalEntry{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *JournalRepository) UpdateCompanionResponse(id uint, response string) error {
	return r.DB.Model(&model.JournalEntry{}).
		Where("id = ?", id).
		Update("companion_response", response).Error
}
