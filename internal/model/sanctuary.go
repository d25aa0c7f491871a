package model

import "time"

// JournalEntry is a single piece of writing plus the analysis derived from it.
// The session id is the only tenancy boundary; there are no user accounts.
type JournalEntry struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SessionID         string    `gorm:"size:64;index;not null" json:"session_id"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	Emotion           string    `gorm:"size:32;not null" json:"emotion"`
	SentimentScore    float64   `gorm:"not null" json:"sentiment_score"`
	AnalyzedThemes    JSONMap   `gorm:"type:json" json:"analyzed_themes"`
	CompanionResponse string    `gorm:"type:text" json:"companion_response"`
	CreatedAt         time.Time `json:"created_at"`
}

// SanctuaryElement is one visual object placed on the sanctuary canvas,
// derived from a journal entry.
type SanctuaryElement struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"size:64;index;not null" json:"session_id"`
	ElementType    string    `gorm:"size:32;not null" json:"element_type"`
	XPosition      float64   `gorm:"not null" json:"x_position"`
	YPosition      float64   `gorm:"not null" json:"y_position"`
	ZPosition      float64   `gorm:"default:0" json:"z_position"`
	Size           float64   `gorm:"default:1" json:"size"`
	Color          string    `gorm:"size:16;not null" json:"color"`
	Emotion        string    `gorm:"size:32;not null" json:"emotion"`
	SentimentScore float64   `gorm:"not null" json:"sentiment_score"`
	JournalEntry   string    `gorm:"type:text;not null" json:"journal_entry"`
	ImageURL       string    `gorm:"type:text" json:"image_url"`
	ImagePrompt    string    `gorm:"type:text" json:"image_prompt"`
	CreatedAt      time.Time `json:"created_at"`
}

// Story is a generated narrative tied to a session's sanctuary state.
type Story struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SessionID        string    `gorm:"size:64;index;not null" json:"session_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Content          string    `gorm:"type:text;not null" json:"content"`
	Style            string    `gorm:"size:32;not null" json:"style"`
	Theme            string    `gorm:"size:64;not null" json:"theme"`
	ReadingTime      int       `gorm:"not null" json:"reading_time"`
	SanctuaryContext JSONMap   `gorm:"type:json" json:"sanctuary_context"`
	EmotionContext   string    `gorm:"size:32;not null" json:"emotion_context"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserSkill tracks one therapeutic skill's progression for a session.
type UserSkill struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	SessionID        string     `gorm:"size:64;index;not null" json:"session_id"`
	SkillName        string     `gorm:"size:64;not null" json:"skill_name"`
	MasteryLevel     int        `gorm:"default:0" json:"mastery_level"`
	ExperiencePoints int        `gorm:"default:0" json:"experience_points"`
	TimesPracticed   int        `gorm:"default:0" json:"times_practiced"`
	Unlocked         bool       `gorm:"default:false" json:"unlocked"`
	LastPracticed    *time.Time `json:"last_practiced"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SkillSession is one recorded practice session.
type SkillSession struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SessionID        string    `gorm:"size:64;index;not null" json:"session_id"`
	SkillName        string    `gorm:"size:64;not null" json:"skill_name"`
	DurationMinutes  int       `gorm:"not null" json:"duration_minutes"`
	CompletionRating *int      `json:"completion_rating"`
	Notes            string    `gorm:"type:text" json:"notes"`
	EmotionsBefore   JSONMap   `gorm:"type:json" json:"emotions_before"`
	EmotionsAfter    JSONMap   `gorm:"type:json" json:"emotions_after"`
	CreatedAt        time.Time `json:"created_at"`
}
