package model

import (
	"time"
)

// CompletionRecord is an append-only ledger entry. It references a sub-topic
// id but must never assume that sub-topic still exists in its lesson's
// current set: a regeneration retires ids and the record becomes orphaned,
// not edited. Title, category and level are denormalized at write time so
// orphaned records stay displayable.
// swagger:model CompletionRecord
type CompletionRecord struct {
	BaseModel
	LearnerID  uint          `gorm:"index:idx_learner_subtopic,unique;not null" json:"learnerId"`
	SubTopicID string        `gorm:"index:idx_learner_subtopic,unique;type:varchar(191);not null" json:"subTopicId"`
	LessonID   string        `gorm:"index;type:varchar(36)" json:"lessonId"`
	Title      string        `gorm:"size:255" json:"title"`
	Category   string        `gorm:"size:50" json:"category"`
	Level      LanguageLevel `gorm:"type:varchar(2)" json:"level"`
	Score      *int          `json:"score,omitempty"`
	Notes      string        `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt time.Time    `json:"completedAt"`
	// LegacyID keeps the pre-migration id when the operator batch re-keys a
	// record onto the lesson-prefixed scheme.
	LegacyID string `gorm:"size:191" json:"legacyId,omitempty"`
}

func (CompletionRecord) TableName() string {
	return "completion_records"
}
