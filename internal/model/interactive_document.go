package model

import (
	"time"
)

// InteractiveDocument is the expanded content for one sub-topic. It is
// created lazily on first learner access and keyed by the sub-topic id for
// its whole lifetime: regeneration replaces Sections in place and bumps
// Version, it never mints a new id.
// swagger:model InteractiveDocument
type InteractiveDocument struct {
	SubTopicID string `gorm:"primaryKey;type:varchar(191)" json:"subTopicId"`
	LessonID   string `gorm:"index;type:varchar(36);not null" json:"lessonId"`
	// BatchTS is copied from the parent sub-topic, not re-captured at
	// assembly time.
	BatchTS int64 `gorm:"not null" json:"batchTs"`
	// Version lets a reader holding a document detect that it was
	// regenerated underneath a session.
	Version       int       `gorm:"default:1" json:"version"`
	Sections      []Section `gorm:"serializer:json;type:json" json:"sections"`
	FallbackCount int       `gorm:"default:0" json:"fallbackCount"` // synthesized entries across all sections
	GeneratedAt   time.Time `json:"generatedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (InteractiveDocument) TableName() string {
	return "interactive_documents"
}
