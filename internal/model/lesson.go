package model

import (
	"time"
)

type LessonStatus string

const (
	LessonUpcoming  LessonStatus = "upcoming"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

// Lesson is one scheduled tutoring session. Its sub-topic list is owned by
// value: a plan regeneration replaces the whole set in one transaction and
// the retired sub-topic ids are never reused or re-attached.
// swagger:model Lesson
type Lesson struct {
	UUIDBase
	LearnerID   uint         `gorm:"index;not null" json:"learnerId"`
	TutorID     uint         `gorm:"index" json:"tutorId"`
	ScheduledAt time.Time    `json:"scheduledAt"`
	Status      LessonStatus `gorm:"type:varchar(10);default:'upcoming'" json:"status"`
	// LastBatchTS is the millisecond timestamp of the most recent sub-topic
	// batch. A new batch whose timestamp is not strictly greater fails
	// closed (clock skew would risk colliding ids).
	LastBatchTS int64      `gorm:"default:0" json:"lastBatchTs"`
	SubTopics   []SubTopic `gorm:"foreignKey:LessonID" json:"subTopics"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// SubTopic is one AI-proposed unit of lesson content. Its id is minted by
// service.MintSubTopicID and is globally unique across lessons and across
// regenerations of the same lesson.
// swagger:model SubTopic
type SubTopic struct {
	ID       string        `gorm:"primaryKey;type:varchar(191)" json:"id"`
	LessonID string        `gorm:"index;type:varchar(36);not null" json:"lessonId"`
	Title    string        `gorm:"size:255;not null" json:"title"`
	Category string        `gorm:"size:50" json:"category"` // grammar, vocabulary, conversation, ...
	Level    LanguageLevel `gorm:"type:varchar(2)" json:"level"`
	// BatchTS is shared by every sub-topic minted in the same generation
	// call and embedded in the id.
	BatchTS   int64     `gorm:"index;not null" json:"batchTs"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SubTopic) TableName() string {
	return "sub_topics"
}
