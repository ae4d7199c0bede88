package model

import (
	"time"
)

type UserRole string

const (
	Learner UserRole = "learner"
	Tutor   UserRole = "tutor"
	Admin   UserRole = "admin"
)

// LanguageLevel is a CEFR proficiency level. Level drives how many worked
// examples the section validator demands (lower levels need more scaffolding).
type LanguageLevel string

const (
	LevelA1 LanguageLevel = "a1"
	LevelA2 LanguageLevel = "a2"
	LevelB1 LanguageLevel = "b1"
	LevelB2 LanguageLevel = "b2"
	LevelC1 LanguageLevel = "c1"
	LevelC2 LanguageLevel = "c2"
)

// swagger:model User
type User struct {
	BaseModel
	Name           string        `gorm:"size:100;not null" json:"name"`
	Email          string        `gorm:"size:100;unique;not null" json:"email"`
	Password       string        `gorm:"size:100;not null" json:"-"`
	Role           UserRole      `gorm:"type:varchar(10);default:'learner'" json:"role"`
	NativeLanguage string        `gorm:"size:50" json:"nativeLanguage"`
	TargetLanguage string        `gorm:"size:50" json:"targetLanguage"`
	Level          LanguageLevel `gorm:"type:varchar(2);default:'a1'" json:"level"`
	Goals          string        `gorm:"type:text" json:"goals"`
	Gaps           string        `gorm:"type:text" json:"gaps"` // weaknesses the generator should target
	Disabled       bool          `gorm:"default:false" json:"disabled"`
	LastLogin      time.Time     `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen       time.Time     `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
