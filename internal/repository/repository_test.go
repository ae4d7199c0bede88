package repository

import (
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Lesson{},
		&model.SubTopic{},
		&model.InteractiveDocument{},
		&model.CompletionRecord{},
		&model.MediaAsset{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createLesson(t *testing.T, db *gorm.DB) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{LearnerID: 1, ScheduledAt: time.Now()}
	require.NoError(t, NewLessonRepository(db).Create(lesson))
	return lesson
}
