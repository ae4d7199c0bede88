package service

import (
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Legacy completion ids in these tests are the pre-scheme bare slugs; the
// current scheme appends them after an underscore.
const legacySlugPattern = `^[a-z][a-z-]*$`

type migrationFixture struct {
	svc            *LegacyMigrationService
	completionRepo *repository.CompletionRepository
	lessonRepo     *repository.LessonRepository
	learnerID      uint
	lessonID       string
	db             *gorm.DB
}

func newMigrationFixture(t *testing.T, pattern string) *migrationFixture {
	t.Helper()
	db := newTestDB(t)
	lessonRepo := repository.NewLessonRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	userRepo := repository.NewUserRepository(db)

	learner := testLearner()
	require.NoError(t, userRepo.Create(learner))

	lesson := &model.Lesson{LearnerID: learner.ID, ScheduledAt: time.Now()}
	require.NoError(t, lessonRepo.Create(lesson))

	svc, err := NewLegacyMigrationService(completionRepo, lessonRepo, pattern)
	require.NoError(t, err)

	return &migrationFixture{
		svc:            svc,
		completionRepo: completionRepo,
		lessonRepo:     lessonRepo,
		learnerID:      learner.ID,
		lessonID:       lesson.ID,
		db:             db,
	}
}

func (fx *migrationFixture) addSubTopic(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, fx.db.Create(&model.SubTopic{
		ID:       id,
		LessonID: fx.lessonID,
		Title:    "Migrated",
		Level:    model.LevelA1,
		BatchTS:  1700000000000,
	}).Error)
}

func (fx *migrationFixture) addRecord(t *testing.T, subTopicID string) *model.CompletionRecord {
	t.Helper()
	record := &model.CompletionRecord{
		LearnerID:   fx.learnerID,
		SubTopicID:  subTopicID,
		CompletedAt: time.Now(),
	}
	require.NoError(t, fx.completionRepo.Create(record))
	return record
}

func TestMigrationRefusesWithoutPattern(t *testing.T) {
	fx := newMigrationFixture(t, "")

	_, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit")
}

func TestMigrationRejectsInvalidPattern(t *testing.T) {
	db := newTestDB(t)
	_, err := NewLegacyMigrationService(
		repository.NewCompletionRepository(db),
		repository.NewLessonRepository(db),
		"([unclosed",
	)
	assert.Error(t, err)
}

func TestMigrationRekeysUniqueMatch(t *testing.T) {
	fx := newMigrationFixture(t, legacySlugPattern)
	newID := fx.lessonID + "_1700000000000_0_greetings"
	fx.addSubTopic(t, newID)
	record := fx.addRecord(t, "greetings")

	report, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Migrated)
	assert.Empty(t, report.Ambiguous)

	var migrated model.CompletionRecord
	require.NoError(t, fx.db.First(&migrated, record.ID).Error)
	assert.Equal(t, newID, migrated.SubTopicID)
	assert.Equal(t, "greetings", migrated.LegacyID)
	assert.Equal(t, fx.lessonID, migrated.LessonID)
}

// Two current ids sharing the legacy suffix: the record is reported and left
// untouched. Guessing would attribute completion to the wrong content.
func TestMigrationReportsAmbiguous(t *testing.T) {
	fx := newMigrationFixture(t, legacySlugPattern)
	fx.addSubTopic(t, fx.lessonID+"_1700000000000_0_greetings")
	fx.addSubTopic(t, fx.lessonID+"_1700000000000_1_greetings")
	record := fx.addRecord(t, "greetings")

	report, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated)
	require.Len(t, report.Ambiguous, 1)
	assert.Equal(t, record.ID, report.Ambiguous[0].RecordID)
	assert.Equal(t, "greetings", report.Ambiguous[0].LegacyID)
	assert.Len(t, report.Ambiguous[0].Candidates, 2)

	var untouched model.CompletionRecord
	require.NoError(t, fx.db.First(&untouched, record.ID).Error)
	assert.Equal(t, "greetings", untouched.SubTopicID)
	assert.Empty(t, untouched.LegacyID)
}

func TestMigrationSkipsCurrentSchemeAndNoMatch(t *testing.T) {
	fx := newMigrationFixture(t, legacySlugPattern)
	currentID := fx.lessonID + "_1700000000000_0_numbers"
	fx.addSubTopic(t, currentID)

	// Already on the current scheme: pattern does not match, skipped.
	fx.addRecord(t, currentID)
	// Legacy-shaped but with no surviving target: skipped, not deleted.
	fx.addRecord(t, "colours")

	report, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 0, report.Migrated)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Ambiguous)
}

// A run is idempotent: once re-keyed, LegacyID marks the record and a second
// pass skips it.
func TestMigrationIdempotent(t *testing.T) {
	fx := newMigrationFixture(t, legacySlugPattern)
	newID := fx.lessonID + "_1700000000000_0_greetings"
	fx.addSubTopic(t, newID)
	fx.addRecord(t, "greetings")

	_, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.NoError(t, err)

	report, err := fx.svc.MigrateLegacy(fx.learnerID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated)
	assert.Equal(t, 1, report.Skipped)
}
