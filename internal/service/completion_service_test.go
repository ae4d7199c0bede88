package service

import (
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type completionFixture struct {
	svc        *CompletionService
	lessonRepo *repository.LessonRepository
	lesson     *model.Lesson
	learnerID  uint
	db         *gorm.DB
}

func newCompletionFixture(t *testing.T) *completionFixture {
	t.Helper()
	db := newTestDB(t)
	lessonRepo := repository.NewLessonRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	userRepo := repository.NewUserRepository(db)

	learner := testLearner()
	require.NoError(t, userRepo.Create(learner))

	lesson := &model.Lesson{LearnerID: learner.ID, ScheduledAt: time.Now()}
	require.NoError(t, lessonRepo.Create(lesson))

	batchTS := int64(1700000000000)
	subTopics := []model.SubTopic{
		{ID: lesson.ID + "_1700000000000_0_greetings", LessonID: lesson.ID, Title: "Greetings", Category: "conversation", Level: model.LevelA1, BatchTS: batchTS, Position: 0},
		{ID: lesson.ID + "_1700000000000_1_numbers", LessonID: lesson.ID, Title: "Numbers", Category: "vocabulary", Level: model.LevelA1, BatchTS: batchTS, Position: 1},
	}
	require.NoError(t, lessonRepo.ReplaceSubTopics(lesson.ID, batchTS, subTopics))

	return &completionFixture{
		svc:        NewCompletionService(completionRepo, lessonRepo),
		lessonRepo: lessonRepo,
		lesson:     lesson,
		learnerID:  learner.ID,
		db:         db,
	}
}

func TestRecordCompletionDenormalizes(t *testing.T) {
	fx := newCompletionFixture(t)
	subTopicID := fx.lesson.ID + "_1700000000000_0_greetings"

	score := 85
	record, err := fx.svc.RecordCompletion(fx.learnerID, subTopicID, RecordCompletionReq{Score: &score, Notes: "good session"})
	require.NoError(t, err)

	assert.Equal(t, "Greetings", record.Title)
	assert.Equal(t, "conversation", record.Category)
	assert.Equal(t, model.LevelA1, record.Level)
	assert.Equal(t, fx.lesson.ID, record.LessonID)
	assert.Equal(t, 85, *record.Score)
	assert.False(t, record.CompletedAt.IsZero())
}

// Completing twice is a no-op that returns the original record; the first
// CompletedAt wins.
func TestRecordCompletionIdempotent(t *testing.T) {
	fx := newCompletionFixture(t)
	subTopicID := fx.lesson.ID + "_1700000000000_0_greetings"

	first, err := fx.svc.RecordCompletion(fx.learnerID, subTopicID, RecordCompletionReq{})
	require.NoError(t, err)

	second, err := fx.svc.RecordCompletion(fx.learnerID, subTopicID, RecordCompletionReq{Notes: "should be ignored"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Notes, second.Notes)
	assert.WithinDuration(t, first.CompletedAt, second.CompletedAt, time.Second)

	var count int64
	fx.db.Model(&model.CompletionRecord{}).Where("learner_id = ?", fx.learnerID).Count(&count)
	assert.EqualValues(t, 1, count)
}

// A completion against an id that does not exist is rejected outright; there
// is no closest-match lookup.
func TestRecordCompletionUnknownSubTopic(t *testing.T) {
	fx := newCompletionFixture(t)

	_, err := fx.svc.RecordCompletion(fx.learnerID, fx.lesson.ID+"_1700000000000_9_no-such", RecordCompletionReq{})
	assert.ErrorIs(t, err, util.ErrSubTopicNotFound)
}

func TestIsCompleteExactIDOnly(t *testing.T) {
	fx := newCompletionFixture(t)
	subTopicID := fx.lesson.ID + "_1700000000000_0_greetings"

	_, err := fx.svc.RecordCompletion(fx.learnerID, subTopicID, RecordCompletionReq{})
	require.NoError(t, err)

	done, err := fx.svc.IsComplete(fx.learnerID, subTopicID)
	require.NoError(t, err)
	assert.True(t, done)

	// Similar id (different batch, same slug) must not match.
	done, err = fx.svc.IsComplete(fx.learnerID, fx.lesson.ID+"_1700000000999_0_greetings")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestProgressReportsOrphansAfterRegeneration(t *testing.T) {
	fx := newCompletionFixture(t)
	oldID := fx.lesson.ID + "_1700000000000_0_greetings"

	_, err := fx.svc.RecordCompletion(fx.learnerID, oldID, RecordCompletionReq{})
	require.NoError(t, err)

	// Regenerate the plan; "Greetings" comes back under a new id.
	newBatch := int64(1700000000500)
	newID := fx.lesson.ID + "_1700000000500_0_greetings"
	require.NoError(t, fx.lessonRepo.ReplaceSubTopics(fx.lesson.ID, newBatch, []model.SubTopic{
		{ID: newID, LessonID: fx.lesson.ID, Title: "Greetings", Category: "conversation", Level: model.LevelA1, BatchTS: newBatch, Position: 0},
	}))

	progress, err := fx.svc.Progress(fx.learnerID, fx.lesson.ID)
	require.NoError(t, err)

	// The regenerated sub-topic starts fresh; the old record is orphaned,
	// never re-attributed to the similarly titled successor.
	assert.False(t, progress.Completed[newID])
	require.Len(t, progress.Orphaned, 1)
	assert.Equal(t, oldID, progress.Orphaned[0].SubTopicID)
	assert.Equal(t, "Greetings", progress.Orphaned[0].Title)
}

func TestProgressCompletedMap(t *testing.T) {
	fx := newCompletionFixture(t)
	doneID := fx.lesson.ID + "_1700000000000_0_greetings"
	pendingID := fx.lesson.ID + "_1700000000000_1_numbers"

	_, err := fx.svc.RecordCompletion(fx.learnerID, doneID, RecordCompletionReq{})
	require.NoError(t, err)

	progress, err := fx.svc.Progress(fx.learnerID, fx.lesson.ID)
	require.NoError(t, err)

	assert.True(t, progress.Completed[doneID])
	assert.False(t, progress.Completed[pendingID])
	assert.Empty(t, progress.Orphaned)
}

func TestListHistoryKeepsOrphans(t *testing.T) {
	fx := newCompletionFixture(t)
	oldID := fx.lesson.ID + "_1700000000000_0_greetings"

	_, err := fx.svc.RecordCompletion(fx.learnerID, oldID, RecordCompletionReq{})
	require.NoError(t, err)

	require.NoError(t, fx.lessonRepo.ReplaceSubTopics(fx.lesson.ID, 1700000000500, nil))

	history, err := fx.svc.ListHistory(fx.learnerID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, oldID, history[0].SubTopicID)
}
