package service

import (
	"context"
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const planContent = `{"sub_topics":[
	{"title":"Ordering Food","category":"conversation","level":"a2"},
	{"title":"Past Tense Basics","category":"grammar","level":"a2"},
	{"title":"Ordering Food","category":"vocabulary","level":"a2"}
]}`

type lessonFixture struct {
	svc    *LessonService
	lesson *model.Lesson
	db     *gorm.DB
}

func newLessonFixture(t *testing.T, aiURL string) *lessonFixture {
	t.Helper()
	db := newTestDB(t)
	lessonRepo := repository.NewLessonRepository(db)
	userRepo := repository.NewUserRepository(db)

	learner := testLearner()
	require.NoError(t, userRepo.Create(learner))

	lesson := &model.Lesson{
		LearnerID:   learner.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Status:      model.LessonUpcoming,
	}
	require.NoError(t, lessonRepo.Create(lesson))

	svc := NewLessonService(lessonRepo, userRepo, testAIService(aiURL), NewMemoryGenerationLock(), 3)
	return &lessonFixture{svc: svc, lesson: lesson, db: db}
}

func TestGeneratePlanMintsBatch(t *testing.T) {
	srv := chatServer(t, planContent)
	fx := newLessonFixture(t, srv.URL)

	lesson, err := fx.svc.GeneratePlan(context.Background(), fx.lesson.ID)
	require.NoError(t, err)
	require.Len(t, lesson.SubTopics, 3)

	// One shared batch timestamp, positional ids, all unique.
	batchTS := lesson.SubTopics[0].BatchTS
	seen := map[string]bool{}
	for i, st := range lesson.SubTopics {
		assert.Equal(t, batchTS, st.BatchTS)
		assert.Equal(t, i, st.Position)
		assert.Contains(t, st.ID, lesson.ID+"_")
		assert.False(t, seen[st.ID], "duplicate id %s", st.ID)
		seen[st.ID] = true
	}
	assert.Equal(t, batchTS, lesson.LastBatchTS)

	// Identical titles in one batch separate on the index.
	assert.NotEqual(t, lesson.SubTopics[0].ID, lesson.SubTopics[2].ID)
}

func TestGeneratePlanReplacesPreviousBatch(t *testing.T) {
	srv := chatServer(t, planContent)
	fx := newLessonFixture(t, srv.URL)
	ctx := context.Background()

	first, err := fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	require.NoError(t, err)
	oldIDs := make([]string, 0, len(first.SubTopics))
	for _, st := range first.SubTopics {
		oldIDs = append(oldIDs, st.ID)
	}

	// Force the clock past the first batch.
	fx.svc.now = func() time.Time { return time.UnixMilli(first.LastBatchTS + 10) }

	second, err := fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	require.NoError(t, err)
	assert.Greater(t, second.LastBatchTS, first.LastBatchTS)

	// Old ids are retired, not reattached.
	for _, id := range oldIDs {
		var count int64
		fx.db.Model(&model.SubTopic{}).Where("id = ?", id).Count(&count)
		assert.Zero(t, count, "retired id %s still present", id)
	}
}

func TestGeneratePlanFailsClosedOnClockSkew(t *testing.T) {
	srv := chatServer(t, planContent)
	fx := newLessonFixture(t, srv.URL)
	ctx := context.Background()

	first, err := fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	require.NoError(t, err)

	// Clock stands still relative to the last batch: minting must refuse.
	fx.svc.now = func() time.Time { return time.UnixMilli(first.LastBatchTS) }

	_, err = fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	assert.ErrorIs(t, err, util.ErrNonMonotonicBatch)

	// The previous batch stays authoritative.
	current, err := fx.svc.Get(fx.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, current.SubTopics, 3)
	assert.Equal(t, first.LastBatchTS, current.LastBatchTS)
}

func TestGeneratePlanSingleFlight(t *testing.T) {
	srv := chatServer(t, planContent)
	fx := newLessonFixture(t, srv.URL)
	ctx := context.Background()

	acquired, err := fx.svc.Lock.Acquire(ctx, fx.lesson.ID)
	require.NoError(t, err)
	require.True(t, acquired)
	defer fx.svc.Lock.Release(ctx, fx.lesson.ID)

	_, err = fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	assert.ErrorIs(t, err, util.ErrGenerationInFlight)
}

func TestGeneratePlanLockReleasedOnFailure(t *testing.T) {
	srv := chatServer(t, `{"sub_topics":[]}`)
	fx := newLessonFixture(t, srv.URL)
	ctx := context.Background()

	_, err := fx.svc.GeneratePlan(ctx, fx.lesson.ID)
	require.Error(t, err)

	// A failed run must not leave the lesson locked.
	acquired, err := fx.svc.Lock.Acquire(ctx, fx.lesson.ID)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestGeneratePlanGeneratorDown(t *testing.T) {
	fx := newLessonFixture(t, "http://127.0.0.1:1")

	_, err := fx.svc.GeneratePlan(context.Background(), fx.lesson.ID)
	assert.ErrorIs(t, err, util.ErrGenerationUnavailable)

	// Nothing was minted.
	current, err := fx.svc.Get(fx.lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, current.SubTopics)
}

func TestGeneratePlanUnknownLesson(t *testing.T) {
	srv := chatServer(t, planContent)
	fx := newLessonFixture(t, srv.URL)

	_, err := fx.svc.GeneratePlan(context.Background(), "no-such-lesson")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestMemoryGenerationLock(t *testing.T) {
	ctx := context.Background()
	lock := NewMemoryGenerationLock()

	acquired, err := lock.Acquire(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, acquired)

	again, err := lock.Acquire(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := lock.Acquire(ctx, "l2")
	require.NoError(t, err)
	assert.True(t, other)

	require.NoError(t, lock.Release(ctx, "l1"))
	reacquired, err := lock.Acquire(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, reacquired)
}
