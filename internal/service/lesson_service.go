package service

import (
	"context"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"

	"go.uber.org/zap"
)

type LessonService struct {
	LessonRepo *repository.LessonRepository
	UserRepo   *repository.UserRepository
	AI         *AIService
	Lock       GenerationLock
	// SubTopicCount is how many proposals one plan generation requests.
	SubTopicCount int
	// now is swapped out by tests; production always uses wall clock.
	now func() time.Time
}

func NewLessonService(lessonRepo *repository.LessonRepository, userRepo *repository.UserRepository, ai *AIService, lock GenerationLock, subTopicCount int) *LessonService {
	return &LessonService{
		LessonRepo:    lessonRepo,
		UserRepo:      userRepo,
		AI:            ai,
		Lock:          lock,
		SubTopicCount: subTopicCount,
		now:           time.Now,
	}
}

type ScheduleLessonReq struct {
	LearnerID   uint      `json:"learnerId" binding:"required"`
	TutorID     uint      `json:"tutorId"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

func (s *LessonService) Schedule(req ScheduleLessonReq) (*model.Lesson, error) {
	lesson := &model.Lesson{
		LearnerID:   req.LearnerID,
		TutorID:     req.TutorID,
		ScheduledAt: req.ScheduledAt,
		Status:      model.LessonUpcoming,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Get(id string) (*model.Lesson, error) {
	return s.LessonRepo.FindByID(id)
}

func (s *LessonService) ListByLearner(learnerID uint) ([]model.Lesson, error) {
	return s.LessonRepo.FindByLearner(learnerID)
}

func (s *LessonService) UpdateStatus(id string, status model.LessonStatus) error {
	return s.LessonRepo.UpdateStatus(id, status)
}

// GeneratePlan runs one lesson-plan generation: it acquires the per-lesson
// single-flight lock, asks the AI collaborator for proposals, captures one
// millisecond batch timestamp, mints ids, and atomically replaces the
// lesson's sub-topic set. On any failure the previous set stays
// authoritative; partially minted ids are never exposed.
func (s *LessonService) GeneratePlan(ctx context.Context, lessonID string) (*model.Lesson, error) {
	acquired, err := s.Lock.Acquire(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, util.ErrGenerationInFlight
	}
	defer func() {
		if err := s.Lock.Release(context.Background(), lessonID); err != nil {
			logger.Log.Error("failed to release generation lock",
				zap.String("lessonId", lessonID), zap.Error(err))
		}
	}()

	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, err
	}

	learner, err := s.UserRepo.FindByID(lesson.LearnerID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.AI.GenerateLessonPlan(ctx, learner, s.SubTopicCount)
	if err != nil {
		return nil, err
	}

	// One timestamp per batch, captured after the long AI call so the
	// window for same-millisecond clashes with a previous batch is as
	// small as possible.
	batchTS := s.now().UnixMilli()
	if batchTS <= lesson.LastBatchTS {
		// Clock went backwards (or stood still at millisecond resolution)
		// relative to the last batch. Minting here could collide, so fail
		// closed.
		return nil, util.ErrNonMonotonicBatch
	}

	subTopics := make([]model.SubTopic, 0, len(proposals))
	for i, p := range proposals {
		id, err := MintSubTopicID(lessonID, batchTS, i, p.Title)
		if err != nil {
			return nil, err
		}
		level := p.Level
		if level == "" {
			level = learner.Level
		}
		subTopics = append(subTopics, model.SubTopic{
			ID:       id,
			LessonID: lessonID,
			Title:    p.Title,
			Category: p.Category,
			Level:    level,
			BatchTS:  batchTS,
			Position: i,
		})
	}

	if err := s.LessonRepo.ReplaceSubTopics(lessonID, batchTS, subTopics); err != nil {
		return nil, err
	}

	logger.Log.Info("lesson plan generated",
		zap.String("lessonId", lessonID),
		zap.Int64("batchTs", batchTS),
		zap.Int("subTopics", len(subTopics)))

	return s.LessonRepo.FindByID(lessonID)
}
