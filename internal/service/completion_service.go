package service

import (
	"errors"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/monitoring"

	"go.uber.org/zap"
)

// CompletionService records and reconciles learner completions. Completion
// is one-way per sub-topic id: a regeneration retires ids and starts the new
// ones at not-started, it never "uncompletes" anything and it never carries
// a completion over to similar-looking new content.
type CompletionService struct {
	CompletionRepo *repository.CompletionRepository
	LessonRepo     *repository.LessonRepository
}

func NewCompletionService(completionRepo *repository.CompletionRepository, lessonRepo *repository.LessonRepository) *CompletionService {
	return &CompletionService{
		CompletionRepo: completionRepo,
		LessonRepo:     lessonRepo,
	}
}

type RecordCompletionReq struct {
	Score *int   `json:"score"`
	Notes string `json:"notes"`
}

// RecordCompletion appends a completion for (learner, sub-topic). The
// sub-topic's title, category and level are denormalized onto the record so
// it stays displayable after the sub-topic is retired by a regeneration.
// A duplicate call (e.g. a network retry) is an idempotent success.
func (s *CompletionService) RecordCompletion(learnerID uint, subTopicID string, req RecordCompletionReq) (*model.CompletionRecord, error) {
	subTopic, err := s.LessonRepo.FindSubTopicByID(subTopicID)
	if err != nil {
		return nil, err
	}

	record := &model.CompletionRecord{
		LearnerID:   learnerID,
		SubTopicID:  subTopicID,
		LessonID:    subTopic.LessonID,
		Title:       subTopic.Title,
		Category:    subTopic.Category,
		Level:       subTopic.Level,
		Score:       req.Score,
		Notes:       req.Notes,
		CompletedAt: time.Now(),
	}

	err = s.CompletionRepo.Create(record)
	if errors.Is(err, repository.ErrAlreadyRecorded) {
		existing, ferr := s.CompletionRepo.FindByLearnerAndSubTopic(learnerID, subTopicID)
		if ferr != nil {
			return nil, ferr
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Info("completion recorded",
		zap.Uint("learnerId", learnerID),
		zap.String("subTopicId", subTopicID))

	return record, nil
}

// IsComplete is a strict existence check against the exact current id.
// Deliberately no fuzzy matching: a completion recorded against a retired id
// must never light up similar-titled regenerated content.
func (s *CompletionService) IsComplete(learnerID uint, subTopicID string) (bool, error) {
	return s.CompletionRepo.Exists(learnerID, subTopicID)
}

// LessonProgress is the per-lesson completion view: a status per current
// sub-topic plus the learner's orphaned records for that lesson.
type LessonProgress struct {
	LessonID  string                   `json:"lessonId"`
	Completed map[string]bool          `json:"completed"` // keyed by current sub-topic id
	Orphaned  []model.CompletionRecord `json:"orphaned"`
}

// Progress reconciles the learner's records against the lesson's current
// sub-topic set. Records referencing retired ids are reported as orphaned,
// never re-attributed.
func (s *CompletionService) Progress(learnerID uint, lessonID string) (*LessonProgress, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, err
	}

	records, err := s.CompletionRepo.ListByLearnerAndLesson(learnerID, lessonID)
	if err != nil {
		return nil, err
	}

	current := make(map[string]bool, len(lesson.SubTopics))
	completed := make(map[string]bool, len(lesson.SubTopics))
	for _, st := range lesson.SubTopics {
		current[st.ID] = true
		completed[st.ID] = false
	}

	var orphaned []model.CompletionRecord
	for _, rec := range records {
		if current[rec.SubTopicID] {
			completed[rec.SubTopicID] = true
		} else {
			orphaned = append(orphaned, rec)
		}
	}
	if len(orphaned) > 0 {
		monitoring.OrphanedCompletions.Add(float64(len(orphaned)))
	}

	return &LessonProgress{
		LessonID:  lessonID,
		Completed: completed,
		Orphaned:  orphaned,
	}, nil
}

// ListHistory returns the learner's full append-only completion ledger,
// orphans included.
func (s *CompletionService) ListHistory(learnerID uint) ([]model.CompletionRecord, error) {
	return s.CompletionRepo.ListByLearner(learnerID)
}
