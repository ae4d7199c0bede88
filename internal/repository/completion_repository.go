package repository

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// Create appends a completion record. A duplicate (learner, sub-topic) pair
// reports ErrAlreadyRecorded so the service can treat the call as an
// idempotent no-op instead of a failure.
func (r *CompletionRepository) Create(record *model.CompletionRecord) error {
	err := r.DB.Create(record).Error
	if err != nil && isDuplicateKey(err) {
		return ErrAlreadyRecorded
	}
	return err
}

var ErrAlreadyRecorded = errors.New("completion already recorded")

func (r *CompletionRepository) FindByLearnerAndSubTopic(learnerID uint, subTopicID string) (*model.CompletionRecord, error) {
	var record model.CompletionRecord
	err := r.DB.Where("learner_id = ? AND sub_topic_id = ?", learnerID, subTopicID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Exists is the reconciliation primitive: a strict existence check on the
// exact current id. No fuzzy or title-based matching, ever.
func (r *CompletionRepository) Exists(learnerID uint, subTopicID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CompletionRecord{}).
		Where("learner_id = ? AND sub_topic_id = ?", learnerID, subTopicID).
		Count(&count).Error
	return count > 0, err
}

func (r *CompletionRepository) ListByLearner(learnerID uint) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	err := r.DB.Where("learner_id = ?", learnerID).Order("completed_at desc").Find(&records).Error
	return records, err
}

func (r *CompletionRepository) ListByLearnerAndLesson(learnerID uint, lessonID string) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	err := r.DB.Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).Find(&records).Error
	return records, err
}

// RekeyLegacy points a migrated record at its new sub-topic id while
// retaining the old id for audit. Only the legacy migration batch calls
// this; normal operation never updates a completion record.
func (r *CompletionRepository) RekeyLegacy(recordID uint, newSubTopicID, lessonID string) error {
	return r.DB.Model(&model.CompletionRecord{}).Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"legacy_id":    gorm.Expr("sub_topic_id"),
			"sub_topic_id": newSubTopicID,
			"lesson_id":    lessonID,
		}).Error
}
