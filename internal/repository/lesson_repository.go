package repository

import (
	"errors"
	"strings"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("SubTopics", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&lesson, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) FindByLearner(learnerID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Preload("SubTopics", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("learner_id = ?", learnerID).Order("scheduled_at desc").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) UpdateStatus(id string, status model.LessonStatus) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).Update("status", status).Error
}

func (r *LessonRepository) FindSubTopicByID(id string) (*model.SubTopic, error) {
	var subTopic model.SubTopic
	err := r.DB.First(&subTopic, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubTopicNotFound
		}
		return nil, err
	}
	return &subTopic, nil
}

func (r *LessonRepository) FindSubTopicsBySuffix(suffix string) ([]model.SubTopic, error) {
	var subTopics []model.SubTopic
	err := r.DB.Where("id LIKE ?", "%"+suffix).Find(&subTopics).Error
	return subTopics, err
}

// ReplaceSubTopics swaps the lesson's sub-topic set for a freshly minted
// batch and advances LastBatchTS, all in one transaction. If anything fails
// the previous set stays authoritative. A duplicate primary key here means a
// minted id already exists, which only a clock or single-flight violation
// can produce, so it surfaces as ErrIdentityCollision.
func (r *LessonRepository) ReplaceSubTopics(lessonID string, batchTS int64, subTopics []model.SubTopic) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lessonID).Delete(&model.SubTopic{}).Error; err != nil {
			return err
		}
		for i := range subTopics {
			if err := tx.Create(&subTopics[i]).Error; err != nil {
				if isDuplicateKey(err) {
					return util.ErrIdentityCollision
				}
				return err
			}
		}
		return tx.Model(&model.Lesson{}).Where("id = ?", lessonID).Update("last_batch_ts", batchTS).Error
	})
}

// isDuplicateKey matches both the mysql driver error and sqlite's message
// used by the test suite.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
