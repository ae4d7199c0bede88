package repository

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) FindBySubTopicID(subTopicID string) (*model.InteractiveDocument, error) {
	var doc model.InteractiveDocument
	err := r.DB.First(&doc, "sub_topic_id = ?", subTopicID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Save persists a document keyed by its sub-topic id. A second save for the
// same id replaces the prior sections in place and bumps Version; it never
// creates a new key.
func (r *DocumentRepository) Save(doc *model.InteractiveDocument) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.InteractiveDocument
		err := tx.First(&existing, "sub_topic_id = ?", doc.SubTopicID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			doc.Version = 1
			return tx.Create(doc).Error
		}
		if err != nil {
			return err
		}
		doc.Version = existing.Version + 1
		doc.CreatedAt = existing.CreatedAt
		return tx.Save(doc).Error
	})
}

func (r *DocumentRepository) DeleteBySubTopicID(subTopicID string) error {
	return r.DB.Where("sub_topic_id = ?", subTopicID).Delete(&model.InteractiveDocument{}).Error
}

// FallbackStats summarizes how much synthesized filler ended up in stored
// documents. High numbers mean the generator is drifting from the schema.
type FallbackStats struct {
	Documents       int64 `json:"documents"`
	WithFallback    int64 `json:"withFallback"`
	FallbackEntries int64 `json:"fallbackEntries"`
}

func (r *DocumentRepository) GetFallbackStats() (*FallbackStats, error) {
	var stats FallbackStats

	if err := r.DB.Model(&model.InteractiveDocument{}).Count(&stats.Documents).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.InteractiveDocument{}).
		Where("fallback_count > 0").
		Count(&stats.WithFallback).Error; err != nil {
		return nil, err
	}

	var total struct{ Total int64 }
	if err := r.DB.Model(&model.InteractiveDocument{}).
		Select("COALESCE(SUM(fallback_count), 0) AS total").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	stats.FallbackEntries = total.Total

	return &stats, nil
}
