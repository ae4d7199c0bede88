package repository

import (
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"

	"gorm.io/gorm"
)

type MediaRepository struct {
	DB *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

func (r *MediaRepository) Create(asset *model.MediaAsset) error {
	return r.DB.Create(asset).Error
}

func (r *MediaRepository) ListBySubTopic(subTopicID string) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	err := r.DB.Where("sub_topic_id = ?", subTopicID).Order("section_index asc").Find(&assets).Error
	return assets, err
}

func (r *MediaRepository) Delete(id string) error {
	return r.DB.Delete(&model.MediaAsset{}, "id = ?", id).Error
}
