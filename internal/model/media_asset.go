package model

// MediaAsset is an uploaded audio clip attached to a listen_repeat section.
// swagger:model MediaAsset
type MediaAsset struct {
	UUIDBase
	SubTopicID   string  `gorm:"index;type:varchar(191);not null" json:"subTopicId"`
	SectionIndex int     `gorm:"not null" json:"sectionIndex"`
	URL          string  `gorm:"size:255;not null" json:"url"`
	Duration     float64 `json:"duration"` // seconds, probed with ffmpeg
	Format       string  `gorm:"size:20" json:"format"`
	Size         int64   `json:"size"`
	UploaderID   uint    `gorm:"index" json:"uploaderId"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
