package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"

	"go.uber.org/zap"
)

// MediaService handles tutor-uploaded audio for listen_repeat sections.
type MediaService struct {
	MediaRepo  *repository.MediaRepository
	LessonRepo *repository.LessonRepository
	Storage    *StorageService
	TempDir    string
}

func NewMediaService(mediaRepo *repository.MediaRepository, lessonRepo *repository.LessonRepository, storage *StorageService, tempDir string) *MediaService {
	return &MediaService{
		MediaRepo:  mediaRepo,
		LessonRepo: lessonRepo,
		Storage:    storage,
		TempDir:    tempDir,
	}
}

// UploadAudio stores one clip for a sub-topic section and records its probed
// duration. The clip is staged locally first so ffprobe can read it.
func (s *MediaService) UploadAudio(ctx context.Context, uploaderID uint, subTopicID string, sectionIndex int, file *multipart.FileHeader) (*model.MediaAsset, error) {
	if _, err := s.LessonRepo.FindSubTopicByID(subTopicID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	valid := false
	for _, e := range util.AllowedAudioExtensions {
		if ext == e {
			valid = true
			break
		}
	}
	if !valid {
		return nil, util.ErrInvalidAudioExt
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return nil, err
	}
	tempPath := filepath.Join(s.TempDir, fmt.Sprintf("audio_%d%s", time.Now().UnixNano(), ext))
	defer os.Remove(tempPath)

	dst, err := os.Create(tempPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, err
	}
	dst.Close()

	info, err := util.GetAudioInfo(tempPath)
	if err != nil {
		logger.Log.Warn("audio probe failed, storing without duration", zap.Error(err))
		info = &util.AudioInfo{Format: strings.TrimPrefix(ext, "."), Size: file.Size}
	}

	filename := "audio/" + time.Now().Format("20060102150405") + "_" + util.GenerateRandomString(6) + ext
	staged, err := os.Open(tempPath)
	if err != nil {
		return nil, err
	}
	defer staged.Close()

	url, err := s.Storage.Upload(ctx, filename, staged, file.Size, "audio/"+strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, err
	}

	asset := &model.MediaAsset{
		SubTopicID:   subTopicID,
		SectionIndex: sectionIndex,
		URL:          url,
		Duration:     info.Duration,
		Format:       info.Format,
		Size:         info.Size,
		UploaderID:   uploaderID,
	}
	if err := s.MediaRepo.Create(asset); err != nil {
		return nil, err
	}

	return asset, nil
}

func (s *MediaService) ListBySubTopic(subTopicID string) ([]model.MediaAsset, error) {
	return s.MediaRepo.ListBySubTopic(subTopicID)
}
