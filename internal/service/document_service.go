package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/monitoring"

	"go.uber.org/zap"
)

// DocumentService assembles interactive documents: every raw section runs
// through the validator, underfilled countable sections are padded by the
// fallback synthesizer, malformed sections get one per-section regeneration
// before the assembly fails.
type DocumentService struct {
	DocRepo    *repository.DocumentRepository
	LessonRepo *repository.LessonRepository
	UserRepo   *repository.UserRepository
	AI         *AIService
	Validator  *SectionValidator
	Fallback   *FallbackService
	Roles      *RoleCache
}

func NewDocumentService(docRepo *repository.DocumentRepository, lessonRepo *repository.LessonRepository, userRepo *repository.UserRepository, ai *AIService, validator *SectionValidator, fallback *FallbackService, roles *RoleCache) *DocumentService {
	return &DocumentService{
		DocRepo:    docRepo,
		LessonRepo: lessonRepo,
		UserRepo:   userRepo,
		AI:         ai,
		Validator:  validator,
		Fallback:   fallback,
		Roles:      roles,
	}
}

// GetOrAssemble returns the stored document for a sub-topic, generating it
// lazily on first access. When the collaborator is down or slow it returns
// a clearly degraded, unpersisted placeholder (Version 0) instead of the
// raw error; the learner never sees a parse failure.
func (s *DocumentService) GetOrAssemble(ctx context.Context, subTopicID string) (*model.InteractiveDocument, error) {
	doc, err := s.DocRepo.FindBySubTopicID(subTopicID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, util.ErrDocumentNotFound) {
		return nil, err
	}

	subTopic, err := s.LessonRepo.FindSubTopicByID(subTopicID)
	if err != nil {
		return nil, err
	}

	doc, err = s.Regenerate(ctx, subTopic)
	if errors.Is(err, util.ErrGenerationTimeout) || errors.Is(err, util.ErrGenerationUnavailable) {
		logger.Log.Warn("serving degraded document, generator unreachable",
			zap.String("subTopicId", subTopicID), zap.Error(err))
		return s.degradedDocument(subTopic), nil
	}
	return doc, err
}

// Regenerate produces the document for a sub-topic in place: same id, same
// batch timestamp, bumped version.
func (s *DocumentService) Regenerate(ctx context.Context, subTopic *model.SubTopic) (*model.InteractiveDocument, error) {
	lesson, err := s.LessonRepo.FindByID(subTopic.LessonID)
	if err != nil {
		return nil, err
	}
	learner, err := s.UserRepo.FindByID(lesson.LearnerID)
	if err != nil {
		return nil, err
	}

	rawSections, err := s.AI.GenerateSections(ctx, subTopic, learner)
	if err != nil {
		return nil, err
	}

	return s.Assemble(ctx, subTopic, learner, rawSections)
}

// Assemble validates and repairs raw sections, then persists the document
// keyed by the sub-topic id. The document is stamped with the sub-topic's
// batch timestamp, never a fresh one: it belongs to that sub-topic for its
// entire lifetime. A repeat assembly replaces sections in place.
func (s *DocumentService) Assemble(ctx context.Context, subTopic *model.SubTopic, learner *model.User, rawSections []model.Section) (*model.InteractiveDocument, error) {
	sections := make([]model.Section, 0, len(rawSections))
	fallbackCount := 0

	for i, raw := range rawSections {
		section, added, err := s.repairSection(ctx, subTopic, learner, raw)
		if err != nil {
			return nil, fmt.Errorf("section %d (%s): %w", i, raw.ContentType, err)
		}
		fallbackCount += added
		if section.ContentType == model.TypeFullDialogue {
			section = s.annotateDialogue(ctx, section)
		}
		sections = append(sections, section)
	}

	doc := &model.InteractiveDocument{
		SubTopicID:    subTopic.ID,
		LessonID:      subTopic.LessonID,
		BatchTS:       subTopic.BatchTS,
		Sections:      sections,
		FallbackCount: fallbackCount,
		GeneratedAt:   timeNow(),
	}

	if err := s.DocRepo.Save(doc); err != nil {
		return nil, err
	}

	if fallbackCount > 0 {
		monitoring.FallbackEntries.Add(float64(fallbackCount))
	}

	return doc, nil
}

// repairSection runs one section through validate → fill, with a single
// per-section regeneration attempt when the payload is malformed.
func (s *DocumentService) repairSection(ctx context.Context, subTopic *model.SubTopic, learner *model.User, section model.Section) (model.Section, int, error) {
	repaired, added, err := s.validateAndFill(section, subTopic.Level)
	if err == nil {
		return repaired, added, nil
	}

	monitoring.MalformedSections.Inc()
	if s.AI == nil {
		return model.Section{}, 0, err
	}

	logger.Log.Warn("malformed section, requesting regeneration",
		zap.String("subTopicId", subTopic.ID),
		zap.String("contentType", string(section.ContentType)),
		zap.Error(err))

	regenerated, rerr := s.AI.RegenerateSection(ctx, subTopic, learner, section)
	if rerr != nil {
		return model.Section{}, 0, err
	}

	repaired, added, err = s.validateAndFill(regenerated, subTopic.Level)
	if err != nil {
		monitoring.MalformedSections.Inc()
		return model.Section{}, 0, err
	}
	return repaired, added, nil
}

func (s *DocumentService) validateAndFill(section model.Section, level model.LanguageLevel) (model.Section, int, error) {
	report := s.Validator.Validate(section, level)
	switch report.Status {
	case StatusOK:
		return section, 0, nil
	case StatusUnderfilled:
		return s.Fallback.Fill(section, report.MissingCount)
	default:
		return model.Section{}, 0, fmt.Errorf("%w: %s", util.ErrMalformedSection, report.Reason)
	}
}

// annotateDialogue resolves each speaker to a role through the injectable
// role cache. Runs after validation, so the turns are known to be complete.
func (s *DocumentService) annotateDialogue(ctx context.Context, section model.Section) model.Section {
	if s.Roles == nil {
		return section
	}
	var payload model.DialoguePayload
	if err := json.Unmarshal(section.Payload, &payload); err != nil {
		return section
	}
	for i := range payload.Turns {
		payload.Turns[i].Role = s.Roles.Resolve(ctx, payload.Turns[i].Speaker)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return section
	}
	section.Payload = raw
	return section
}

// WarmBatch assembles every document of a lesson's current batch in
// parallel; assemblies are independent per sub-topic. Used by the operator
// warm-up endpoint, never on the learner's request path.
func (s *DocumentService) WarmBatch(ctx context.Context, lessonID string) (int, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	warmed := 0

	for i := range lesson.SubTopics {
		subTopic := lesson.SubTopics[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.GetOrAssemble(ctx, subTopic.ID); err != nil {
				logger.Log.Error("warm-up assembly failed",
					zap.String("subTopicId", subTopic.ID), zap.Error(err))
				return
			}
			mu.Lock()
			warmed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	return warmed, nil
}

// degradedDocument is the learner-facing stand-in while the generator is
// unreachable. Version 0 marks it as never persisted.
func (s *DocumentService) degradedDocument(subTopic *model.SubTopic) *model.InteractiveDocument {
	payload, _ := json.Marshal(model.TextPayload{
		Body: "This activity could not be generated right now. Please try again in a few minutes.",
	})
	return &model.InteractiveDocument{
		SubTopicID: subTopic.ID,
		LessonID:   subTopic.LessonID,
		BatchTS:    subTopic.BatchTS,
		Version:    0,
		Sections: []model.Section{{
			ContentType: model.TypeInfoCard,
			Title:       "Temporarily unavailable",
			Payload:     payload,
		}},
		GeneratedAt: timeNow(),
	}
}
