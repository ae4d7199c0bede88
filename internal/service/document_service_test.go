package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// sectionsContent is a generator response with one underfilled vocabulary
// section (three entries, a1 floor is five) and one dialogue.
const sectionsContent = `{"sections":[
	{"content_type":"vocabulary_matching","title":"Key Words","ai_placeholder":"words","payload":{"words":[
		{"word":"hola","translation":"hello","example_sentence":"¡Hola!"},
		{"word":"adiós","translation":"goodbye","example_sentence":"Adiós, hasta mañana."},
		{"word":"gracias","translation":"thank you","example_sentence":"Muchas gracias."}
	]}},
	{"content_type":"full_dialogue","title":"At the Café","ai_placeholder":"turns","payload":{"turns":[
		{"speaker":"Waiter","text":"¿Qué desea?"},
		{"speaker":"Ana","text":"Un café, por favor."}
	]}}
]}`

type documentFixture struct {
	svc      *DocumentService
	docRepo  *repository.DocumentRepository
	subTopic *model.SubTopic
	db       *gorm.DB
}

func newDocumentFixture(t *testing.T, aiURL string) *documentFixture {
	t.Helper()
	db := newTestDB(t)
	lessonRepo := repository.NewLessonRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)

	learner := testLearner()
	learner.Level = model.LevelA1
	require.NoError(t, userRepo.Create(learner))

	lesson := &model.Lesson{LearnerID: learner.ID, ScheduledAt: time.Now()}
	require.NoError(t, lessonRepo.Create(lesson))

	batchTS := int64(1700000000000)
	subTopic := model.SubTopic{
		ID:       lesson.ID + "_1700000000000_0_greetings",
		LessonID: lesson.ID,
		Title:    "Greetings",
		Category: "conversation",
		Level:    model.LevelA1,
		BatchTS:  batchTS,
	}
	require.NoError(t, lessonRepo.ReplaceSubTopics(lesson.ID, batchTS, []model.SubTopic{subTopic}))

	var ai *AIService
	if aiURL != "" {
		ai = testAIService(aiURL)
	}

	svc := NewDocumentService(docRepo, lessonRepo, userRepo, ai,
		NewSectionValidator(), NewFallbackService(), NewRoleCache(NewMemoryRoleStore()))

	return &documentFixture{svc: svc, docRepo: docRepo, subTopic: &subTopic, db: db}
}

func TestGetOrAssembleCreatesDocument(t *testing.T) {
	srv := chatServer(t, sectionsContent)
	fx := newDocumentFixture(t, srv.URL)

	doc, err := fx.svc.GetOrAssemble(context.Background(), fx.subTopic.ID)
	require.NoError(t, err)

	assert.Equal(t, fx.subTopic.ID, doc.SubTopicID)
	assert.Equal(t, fx.subTopic.BatchTS, doc.BatchTS)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Sections, 2)

	// The underfilled vocabulary section was padded to the a1 floor.
	var vocab model.VocabularyPayload
	require.NoError(t, json.Unmarshal(doc.Sections[0].Payload, &vocab))
	assert.Len(t, vocab.Words, 5)
	assert.Equal(t, 2, doc.FallbackCount)

	// Dialogue speakers were annotated through the role cache.
	var dialogue model.DialoguePayload
	require.NoError(t, json.Unmarshal(doc.Sections[1].Payload, &dialogue))
	assert.Equal(t, RoleTutor, dialogue.Turns[0].Role)
	assert.Equal(t, RoleLearner, dialogue.Turns[1].Role)
}

func TestGetOrAssembleReturnsStoredDocument(t *testing.T) {
	srv := chatServer(t, sectionsContent)
	fx := newDocumentFixture(t, srv.URL)
	ctx := context.Background()

	first, err := fx.svc.GetOrAssemble(ctx, fx.subTopic.ID)
	require.NoError(t, err)

	// Second fetch serves storage; no version bump.
	second, err := fx.svc.GetOrAssemble(ctx, fx.subTopic.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.GeneratedAt.Unix(), second.GeneratedAt.Unix())
}

func TestRegenerateBumpsVersionInPlace(t *testing.T) {
	srv := chatServer(t, sectionsContent)
	fx := newDocumentFixture(t, srv.URL)
	ctx := context.Background()

	first, err := fx.svc.GetOrAssemble(ctx, fx.subTopic.ID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)

	second, err := fx.svc.Regenerate(ctx, fx.subTopic)
	require.NoError(t, err)

	// Same key, same batch timestamp, bumped version.
	assert.Equal(t, first.SubTopicID, second.SubTopicID)
	assert.Equal(t, first.BatchTS, second.BatchTS)
	assert.Equal(t, 2, second.Version)

	var count int64
	fx.db.Model(&model.InteractiveDocument{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

// Generator down: the learner gets a degraded placeholder, not an error, and
// nothing is persisted under the sub-topic id.
func TestGetOrAssembleDegradedWhenGeneratorDown(t *testing.T) {
	fx := newDocumentFixture(t, "http://127.0.0.1:1")

	doc, err := fx.svc.GetOrAssemble(context.Background(), fx.subTopic.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Version)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, model.TypeInfoCard, doc.Sections[0].ContentType)

	_, err = fx.docRepo.FindBySubTopicID(fx.subTopic.ID)
	assert.ErrorIs(t, err, util.ErrDocumentNotFound)
}

func TestGetOrAssembleUnknownSubTopic(t *testing.T) {
	srv := chatServer(t, sectionsContent)
	fx := newDocumentFixture(t, srv.URL)

	_, err := fx.svc.GetOrAssemble(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, util.ErrSubTopicNotFound)
}

// A structurally broken section without a generator to re-ask surfaces as
// ErrMalformedSection; it is never silently dropped or auto-fixed.
func TestAssembleMalformedSectionNoRepairPath(t *testing.T) {
	fx := newDocumentFixture(t, "")

	learner := testLearner()
	raw := []model.Section{{
		ContentType: model.TypeCompleteSentence,
		Title:       "Fill the gap",
		Payload:     mustPayload(t, model.CompleteSentencePayload{Items: []model.CompleteSentenceItem{{SentenceWithGap: "no gap here", Answer: "x"}}}),
	}}

	_, err := fx.svc.Assemble(context.Background(), fx.subTopic, learner, raw)
	assert.ErrorIs(t, err, util.ErrMalformedSection)
}

func TestAssembleUnknownContentType(t *testing.T) {
	fx := newDocumentFixture(t, "")

	raw := []model.Section{{ContentType: "hologram", Title: "Future", Payload: []byte(`{}`)}}
	_, err := fx.svc.Assemble(context.Background(), fx.subTopic, testLearner(), raw)
	assert.ErrorIs(t, err, util.ErrMalformedSection)
}

func TestWarmBatchAssemblesMissingDocuments(t *testing.T) {
	srv := chatServer(t, sectionsContent)
	fx := newDocumentFixture(t, srv.URL)

	warmed, err := fx.svc.WarmBatch(context.Background(), fx.subTopic.LessonID)
	require.NoError(t, err)
	assert.Equal(t, 1, warmed)

	doc, err := fx.docRepo.FindBySubTopicID(fx.subTopic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
}
