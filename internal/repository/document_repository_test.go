package repository

import (
	"testing"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(subTopicID string, fallback int) *model.InteractiveDocument {
	return &model.InteractiveDocument{
		SubTopicID: subTopicID,
		LessonID:   "lesson-1",
		BatchTS:    1700000000000,
		Sections: []model.Section{{
			ContentType: model.TypeText,
			Title:       "Intro",
			Payload:     []byte(`{"body":"hello"}`),
		}},
		FallbackCount: fallback,
		GeneratedAt:   time.Now(),
	}
}

func TestSaveAssignsVersionAndBumpsInPlace(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)

	doc := testDoc("st-1", 0)
	require.NoError(t, repo.Save(doc))
	assert.Equal(t, 1, doc.Version)

	replacement := testDoc("st-1", 2)
	require.NoError(t, repo.Save(replacement))
	assert.Equal(t, 2, replacement.Version)

	stored, err := repo.FindBySubTopicID("st-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, 2, stored.FallbackCount)

	var count int64
	db.Model(&model.InteractiveDocument{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFindBySubTopicIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.FindBySubTopicID("missing")
	assert.ErrorIs(t, err, util.ErrDocumentNotFound)
}

func TestSectionsSurviveRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)

	require.NoError(t, repo.Save(testDoc("st-1", 0)))

	stored, err := repo.FindBySubTopicID("st-1")
	require.NoError(t, err)
	require.Len(t, stored.Sections, 1)
	assert.Equal(t, model.TypeText, stored.Sections[0].ContentType)
	assert.JSONEq(t, `{"body":"hello"}`, string(stored.Sections[0].Payload))
}

func TestGetFallbackStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)

	require.NoError(t, repo.Save(testDoc("st-1", 0)))
	require.NoError(t, repo.Save(testDoc("st-2", 3)))
	require.NoError(t, repo.Save(testDoc("st-3", 2)))

	stats, err := repo.GetFallbackStats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Documents)
	assert.EqualValues(t, 2, stats.WithFallback)
	assert.EqualValues(t, 5, stats.FallbackEntries)
}
