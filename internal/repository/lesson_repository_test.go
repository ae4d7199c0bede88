package repository

import (
	"testing"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subTopic(lessonID, id string, pos int) model.SubTopic {
	return model.SubTopic{
		ID:       id,
		LessonID: lessonID,
		Title:    "Topic",
		Level:    model.LevelA1,
		BatchTS:  1700000000000,
		Position: pos,
	}
}

func TestReplaceSubTopicsSwapsSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonRepository(db)
	lesson := createLesson(t, db)

	require.NoError(t, repo.ReplaceSubTopics(lesson.ID, 1700000000000, []model.SubTopic{
		subTopic(lesson.ID, lesson.ID+"_1700000000000_0_a", 0),
		subTopic(lesson.ID, lesson.ID+"_1700000000000_1_b", 1),
	}))

	require.NoError(t, repo.ReplaceSubTopics(lesson.ID, 1700000000100, []model.SubTopic{
		subTopic(lesson.ID, lesson.ID+"_1700000000100_0_c", 0),
	}))

	got, err := repo.FindByID(lesson.ID)
	require.NoError(t, err)
	require.Len(t, got.SubTopics, 1)
	assert.Equal(t, lesson.ID+"_1700000000100_0_c", got.SubTopics[0].ID)
	assert.EqualValues(t, 1700000000100, got.LastBatchTS)
}

// A minted id colliding with one stored under another lesson aborts the
// whole replacement; the previous set survives intact.
func TestReplaceSubTopicsCollisionAtomic(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonRepository(db)
	first := createLesson(t, db)
	second := createLesson(t, db)

	stolenID := "shared_1700000000000_0_topic"
	require.NoError(t, repo.ReplaceSubTopics(first.ID, 1700000000000, []model.SubTopic{
		subTopic(first.ID, stolenID, 0),
	}))

	require.NoError(t, repo.ReplaceSubTopics(second.ID, 1700000000000, []model.SubTopic{
		subTopic(second.ID, second.ID+"_1700000000000_0_old", 0),
	}))

	err := repo.ReplaceSubTopics(second.ID, 1700000000200, []model.SubTopic{
		subTopic(second.ID, second.ID+"_1700000000200_0_new", 0),
		subTopic(second.ID, stolenID, 1),
	})
	assert.ErrorIs(t, err, util.ErrIdentityCollision)

	// Rolled back: the old set and timestamp are still authoritative.
	got, err := repo.FindByID(second.ID)
	require.NoError(t, err)
	require.Len(t, got.SubTopics, 1)
	assert.Equal(t, second.ID+"_1700000000000_0_old", got.SubTopics[0].ID)
	assert.EqualValues(t, 1700000000000, got.LastBatchTS)
}

func TestFindSubTopicsBySuffix(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonRepository(db)
	lesson := createLesson(t, db)

	require.NoError(t, repo.ReplaceSubTopics(lesson.ID, 1700000000000, []model.SubTopic{
		subTopic(lesson.ID, lesson.ID+"_1700000000000_0_greetings", 0),
		subTopic(lesson.ID, lesson.ID+"_1700000000000_1_numbers", 1),
	}))

	matches, err := repo.FindSubTopicsBySuffix("_greetings")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, lesson.ID+"_1700000000000_0_greetings", matches[0].ID)

	none, err := repo.FindSubTopicsBySuffix("_colours")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonRepository(db)

	_, err := repo.FindByID("missing")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = repo.FindSubTopicByID("missing")
	assert.ErrorIs(t, err, util.ErrSubTopicNotFound)
}
