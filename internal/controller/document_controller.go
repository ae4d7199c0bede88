package controller

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	DocumentService   *service.DocumentService
	LessonService     *service.LessonService
	CompletionService *service.CompletionService
}

func NewDocumentController(documentService *service.DocumentService, lessonService *service.LessonService, completionService *service.CompletionService) *DocumentController {
	return &DocumentController{
		DocumentService:   documentService,
		LessonService:     lessonService,
		CompletionService: completionService,
	}
}

// Get godoc
// @Summary Fetch a sub-topic's interactive document
// @Description Returns the stored document, generating it on first access. When the generator is unreachable a degraded Version-0 placeholder is returned instead of an error.
// @Tags documents
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Param   subTopicId path string true "sub-topic id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id}/subtopics/{subTopicId}/document [get]
func (c *DocumentController) Get(ctx *gin.Context) {
	subTopicID := ctx.Param("subTopicId")

	doc, err := c.DocumentService.GetOrAssemble(ctx.Request.Context(), subTopicID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubTopicNotFound), errors.Is(err, util.ErrDocumentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrMalformedSection):
			util.Error(ctx, 502, "generator returned an invalid document")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	complete, err := c.CompletionService.IsComplete(claims.UserID, subTopicID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"document": doc,
		"complete": complete,
	})
}

// Regenerate godoc
// @Summary Regenerate a sub-topic's document in place
// @Description Rebuilds the document under the same sub-topic id and batch timestamp with a bumped version. Completion state is untouched.
// @Tags documents
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Param   subTopicId path string true "sub-topic id"
// @Success 200 {object} util.Response{data=model.InteractiveDocument}
// @Failure 404 {object} util.Response
// @Failure 503 {object} util.Response "generator unreachable"
// @Router /api/lessons/{id}/subtopics/{subTopicId}/regenerate [post]
func (c *DocumentController) Regenerate(ctx *gin.Context) {
	subTopic, err := c.LessonService.LessonRepo.FindSubTopicByID(ctx.Param("subTopicId"))
	if err != nil {
		if errors.Is(err, util.ErrSubTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	doc, err := c.DocumentService.Regenerate(ctx.Request.Context(), subTopic)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrGenerationTimeout), errors.Is(err, util.ErrGenerationUnavailable):
			util.Error(ctx, 503, "lesson generator is unavailable, try again later")
		case errors.Is(err, util.ErrMalformedSection):
			util.Error(ctx, 502, "generator returned an invalid document")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, doc)
}
