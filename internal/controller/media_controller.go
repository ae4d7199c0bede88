package controller

import (
	"errors"
	"strconv"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// UploadAudio godoc
// @Summary Upload pronunciation audio for a sub-topic section
// @Tags media
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   subTopicId path string true "sub-topic id"
// @Param   sectionIndex formData int true "section index within the document"
// @Param   file formData file true "audio file"
// @Success 201 {object} util.Response{data=model.MediaAsset}
// @Failure 400 {object} util.Response "unsupported audio format"
// @Failure 404 {object} util.Response
// @Router /api/subtopics/{subTopicId}/audio [post]
func (c *MediaController) UploadAudio(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sectionIndex, err := strconv.Atoi(ctx.PostForm("sectionIndex"))
	if err != nil {
		util.BadRequest(ctx, "invalid section index")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	asset, err := c.MediaService.UploadAudio(ctx.Request.Context(), claims.UserID, ctx.Param("subTopicId"), sectionIndex, file)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidAudioExt):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrSubTopicNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, asset)
}

// List godoc
// @Summary List a sub-topic's audio assets
// @Tags media
// @Produce  json
// @Security BearerAuth
// @Param   subTopicId path string true "sub-topic id"
// @Success 200 {object} util.Response{data=[]model.MediaAsset}
// @Router /api/subtopics/{subTopicId}/audio [get]
func (c *MediaController) List(ctx *gin.Context) {
	assets, err := c.MediaService.ListBySubTopic(ctx.Param("subTopicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assets)
}
