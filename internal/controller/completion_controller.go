package controller

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
)

type CompletionController struct {
	CompletionService *service.CompletionService
}

func NewCompletionController(completionService *service.CompletionService) *CompletionController {
	return &CompletionController{CompletionService: completionService}
}

// Complete godoc
// @Summary Mark a sub-topic complete
// @Description Records the one-way not-started to completed transition. Recording the same sub-topic again returns the existing record unchanged.
// @Tags completions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   subTopicId path string true "sub-topic id"
// @Param   body body service.RecordCompletionReq false "optional score and notes"
// @Success 201 {object} util.Response{data=model.CompletionRecord}
// @Failure 404 {object} util.Response "sub-topic id does not exist"
// @Router /api/subtopics/{subTopicId}/complete [post]
func (c *CompletionController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RecordCompletionReq
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	record, err := c.CompletionService.RecordCompletion(claims.UserID, ctx.Param("subTopicId"), req)
	if err != nil {
		if errors.Is(err, util.ErrSubTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, record)
}

// Status godoc
// @Summary Check whether a sub-topic is complete
// @Description Strict existence check against the exact sub-topic id. A record keyed to a retired id never matches.
// @Tags completions
// @Produce  json
// @Security BearerAuth
// @Param   subTopicId path string true "sub-topic id"
// @Success 200 {object} util.Response{data=object}
// @Router /api/subtopics/{subTopicId}/status [get]
func (c *CompletionController) Status(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	complete, err := c.CompletionService.IsComplete(claims.UserID, ctx.Param("subTopicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"complete": complete})
}

// Progress godoc
// @Summary Per-lesson completion progress
// @Description Reconciles the learner's records against the lesson's current sub-topic set. Records keyed to retired ids are listed as orphaned, never re-attributed.
// @Tags completions
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Success 200 {object} util.Response{data=service.LessonProgress}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id}/progress [get]
func (c *CompletionController) Progress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.CompletionService.Progress(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}

// History godoc
// @Summary Full completion history
// @Description The learner's append-only completion ledger, orphans included.
// @Tags completions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CompletionRecord}
// @Router /api/completions [get]
func (c *CompletionController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.CompletionService.ListHistory(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}
