package controller

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// Schedule godoc
// @Summary Schedule a lesson
// @Tags lessons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ScheduleLessonReq true "lesson details"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response
// @Router /api/lessons [post]
func (c *LessonController) Schedule(ctx *gin.Context) {
	var req service.ScheduleLessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Schedule(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// Get godoc
// @Summary Fetch a lesson with its current sub-topics
// @Tags lessons
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.LessonService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, lesson)
}

// List godoc
// @Summary List the current learner's lessons
// @Tags lessons
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Lesson}
// @Router /api/lessons [get]
func (c *LessonController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessons, err := c.LessonService.ListByLearner(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, lessons)
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=upcoming completed cancelled"`
}

// UpdateStatus godoc
// @Summary Update lesson status
// @Tags lessons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Param   body body UpdateStatusRequest true "new status"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/lessons/{id}/status [put]
func (c *LessonController) UpdateStatus(ctx *gin.Context) {
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.LessonService.UpdateStatus(ctx.Param("id"), model.LessonStatus(req.Status)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// GeneratePlan godoc
// @Summary Generate the lesson's sub-topic plan
// @Description Replaces the lesson's sub-topic set with a freshly generated batch. Only one generation per lesson runs at a time.
// @Tags lessons
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "generation already in flight, or identity collision"
// @Failure 503 {object} util.Response "generator unreachable"
// @Router /api/lessons/{id}/generate [post]
func (c *LessonController) GeneratePlan(ctx *gin.Context) {
	lesson, err := c.LessonService.GeneratePlan(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrGenerationInFlight):
			util.Conflict(ctx, "a generation for this lesson is already running")
		case errors.Is(err, util.ErrIdentityCollision), errors.Is(err, util.ErrNonMonotonicBatch):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrGenerationTimeout), errors.Is(err, util.ErrGenerationUnavailable):
			util.Error(ctx, 503, "lesson generator is unavailable, try again later")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, lesson)
}
