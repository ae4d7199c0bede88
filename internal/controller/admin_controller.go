package controller

import (
	"errors"
	"strconv"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController hosts operator-invoked maintenance endpoints. None of
// these run automatically.
type AdminController struct {
	MigrationService *service.LegacyMigrationService
	DocumentService  *service.DocumentService
	DocumentRepo     *repository.DocumentRepository
	RoleCache        *service.RoleCache
}

func NewAdminController(migrationService *service.LegacyMigrationService, documentService *service.DocumentService, documentRepo *repository.DocumentRepository, roleCache *service.RoleCache) *AdminController {
	return &AdminController{
		MigrationService: migrationService,
		DocumentService:  documentService,
		DocumentRepo:     documentRepo,
		RoleCache:        roleCache,
	}
}

// MigrateLegacy godoc
// @Summary Migrate one learner's legacy completion records
// @Description Re-keys records whose id matches the configured legacy pattern and whose suffix matches exactly one current sub-topic id. Ambiguous records are reported, never guessed.
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   learnerId path int true "learner id"
// @Success 200 {object} util.Response{data=service.MigrationReport}
// @Failure 400 {object} util.Response "no legacy pattern configured"
// @Router /api/admin/learners/{learnerId}/migrate-legacy [post]
func (c *AdminController) MigrateLegacy(ctx *gin.Context) {
	learnerID, err := strconv.ParseUint(ctx.Param("learnerId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid learner id")
		return
	}

	report, err := c.MigrationService.MigrateLegacy(uint(learnerID))
	if err != nil {
		if errors.Is(err, util.ErrAmbiguousMigration) {
			util.Conflict(ctx, err.Error())
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, report)
}

// FallbackStats godoc
// @Summary Fallback usage across stored documents
// @Description Diagnostic for generator drift: how many documents needed synthesized filler and how many entries were synthesized in total.
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=repository.FallbackStats}
// @Router /api/admin/diagnostics/fallback-ratio [get]
func (c *AdminController) FallbackStats(ctx *gin.Context) {
	stats, err := c.DocumentRepo.GetFallbackStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// WarmBatch godoc
// @Summary Pre-generate documents for a lesson's sub-topics
// @Description Assembles any missing documents for the lesson's current batch so learners do not wait on first open.
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "lesson id"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/admin/lessons/{id}/warm [post]
func (c *AdminController) WarmBatch(ctx *gin.Context) {
	generated, err := c.DocumentService.WarmBatch(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"generated": generated})
}

// ClearRoleCache godoc
// @Summary Clear the dialogue speaker-role cache
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/role-cache [delete]
func (c *AdminController) ClearRoleCache(ctx *gin.Context) {
	if err := c.RoleCache.Clear(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
