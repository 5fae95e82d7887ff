package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"course_studio_backend/internal/service"
	"course_studio_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseVersionController struct {
	VersionService *service.CourseVersionService
}

func NewCourseVersionController(versionService *service.CourseVersionService) *CourseVersionController {
	return &CourseVersionController{VersionService: versionService}
}

// PublishVersionRequest 发布草稿版本的请求体
// swagger:model PublishVersionRequest
type PublishVersionRequest struct {
	VersionID uint   `json:"versionId"`
	Changelog string `json:"changelog"`
	UserID    string `json:"userId"`
}

// PublishVersion godoc
// @Summary 发布课程草稿版本
// @Description 归档旧版本、级联发布模块/活动快照并更新课程指针，整体原子提交
// @Tags 课程版本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body PublishVersionRequest true "发布请求"
// @Success 200 {object} object "发布成功，返回完整版本聚合"
// @Failure 400 {object} object "versionId 缺失或版本状态不允许发布"
// @Failure 404 {object} object "版本不存在"
// @Router /api/teacher/course-versions/publish [post]
func (c *CourseVersionController) PublishVersion(ctx *gin.Context) {
	var req PublishVersionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.VersionID == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "versionId is required"})
		return
	}

	actorID := util.MustParseUint(req.UserID)
	if claims := util.GetUserFromContext(ctx); claims != nil {
		actorID = claims.UserID
	}

	version, err := c.VersionService.Publish(req.VersionID, service.PublishRequest{
		Changelog: req.Changelog,
		ActorID:   actorID,
	})
	if err != nil {
		var transErr *service.InvalidTransitionError
		switch {
		case errors.Is(err, util.ErrVersionNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "course version not found"})
		case errors.As(err, &transErr):
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":         "only draft versions can be published",
				"currentStatus": transErr.CurrentStatus,
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "failed to publish version",
				"details": err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("版本 %s 发布成功", version.Version),
		"version": version,
	})
}

// CreateDraft godoc
// @Summary 创建课程草稿版本
// @Description 对课程当前内容做快照，一个课程同时只能有一份草稿
// @Tags 课程版本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "已存在未发布的草稿"
// @Router /api/teacher/courses/{id}/draft [post]
func (c *CourseVersionController) CreateDraft(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var actorID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		actorID = claims.UserID
	}

	version, err := c.VersionService.CreateDraft(uint(id), actorID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDraftAlreadyExists):
			util.Conflict(ctx, "course already has an open draft version")
		case errors.Is(err, util.ErrInvalidSourceState):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, version)
}

// @Summary 课程版本列表
// @Tags 课程版本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id}/versions [get]
func (c *CourseVersionController) ListVersions(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	versions, err := c.VersionService.ListVersions(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, versions)
}

// @Summary 版本详情（含模块/活动快照）
// @Tags 课程版本
// @Produce json
// @Security ApiKeyAuth
// @Param versionId path int true "版本ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/course-versions/{versionId} [get]
func (c *CourseVersionController) GetVersion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("versionId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	version, err := c.VersionService.GetVersion(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrVersionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, version)
}

// @Summary 版本变更记录
// @Tags 课程版本
// @Produce json
// @Security ApiKeyAuth
// @Param versionId path int true "版本ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/course-versions/{versionId}/changelog [get]
func (c *CourseVersionController) GetChangelog(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("versionId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	entries, err := c.VersionService.GetChangelog(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrVersionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 课程当前已发布版本
// @Description 学员侧读取接口，结果有 Redis 缓存
// @Tags 课程版本
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/current [get]
func (c *CourseVersionController) GetCurrentVersion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	version, err := c.VersionService.GetCurrentVersion(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) || errors.Is(err, util.ErrVersionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, version)
}
