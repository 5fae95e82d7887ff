package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/service"
	"course_studio_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService  *service.CourseService
	StorageService *service.StorageService
}

func NewCourseController(courseService *service.CourseService, storageService *service.StorageService) *CourseController {
	return &CourseController{CourseService: courseService, StorageService: storageService}
}

// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param course body service.CourseCreateRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary 课程详情（含模块与活动）
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	course, err := c.CourseService.CourseRepo.FindWithContent(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, course)
}

// @Summary 课程列表
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page := 1
	limit := 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	courses, total, err := c.CourseService.CourseRepo.ListByCreator(user.UserID, page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: int64(total),
		Page:  page,
		Limit: limit,
	})
}

// @Summary 更新课程基本信息
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param course body service.CourseUpdateRequest true "课程信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.CourseUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(uint(id), req)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	if err := c.CourseService.DeleteCourse(uint(id)); err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 添加模块
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param module body service.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.CourseService.AddModule(uint(id), req)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// @Summary 更新模块
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.CourseService.UpdateModule(uint(id), req)
	if err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, m)
}

// @Summary 删除模块（连同其活动）
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	if err := c.CourseService.DeleteModule(uint(id)); err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

type ReorderRequest struct {
	OrderedIDs []uint `json:"orderedIds" binding:"required"`
}

// @Summary 调整模块顺序
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body ReorderRequest true "排序后的模块ID列表"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id}/modules/reorder [put]
func (c *CourseController) ReorderModules(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CourseService.ReorderModules(uint(id), req.OrderedIDs); err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reordered": len(req.OrderedIDs)})
}

// @Summary 添加活动
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param moduleId path int true "模块ID"
// @Param activity body service.ActivityRequest true "活动信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/modules/{moduleId}/activities [post]
func (c *CourseController) AddActivity(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.CourseService.AddActivity(uint(id), req)
	if err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 更新活动
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param activityId path int true "活动ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/activities/{activityId} [put]
func (c *CourseController) UpdateActivity(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("activityId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.CourseService.UpdateActivity(uint(id), req)
	if err != nil {
		if err == util.ErrActivityNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 删除活动
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param activityId path int true "活动ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/activities/{activityId} [delete]
func (c *CourseController) DeleteActivity(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("activityId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}
	if err := c.CourseService.DeleteActivity(uint(id)); err != nil {
		if err == util.ErrActivityNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 调整活动顺序
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param moduleId path int true "模块ID"
// @Param body body ReorderRequest true "排序后的活动ID列表"
// @Success 200 {object} util.Response
// @Router /api/teacher/modules/{moduleId}/activities/reorder [put]
func (c *CourseController) ReorderActivities(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CourseService.ReorderActivities(uint(id), req.OrderedIDs); err != nil {
		if err == util.ErrActivityNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reordered": len(req.OrderedIDs)})
}

// @Summary 上传活动资源文件
// @Description 上传视频/图片/PDF，视频会自动探测时长并生成缩略图
// @Tags 课程管理
// @Accept multipart/form-data
// @Security ApiKeyAuth
// @Param activityId path int true "活动ID"
// @Param file formData file true "资源文件"
// @Success 200 {object} util.Response
// @Router /api/teacher/activities/{activityId}/upload [post]
func (c *CourseController) UploadActivityAsset(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("activityId"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	activity, err := c.CourseService.CourseRepo.FindActivityByID(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeVideo, util.MimeImage, util.MimePDF})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	filename := fmt.Sprintf("activities/%d/%d%s", activity.ID, time.Now().UnixNano(), ext)

	var thumbnailURL string
	if util.IsVideo(mimeType) {
		// 视频先落到临时文件，探测时长并截帧
		tmp := filepath.Join(os.TempDir(), fmt.Sprintf("upload_%d%s", time.Now().UnixNano(), ext))
		if err := ctx.SaveUploadedFile(fileHeader, tmp); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		defer os.Remove(tmp)

		if info, err := util.GetVideoInfo(tmp); err == nil && info.Duration > 0 {
			activity.DurationMinutes = int(info.Duration/60) + 1
		}

		thumbPath := tmp + ".jpg"
		if err := util.GenerateThumbnail(tmp, thumbPath, "00:00:01"); err == nil {
			defer os.Remove(thumbPath)
			thumbName := strings.TrimSuffix(filename, ext) + "_thumb.jpg"
			if url, err := c.StorageService.UploadFile(ctx.Request.Context(), thumbName, thumbPath, "image/jpeg"); err == nil {
				thumbnailURL = url
			}
		}

		url, err := c.StorageService.UploadFile(ctx.Request.Context(), filename, tmp, mimeType)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		activity.ContentURL = url
		activity.ActivityType = model.ActivityTypeVideo
	} else {
		url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, mimeType)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		activity.ContentURL = url
	}

	if err := c.CourseService.CourseRepo.UpdateActivity(activity); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"contentUrl":   activity.ContentURL,
		"thumbnailUrl": thumbnailURL,
		"mimeType":     mimeType,
	})
}
