package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Woterous/Management-System/internal/service"
	"github.com/Woterous/Management-System/pkg/response"
)

// StatsHandler 考勤统计 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// CourseStats 课程考勤汇总
// GET /api/v1/stats/courses/:courseId
func (h *StatsHandler) CourseStats(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	result, err := h.statsSvc.CourseStats(c.Request.Context(), teacherID, courseID)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentCourseStats 学生在课程内的考勤明细
// GET /api/v1/stats/courses/:courseId/students/:studentId
func (h *StatsHandler) StudentCourseStats(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}
	studentID, ok := pathUUID(c, "studentId", 13001, "学生不存在")
	if !ok {
		return
	}

	result, err := h.statsSvc.StudentCourseStats(c.Request.Context(), teacherID, courseID, studentID)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StatsHandler) handleStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	default:
		response.InternalError(c)
	}
}
