package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/service"
	"github.com/Woterous/Management-System/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// Create 创建课程
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.courseSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, result)
}

// List 课程列表
// GET /api/v1/courses?q=
func (h *CourseHandler) List(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var query dto.SearchQuery
	if !bindQuery(c, &query) {
		return
	}

	result, err := h.courseSvc.List(c.Request.Context(), teacherID, query.Q)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// GetByID 课程详情
// GET /api/v1/courses/:courseId
func (h *CourseHandler) GetByID(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	result, err := h.courseSvc.GetByID(c.Request.Context(), teacherID, courseID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 更新课程（部分字段）
// PUT /api/v1/courses/:courseId
func (h *CourseHandler) Update(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.courseSvc.Update(c.Request.Context(), teacherID, courseID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除课程（级联删除名单、课次与考勤）
// DELETE /api/v1/courses/:courseId
func (h *CourseHandler) Delete(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), teacherID, courseID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────── 课程名单 ──────

// AddStudent 将学生加入课程名单，重复加入不报错
// POST /api/v1/courses/:courseId/students
func (h *CourseHandler) AddStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	var req dto.EnrollStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.courseSvc.AddStudent(c.Request.Context(), teacherID, courseID, req.StudentID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, nil)
}

// ListStudents 课程名单
// GET /api/v1/courses/:courseId/students
func (h *CourseHandler) ListStudents(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	result, err := h.courseSvc.ListStudents(c.Request.Context(), teacherID, courseID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// RemoveStudent 将学生移出课程名单
// DELETE /api/v1/courses/:courseId/students/:studentId
func (h *CourseHandler) RemoveStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}
	studentID, ok := pathUUID(c, "studentId", 12002, "该学生未加入此课程")
	if !ok {
		return
	}

	if err := h.courseSvc.RemoveStudent(c.Request.Context(), teacherID, courseID, studentID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrStudentNotEnrolled):
		response.NotFound(c, 12002, "该学生未加入此课程")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
