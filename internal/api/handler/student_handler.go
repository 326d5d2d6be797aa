package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/service"
	"github.com/Woterous/Management-System/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// Create 创建学生
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, result)
}

// List 学生列表，q 匹配姓名或学号
// GET /api/v1/students?q=
func (h *StudentHandler) List(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var query dto.SearchQuery
	if !bindQuery(c, &query) {
		return
	}

	result, err := h.studentSvc.List(c.Request.Context(), teacherID, query.Q)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// GetByID 学生详情
// GET /api/v1/students/:studentId
func (h *StudentHandler) GetByID(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	studentID, ok := pathUUID(c, "studentId", 13001, "学生不存在")
	if !ok {
		return
	}

	result, err := h.studentSvc.GetByID(c.Request.Context(), teacherID, studentID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
