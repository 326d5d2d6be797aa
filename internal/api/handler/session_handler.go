package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/service"
	"github.com/Woterous/Management-System/pkg/response"
)

// SessionHandler 课次与考勤 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 为课程创建课次
// POST /api/v1/courses/:courseId/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.sessionSvc.Create(c.Request.Context(), teacherID, courseID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

// List 教师全部课程的课次（周视图）
// GET /api/v1/sessions?from=&to=
func (h *SessionHandler) List(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var query dto.SessionRangeQuery
	if !bindQuery(c, &query) {
		return
	}

	result, err := h.sessionSvc.List(c.Request.Context(), teacherID, &query)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListByCourse 单个课程的课次
// GET /api/v1/courses/:courseId/sessions?from=&to=
func (h *SessionHandler) ListByCourse(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	var query dto.SessionRangeQuery
	if !bindQuery(c, &query) {
		return
	}

	result, err := h.sessionSvc.ListByCourse(c.Request.Context(), teacherID, courseID, &query)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// GetDetail 课次详情（含点名表）
// GET /api/v1/sessions/:sessionId
func (h *SessionHandler) GetDetail(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionId", 14001, "课次不存在")
	if !ok {
		return
	}

	result, err := h.sessionSvc.GetDetail(c.Request.Context(), teacherID, sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// Open 开始点名
// POST /api/v1/sessions/:sessionId/open
func (h *SessionHandler) Open(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionId", 14001, "课次不存在")
	if !ok {
		return
	}

	result, err := h.sessionSvc.Open(c.Request.Context(), teacherID, sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateAttendance 批量更新考勤
// PATCH /api/v1/sessions/:sessionId/attendance
func (h *SessionHandler) UpdateAttendance(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionId", 14001, "课次不存在")
	if !ok {
		return
	}

	var req dto.UpdateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.sessionSvc.UpdateAttendance(c.Request.Context(), teacherID, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// Close 结束课次
// POST /api/v1/sessions/:sessionId/close
func (h *SessionHandler) Close(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionId", 14001, "课次不存在")
	if !ok {
		return
	}

	result, err := h.sessionSvc.Close(c.Request.Context(), teacherID, sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportICS 从 iCalendar 导入课次
// POST /api/v1/courses/:courseId/sessions/import
//
// 支持两种方式：
//   - multipart/form-data，文件字段名 file
//   - 请求体直接为 text/calendar 内容
func (h *SessionHandler) ImportICS(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	var body io.Reader = c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	} else {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			return
		}
	}

	result, err := h.sessionSvc.ImportICS(c.Request.Context(), teacherID, courseID, body)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "课次不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrSessionConflict):
		response.Conflict(c, 14002, "该课程在此开始时间已有课次")
	case errors.Is(err, service.ErrInvalidTime):
		response.BadRequest(c, 14003, "时间格式错误，应为 RFC3339")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 14004, "时间范围格式错误，应为 RFC3339")
	case errors.Is(err, service.ErrInvalidICS):
		response.BadRequest(c, 14005, "ICS 文件格式错误")
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 14006, "ICS 文件中没有可导入的课次")
	default:
		response.InternalError(c)
	}
}
