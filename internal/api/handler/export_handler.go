package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/service"
	"github.com/Woterous/Management-System/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourseStats 导出课程考勤统计
// GET /api/v1/export/courses/:courseId/stats
func (h *ExportHandler) ExportCourseStats(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId", 12001, "课程不存在")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCourseStats(c.Request.Context(), teacherID, courseID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportSessionsICS 导出课表为 iCalendar
// GET /api/v1/export/sessions.ics?from=&to=
func (h *ExportHandler) ExportSessionsICS(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var query dto.SessionRangeQuery
	if !bindQuery(c, &query) {
		return
	}

	data, err := h.exportSvc.ExportSessionsICS(c.Request.Context(), teacherID, &query)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachment(c, "sessions.ics")
	c.Data(http.StatusOK, icsContentType, data)
}

// setAttachment 设置下载响应头
func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 14004, "时间范围格式错误，应为 RFC3339")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17001, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
