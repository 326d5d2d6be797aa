package service

import (
	"time"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/model"
)

// ── Model → DTO 转换 ──

// formatTime 统一输出 UTC 的 RFC3339
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toTeacherResponse(t *model.Teacher) dto.TeacherResponse {
	return dto.TeacherResponse{ID: t.TeacherID, Email: t.Email, Name: t.Name}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:                   c.CourseID,
		Title:                c.Title,
		Location:             c.Location,
		TotalPlannedSessions: c.TotalPlannedSessions,
		CreatedAt:            formatTime(c.CreatedAt),
		UpdatedAt:            formatTime(c.UpdatedAt),
	}
}

func toStudentResponse(s *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:        s.StudentID,
		Name:      s.Name,
		StudentNo: s.StudentNo,
		Age:       s.Age,
		Note:      s.Note,
		CreatedAt: formatTime(s.CreatedAt),
	}
}

func toSessionResponse(s *model.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:        s.SessionID,
		CourseID:  s.CourseID,
		StartsAt:  formatTime(s.StartsAt),
		EndsAt:    formatTime(s.EndsAt),
		Location:  s.EffectiveLocation(),
		Status:    s.Status,
		CreatedAt: formatTime(s.CreatedAt),
	}
	if s.Course != nil {
		resp.CourseTitle = s.Course.Title
	}
	return resp
}

func toAttendanceResponse(r *model.AttendanceRecord) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		StudentID: r.StudentID,
		Status:    r.Status,
		Note:      r.Note,
		MarkedAt:  formatTime(r.MarkedAt),
	}
	if r.Student != nil {
		resp.StudentName = r.Student.Name
		resp.StudentNo = r.Student.StudentNo
	}
	return resp
}
