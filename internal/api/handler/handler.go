package handler

import "github.com/Woterous/Management-System/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Course  *CourseHandler
	Student *StudentHandler
	Session *SessionHandler
	Stats   *StatsHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Course:  NewCourseHandler(svc.Course),
		Student: NewStudentHandler(svc.Student),
		Session: NewSessionHandler(svc.Session),
		Stats:   NewStatsHandler(svc.Stats),
		Export:  NewExportHandler(svc.Export),
	}
}
