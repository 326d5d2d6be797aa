package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title                string  `json:"title"                  binding:"required,min=1,max=200"`
	Location             *string `json:"location"               binding:"omitempty,max=200"`
	TotalPlannedSessions *int    `json:"total_planned_sessions" binding:"required,min=0"`
}

// UpdateCourseRequest 更新课程请求（字段均可选，仅更新非空字段）
type UpdateCourseRequest struct {
	Title                *string `json:"title"                  binding:"omitempty,min=1,max=200"`
	Location             *string `json:"location"               binding:"omitempty,max=200"`
	TotalPlannedSessions *int    `json:"total_planned_sessions" binding:"omitempty,min=0"`
}

// SearchQuery 列表关键字查询
type SearchQuery struct {
	Q string `form:"q" binding:"omitempty,max=100"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Location             *string `json:"location"`
	TotalPlannedSessions int     `json:"total_planned_sessions"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// EnrollStudentRequest 将学生加入课程
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}
