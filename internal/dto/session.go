package dto

// ── 课次与考勤 DTO ──

// CreateSessionRequest 创建课次请求，时间为 RFC3339
type CreateSessionRequest struct {
	StartsAt string  `json:"starts_at" binding:"required,rfc3339time"`
	EndsAt   string  `json:"ends_at"   binding:"required,rfc3339time"`
	Location *string `json:"location"  binding:"omitempty,max=200"`
}

// SessionRangeQuery 课次时间范围查询（周视图）
type SessionRangeQuery struct {
	From string `form:"from" binding:"omitempty,rfc3339time"`
	To   string `form:"to"   binding:"omitempty,rfc3339time"`
}

// SessionResponse 课次信息
type SessionResponse struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	CourseTitle string  `json:"course_title,omitempty"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	Location    *string `json:"location"` // 已回退到课程地点
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// AttendanceResponse 点名表中的一行
type AttendanceResponse struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	StudentNo   *string `json:"student_no"`
	Status      string  `json:"status"`
	Note        *string `json:"note"`
	MarkedAt    string  `json:"marked_at"`
}

// SessionDetailResponse 课次详情（含点名表）
type SessionDetailResponse struct {
	Session    SessionResponse      `json:"session"`
	Attendance []AttendanceResponse `json:"attendance"`
}

// AttendanceRecordInput 单条考勤更新
type AttendanceRecordInput struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Status    string  `json:"status"     binding:"required,attendance_status"`
	Note      *string `json:"note"       binding:"omitempty,max=1000"`
}

// UpdateAttendanceRequest 批量更新考勤
type UpdateAttendanceRequest struct {
	Records []AttendanceRecordInput `json:"records" binding:"required,dive"`
}

// OpenSessionResponse 开始点名结果（不返回点名表，调用方需重新获取）
type OpenSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Seeded    int64  `json:"seeded"`
}

// CloseSessionResponse 结束课次结果
type CloseSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// UpdateAttendanceResponse 批量更新结果，updated 为实际命中的记录数
type UpdateAttendanceResponse struct {
	Updated int64 `json:"updated"`
}

// ImportSessionsResponse 从 ICS 导入课次的结果，已存在的开始时间计入 skipped
type ImportSessionsResponse struct {
	Created  int               `json:"created"`
	Skipped  int               `json:"skipped"`
	Sessions []SessionResponse `json:"sessions"`
}
