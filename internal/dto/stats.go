package dto

// ── 统计模块 DTO ──

// StudentStatsRow 课程统计中每位学生的各状态计数
type StudentStatsRow struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	StudentNo *string `json:"student_no"`
	Present   int64   `json:"present"`
	Late      int64   `json:"late"`
	Leave     int64   `json:"leave"`
	Absent    int64   `json:"absent"`
	Total     int64   `json:"total"`
}

// CourseStatsResponse 课程考勤统计
type CourseStatsResponse struct {
	CourseID               string            `json:"course_id"`
	CourseTitle            string            `json:"course_title"`
	TotalPlannedSessions   int               `json:"total_planned_sessions"`
	SessionsCount          int64             `json:"sessions_count"`
	CompletedSessionsCount int64             `json:"completed_sessions_count"`
	Students               []StudentStatsRow `json:"students"`
}

// AttendanceSummary 各状态汇总
type AttendanceSummary struct {
	Present int64 `json:"present"`
	Late    int64 `json:"late"`
	Leave   int64 `json:"leave"`
	Absent  int64 `json:"absent"`
}

// StudentAttendanceItem 学生单次考勤
type StudentAttendanceItem struct {
	SessionID string  `json:"session_id"`
	Status    string  `json:"status"`
	Note      *string `json:"note"`
	StartsAt  string  `json:"starts_at"`
	EndsAt    string  `json:"ends_at"`
	MarkedAt  string  `json:"marked_at"`
}

// StudentCourseStatsResponse 学生在课程内的考勤明细与汇总
type StudentCourseStatsResponse struct {
	CourseID  string                  `json:"course_id"`
	StudentID string                  `json:"student_id"`
	Summary   AttendanceSummary       `json:"summary"`
	Records   []StudentAttendanceItem `json:"records"`
}
