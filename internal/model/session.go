package model

import "time"

// 课次状态：scheduled → open → completed
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusOpen      = "open"
	SessionStatusCompleted = "completed"
)

// Session 课次表，对应 sessions，(course_id, starts_at) 唯一
type Session struct {
	SessionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID  string    `gorm:"type:uuid;not null"                             json:"course_id"`
	StartsAt  time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt    time.Time `gorm:"not null"                                       json:"ends_at"`
	Location  *string   `gorm:"type:varchar(200)"                              json:"location,omitempty"` // 为空时沿用课程地点
	Status    string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	Timestamps

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// EffectiveLocation 课次地点，未单独设置时回退到课程地点
func (s *Session) EffectiveLocation() *string {
	if s.Location != nil && *s.Location != "" {
		return s.Location
	}
	if s.Course != nil {
		return s.Course.Location
	}
	return nil
}

// OwnedBy 课次是否（经由课程）归属该教师
func (s *Session) OwnedBy(teacherID string) bool {
	return s.Course != nil && s.Course.TeacherID == teacherID
}
