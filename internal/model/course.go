package model

import "time"

// Course 课程表，对应 courses
type Course struct {
	CourseID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	TeacherID            string  `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Title                string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Location             *string `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	TotalPlannedSessions int     `gorm:"not null;default:0"                             json:"total_planned_sessions"` // 计划课次，仅作参考
	Timestamps
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseStudent 选课关系表，对应 course_students，(course_id, student_id) 唯一
type CourseStudent struct {
	CourseID  string    `gorm:"type:uuid;primaryKey"                json:"course_id"`
	StudentID string    `gorm:"type:uuid;primaryKey"                json:"student_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (CourseStudent) TableName() string { return "course_students" }
