package model

import "time"

// 考勤状态
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusLate    = "late"
	AttendanceStatusLeave   = "leave"
	AttendanceStatusAbsent  = "absent"
)

// AttendanceStatuses 考勤状态枚举（顺序即统计列顺序）
var AttendanceStatuses = []string{
	AttendanceStatusPresent,
	AttendanceStatusLate,
	AttendanceStatusLeave,
	AttendanceStatusAbsent,
}

// AttendanceRecord 考勤记录表，对应 attendance_records，(session_id, student_id) 唯一
type AttendanceRecord struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	SessionID    string    `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID    string    `gorm:"type:uuid;not null"                             json:"student_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'present'"    json:"status"`
	Note         *string   `gorm:"type:text"                                      json:"note,omitempty"`
	MarkedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"marked_at"`
	Timestamps

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// AttendanceUpdate 单条考勤更新（仅更新已存在的记录）
type AttendanceUpdate struct {
	StudentID string
	Status    string
	Note      *string
}

// AttendanceCounts 各状态计数
type AttendanceCounts struct {
	Present int64 `gorm:"column:present" json:"present"`
	Late    int64 `gorm:"column:late"    json:"late"`
	Leave   int64 `gorm:"column:leave"   json:"leave"`
	Absent  int64 `gorm:"column:absent"  json:"absent"`
}

// Add 按状态累加一次
func (c *AttendanceCounts) Add(status string) {
	switch status {
	case AttendanceStatusPresent:
		c.Present++
	case AttendanceStatusLate:
		c.Late++
	case AttendanceStatusLeave:
		c.Leave++
	case AttendanceStatusAbsent:
		c.Absent++
	}
}

// Total 总计
func (c AttendanceCounts) Total() int64 {
	return c.Present + c.Late + c.Leave + c.Absent
}

// StudentAttendanceRollup 课程维度的学生考勤汇总行
type StudentAttendanceRollup struct {
	StudentID string  `gorm:"column:student_id"`
	Name      string  `gorm:"column:name"`
	StudentNo *string `gorm:"column:student_no"`
	AttendanceCounts
}

// StudentAttendanceEntry 学生在课程内的单次考勤（含课次时间）
type StudentAttendanceEntry struct {
	SessionID string    `gorm:"column:session_id"`
	Status    string    `gorm:"column:status"`
	Note      *string   `gorm:"column:note"`
	MarkedAt  time.Time `gorm:"column:marked_at"`
	StartsAt  time.Time `gorm:"column:starts_at"`
	EndsAt    time.Time `gorm:"column:ends_at"`
}
