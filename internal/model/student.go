package model

// Student 学生表，对应 students，归属唯一教师
type Student struct {
	StudentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	TeacherID string  `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Name      string  `gorm:"type:varchar(100);not null"                     json:"name"`
	StudentNo *string `gorm:"type:varchar(50)"                               json:"student_no,omitempty"`
	Age       *int    `json:"age,omitempty"`
	Note      *string `gorm:"type:text"                                      json:"note,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
