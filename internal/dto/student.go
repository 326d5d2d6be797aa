package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=100"`
	StudentNo *string `json:"student_no" binding:"omitempty,max=50"`
	Age       *int    `json:"age"        binding:"omitempty,min=0,max=150"`
	Note      *string `json:"note"       binding:"omitempty,max=1000"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StudentNo *string `json:"student_no"`
	Age       *int    `json:"age"`
	Note      *string `json:"note"`
	CreatedAt string  `json:"created_at"`
}
