package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
)

// StudentRepository 学生数据访问接口，查询均限定在教师名下
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, teacherID, id string) (*model.Student, error)
	List(ctx context.Context, teacherID, keyword string) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, teacherID, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND teacher_id = ?", id, teacherID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// List 关键字同时匹配姓名与学号，按创建时间倒序
func (r *studentRepo) List(ctx context.Context, teacherID, keyword string) ([]model.Student, error) {
	var students []model.Student
	db := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID)
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("name ILIKE ? OR student_no ILIKE ?", like, like)
	}
	if err := db.Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
