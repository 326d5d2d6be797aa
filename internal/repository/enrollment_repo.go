package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Woterous/Management-System/internal/model"
)

// EnrollmentRepository 选课关系（course_students）数据访问接口
type EnrollmentRepository interface {
	// Add 已存在时静默忽略
	Add(ctx context.Context, courseID, studentID string) error
	// Remove 返回删除行数，0 表示学生未选该课
	Remove(ctx context.Context, courseID, studentID string) (int64, error)
	// ListStudents 课程名单，按姓名排序
	ListStudents(ctx context.Context, courseID string) ([]model.Student, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Add(ctx context.Context, courseID, studentID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseStudent{CourseID: courseID, StudentID: studentID}).Error
}

func (r *enrollmentRepo) Remove(ctx context.Context, courseID, studentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&model.CourseStudent{})
	return result.RowsAffected, result.Error
}

func (r *enrollmentRepo) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN course_students cs ON cs.student_id = students.student_id").
		Where("cs.course_id = ?", courseID).
		Order("students.name ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
