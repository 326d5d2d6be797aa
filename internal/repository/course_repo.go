package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
)

// CourseRepository 课程数据访问接口，查询均限定在教师名下
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, teacherID, id string) (*model.Course, error)
	List(ctx context.Context, teacherID, keyword string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	// Delete 返回删除行数，0 表示不存在或不属于该教师
	Delete(ctx context.Context, teacherID, id string) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, teacherID, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND teacher_id = ?", id, teacherID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, teacherID, keyword string) ([]model.Course, error) {
	var courses []model.Course
	db := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID)
	if keyword != "" {
		db = db.Where("title ILIKE ?", "%"+keyword+"%")
	}
	if err := db.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Select("title", "location", "total_planned_sessions").
		Updates(course).Error
}

// Delete 级联删除选课关系、课次及其考勤（由外键 ON DELETE CASCADE 完成）
func (r *courseRepo) Delete(ctx context.Context, teacherID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("course_id = ? AND teacher_id = ?", id, teacherID).
		Delete(&model.Course{})
	return result.RowsAffected, result.Error
}
