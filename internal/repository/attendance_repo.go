package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
)

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	// SeedMissing 为课程当前名单中尚无记录的学生补建考勤，已有记录保持不变
	SeedMissing(ctx context.Context, sessionID, courseID, status string) (int64, error)
	// ApplyUpdates 仅更新已存在的记录，返回命中的记录数
	ApplyUpdates(ctx context.Context, sessionID string, updates []model.AttendanceUpdate) (int64, error)
	// ListForSession 课次点名表，按学生姓名排序
	ListForSession(ctx context.Context, sessionID string) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// 单条语句完成差集插入，并发开课时由唯一约束兜底
const seedMissingSQL = `
INSERT INTO attendance_records (session_id, student_id, status, marked_at)
SELECT CAST(? AS uuid), cs.student_id, ?, NOW()
FROM course_students cs
WHERE cs.course_id = ?
ON CONFLICT (session_id, student_id) DO NOTHING`

func (r *attendanceRepo) SeedMissing(ctx context.Context, sessionID, courseID, status string) (int64, error) {
	result := r.db.WithContext(ctx).Exec(seedMissingSQL, sessionID, status, courseID)
	return result.RowsAffected, result.Error
}

func (r *attendanceRepo) ApplyUpdates(ctx context.Context, sessionID string, updates []model.AttendanceUpdate) (int64, error) {
	var updated int64
	for _, u := range updates {
		result := r.db.WithContext(ctx).
			Model(&model.AttendanceRecord{}).
			Where("session_id = ? AND student_id = ?", sessionID, u.StudentID).
			Updates(map[string]interface{}{
				"status":    u.Status,
				"note":      u.Note,
				"marked_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return updated, result.Error
		}
		updated += result.RowsAffected
	}
	return updated, nil
}

func (r *attendanceRepo) ListForSession(ctx context.Context, sessionID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Joins("JOIN students st ON st.student_id = attendance_records.student_id").
		Where("attendance_records.session_id = ?", sessionID).
		Order("st.name ASC, st.student_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
