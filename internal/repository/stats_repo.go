package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
)

// StatsRepository 考勤统计查询
type StatsRepository interface {
	// CourseRollup 课程名单中每位学生在本课程课次上的各状态计数，按姓名排序
	CourseRollup(ctx context.Context, courseID string) ([]model.StudentAttendanceRollup, error)
	// SessionCounts 课程课次总数与已完成数
	SessionCounts(ctx context.Context, courseID string) (total int64, completed int64, err error)
	// StudentEntries 学生在课程内的考勤明细，按课次开始时间升序
	StudentEntries(ctx context.Context, courseID, studentID string) ([]model.StudentAttendanceEntry, error)
}

type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepo 创建 StatsRepository 实例
func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

const courseRollupSQL = `
SELECT s.student_id, s.name, s.student_no,
       COUNT(ar.attendance_id) FILTER (WHERE ar.status = 'present') AS present,
       COUNT(ar.attendance_id) FILTER (WHERE ar.status = 'late')    AS late,
       COUNT(ar.attendance_id) FILTER (WHERE ar.status = 'leave')   AS leave,
       COUNT(ar.attendance_id) FILTER (WHERE ar.status = 'absent')  AS absent
FROM course_students cs
JOIN students s ON s.student_id = cs.student_id
LEFT JOIN attendance_records ar
       ON ar.student_id = cs.student_id
      AND ar.session_id IN (SELECT session_id FROM sessions WHERE course_id = ?)
WHERE cs.course_id = ?
GROUP BY s.student_id, s.name, s.student_no
ORDER BY s.name ASC`

func (r *statsRepo) CourseRollup(ctx context.Context, courseID string) ([]model.StudentAttendanceRollup, error) {
	var rows []model.StudentAttendanceRollup
	if err := r.db.WithContext(ctx).Raw(courseRollupSQL, courseID, courseID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *statsRepo) SessionCounts(ctx context.Context, courseID string) (int64, int64, error) {
	var counts struct {
		Total     int64
		Completed int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE status = ?) AS completed", model.SessionStatusCompleted).
		Where("course_id = ?", courseID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Completed, nil
}

func (r *statsRepo) StudentEntries(ctx context.Context, courseID, studentID string) ([]model.StudentAttendanceEntry, error) {
	var entries []model.StudentAttendanceEntry
	err := r.db.WithContext(ctx).
		Table("attendance_records ar").
		Select("ar.session_id, ar.status, ar.note, ar.marked_at, se.starts_at, se.ends_at").
		Joins("JOIN sessions se ON se.session_id = ar.session_id").
		Where("se.course_id = ? AND ar.student_id = ?", courseID, studentID).
		Order("se.starts_at ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
