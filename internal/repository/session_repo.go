package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
)

// SessionRepository 课次数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// GetOwned 经由课程校验归属，不存在与不属于该教师均返回 gorm.ErrRecordNotFound
	GetOwned(ctx context.Context, teacherID, sessionID string) (*model.Session, error)
	// ListByTeacher 与 [from, to] 相交的课次，按开始时间升序；from/to 为空表示不限
	ListByTeacher(ctx context.Context, teacherID string, from, to *time.Time) ([]model.Session, error)
	// ListByCourse 课程下的课次，按开始时间倒序
	ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]model.Session, error)
	UpdateStatus(ctx context.Context, sessionID, status string) error
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Omit("Course").Create(session).Error
}

func (r *sessionRepo) GetOwned(ctx context.Context, teacherID, sessionID string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN courses c ON c.course_id = sessions.course_id").
		Where("sessions.session_id = ? AND c.teacher_id = ?", sessionID, teacherID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByTeacher(ctx context.Context, teacherID string, from, to *time.Time) ([]model.Session, error) {
	var sessions []model.Session
	db := r.db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN courses c ON c.course_id = sessions.course_id").
		Where("c.teacher_id = ?", teacherID)
	db = withinRange(db, from, to)
	if err := db.Order("sessions.starts_at ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]model.Session, error) {
	var sessions []model.Session
	db := r.db.WithContext(ctx).
		Preload("Course").
		Where("sessions.course_id = ?", courseID)
	db = withinRange(db, from, to)
	if err := db.Order("sessions.starts_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, sessionID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("session_id = ?", sessionID).
		Update("status", status).Error
}

// withinRange 课次区间与 [from, to] 有交集
func withinRange(db *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where("sessions.ends_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("sessions.starts_at <= ?", *to)
	}
	return db
}
