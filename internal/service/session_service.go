package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/model"
	"github.com/Woterous/Management-System/internal/repository"
	pkgerrors "github.com/Woterous/Management-System/pkg/errors"
)

// ── 课次模块业务错误 ──

var (
	ErrSessionNotFound  = errors.New("课次不存在")
	ErrSessionConflict  = errors.New("该课程在此开始时间已有课次")
	ErrInvalidTime      = errors.New("时间格式错误，应为 RFC3339")
	ErrInvalidTimeRange = errors.New("时间范围格式错误，应为 RFC3339")
	ErrInvalidICS       = errors.New("ICS 文件格式错误")
	ErrICSNoEvents      = errors.New("ICS 文件中没有可导入的课次")
)

// SessionService 课次生命周期与点名业务接口
//
// 状态流转 scheduled → open → completed 仅作展示用途：
// 开始点名、更新考勤、结束课次均不校验当前状态，可重复执行
type SessionService interface {
	Create(ctx context.Context, teacherID, courseID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	// List 教师全部课程中与时间范围相交的课次，按开始时间升序
	List(ctx context.Context, teacherID string, query *dto.SessionRangeQuery) ([]dto.SessionResponse, error)
	// ListByCourse 单个课程的课次，最近的在前
	ListByCourse(ctx context.Context, teacherID, courseID string, query *dto.SessionRangeQuery) ([]dto.SessionResponse, error)
	GetDetail(ctx context.Context, teacherID, sessionID string) (*dto.SessionDetailResponse, error)
	// Open 为名单中缺少记录的学生补建 present 记录并置为 open，重复调用不覆盖已编辑记录
	Open(ctx context.Context, teacherID, sessionID string) (*dto.OpenSessionResponse, error)
	// UpdateAttendance 批量更新已存在的考勤记录，整批在同一事务内提交
	UpdateAttendance(ctx context.Context, teacherID, sessionID string, req *dto.UpdateAttendanceRequest) (*dto.UpdateAttendanceResponse, error)
	Close(ctx context.Context, teacherID, sessionID string) (*dto.CloseSessionResponse, error)
	// ImportICS 从 iCalendar 批量创建课次，开始时间已存在的跳过
	ImportICS(ctx context.Context, teacherID, courseID string, r io.Reader) (*dto.ImportSessionsResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sessionService) Create(ctx context.Context, teacherID, courseID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidTime
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, ErrInvalidTime
	}

	course, err := findOwnedCourse(ctx, s.repo, s.logger, teacherID, courseID)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		CourseID: course.CourseID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Location: trimOptional(req.Location),
		Status:   model.SessionStatusScheduled,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrSessionConflict
		}
		s.logger.Error("创建课次失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	session.Course = course

	resp := toSessionResponse(session)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *sessionService) List(ctx context.Context, teacherID string, query *dto.SessionRangeQuery) ([]dto.SessionResponse, error) {
	from, to, err := parseRange(query)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.Session.ListByTeacher(ctx, teacherID, from, to)
	if err != nil {
		s.logger.Error("查询课次列表失败", zap.Error(err))
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

func (s *sessionService) ListByCourse(ctx context.Context, teacherID, courseID string, query *dto.SessionRangeQuery) ([]dto.SessionResponse, error) {
	from, to, err := parseRange(query)
	if err != nil {
		return nil, err
	}
	if _, err := findOwnedCourse(ctx, s.repo, s.logger, teacherID, courseID); err != nil {
		return nil, err
	}
	sessions, err := s.repo.Session.ListByCourse(ctx, courseID, from, to)
	if err != nil {
		s.logger.Error("查询课程课次失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

func (s *sessionService) GetDetail(ctx context.Context, teacherID, sessionID string) (*dto.SessionDetailResponse, error) {
	session, err := s.getOwned(ctx, teacherID, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Attendance.ListForSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询点名表失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	attendance := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		attendance = append(attendance, toAttendanceResponse(&records[i]))
	}
	return &dto.SessionDetailResponse{
		Session:    toSessionResponse(session),
		Attendance: attendance,
	}, nil
}

// ────────────────────── Open ──────────────────────

func (s *sessionService) Open(ctx context.Context, teacherID, sessionID string) (*dto.OpenSessionResponse, error) {
	session, err := s.getOwned(ctx, teacherID, sessionID)
	if err != nil {
		return nil, err
	}

	// 1. 补建缺失记录（已有记录不变）
	seeded, err := s.repo.Attendance.SeedMissing(ctx, sessionID, session.CourseID, model.AttendanceStatusPresent)
	if err != nil {
		s.logger.Error("补建考勤记录失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	// 2. 置为 open，无论当前状态
	if err := s.repo.Session.UpdateStatus(ctx, sessionID, model.SessionStatusOpen); err != nil {
		s.logger.Error("更新课次状态失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("开始点名",
		zap.String("session_id", sessionID),
		zap.String("previous_status", session.Status),
		zap.Int64("seeded", seeded),
	)
	return &dto.OpenSessionResponse{
		SessionID: sessionID,
		Status:    model.SessionStatusOpen,
		Seeded:    seeded,
	}, nil
}

// ────────────────────── UpdateAttendance ──────────────────────

func (s *sessionService) UpdateAttendance(ctx context.Context, teacherID, sessionID string, req *dto.UpdateAttendanceRequest) (*dto.UpdateAttendanceResponse, error) {
	if _, err := s.getOwned(ctx, teacherID, sessionID); err != nil {
		return nil, err
	}

	updates := make([]model.AttendanceUpdate, 0, len(req.Records))
	for _, r := range req.Records {
		updates = append(updates, model.AttendanceUpdate{
			StudentID: r.StudentID,
			Status:    r.Status,
			Note:      r.Note,
		})
	}
	if len(updates) == 0 {
		return &dto.UpdateAttendanceResponse{Updated: 0}, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	updated, err := txRepo.Attendance.ApplyUpdates(ctx, sessionID, updates)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量更新考勤失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return &dto.UpdateAttendanceResponse{Updated: updated}, nil
}

// ────────────────────── Close ──────────────────────

func (s *sessionService) Close(ctx context.Context, teacherID, sessionID string) (*dto.CloseSessionResponse, error) {
	if _, err := s.getOwned(ctx, teacherID, sessionID); err != nil {
		return nil, err
	}
	if err := s.repo.Session.UpdateStatus(ctx, sessionID, model.SessionStatusCompleted); err != nil {
		s.logger.Error("更新课次状态失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return &dto.CloseSessionResponse{
		SessionID: sessionID,
		Status:    model.SessionStatusCompleted,
	}, nil
}

// ────────────────────── ImportICS ──────────────────────

func (s *sessionService) ImportICS(ctx context.Context, teacherID, courseID string, r io.Reader) (*dto.ImportSessionsResponse, error) {
	course, err := findOwnedCourse(ctx, s.repo, s.logger, teacherID, courseID)
	if err != nil {
		return nil, err
	}

	occurrences, err := parseSessionICS(r, time.UTC)
	if err != nil {
		s.logger.Warn("解析 ICS 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, ErrInvalidICS
	}
	if len(occurrences) == 0 {
		return nil, ErrICSNoEvents
	}

	resp := &dto.ImportSessionsResponse{Sessions: make([]dto.SessionResponse, 0, len(occurrences))}
	for _, occ := range occurrences {
		session := &model.Session{
			CourseID: course.CourseID,
			StartsAt: occ.StartsAt,
			EndsAt:   occ.EndsAt,
			Status:   model.SessionStatusScheduled,
		}
		if occ.Location != "" {
			location := occ.Location
			session.Location = &location
		}
		if err := s.repo.Session.Create(ctx, session); err != nil {
			if pkgerrors.IsDuplicateKey(err) {
				resp.Skipped++
				continue
			}
			s.logger.Error("导入课次失败", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
		session.Course = course
		resp.Created++
		resp.Sessions = append(resp.Sessions, toSessionResponse(session))
	}

	s.logger.Info("ICS 导入完成",
		zap.String("course_id", courseID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// ── 辅助函数 ──

func (s *sessionService) getOwned(ctx context.Context, teacherID, sessionID string) (*model.Session, error) {
	session, err := s.repo.Session.GetOwned(ctx, teacherID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课次失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func toSessionResponses(sessions []model.Session) []dto.SessionResponse {
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result
}

// parseRange 解析可选的 from/to，空值表示不限
func parseRange(query *dto.SessionRangeQuery) (*time.Time, *time.Time, error) {
	if query == nil {
		return nil, nil, nil
	}
	parse := func(v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		return &t, nil
	}
	from, err := parse(query.From)
	if err != nil {
		return nil, nil, err
	}
	to, err := parse(query.To)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
