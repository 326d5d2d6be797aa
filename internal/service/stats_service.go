package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/model"
	"github.com/Woterous/Management-System/internal/repository"
)

// StatsService 考勤统计业务接口
type StatsService interface {
	// CourseStats 课程名单中每位学生的各状态计数，以及课次计数
	CourseStats(ctx context.Context, teacherID, courseID string) (*dto.CourseStatsResponse, error)
	// StudentCourseStats 学生在课程内的考勤明细与汇总
	// 仅校验课程归属，学生不在名单时返回空结果
	StudentCourseStats(ctx context.Context, teacherID, courseID, studentID string) (*dto.StudentCourseStatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) CourseStats(ctx context.Context, teacherID, courseID string) (*dto.CourseStatsResponse, error) {
	course, err := findOwnedCourse(ctx, s.repo, s.logger, teacherID, courseID)
	if err != nil {
		return nil, err
	}

	var (
		rows             []model.StudentAttendanceRollup
		total, completed int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.Stats.CourseRollup(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		total, completed, err = s.repo.Stats.SessionCounts(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("查询课程统计失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	students := make([]dto.StudentStatsRow, 0, len(rows))
	for _, r := range rows {
		students = append(students, dto.StudentStatsRow{
			StudentID: r.StudentID,
			Name:      r.Name,
			StudentNo: r.StudentNo,
			Present:   r.Present,
			Late:      r.Late,
			Leave:     r.Leave,
			Absent:    r.Absent,
			Total:     r.Total(),
		})
	}

	return &dto.CourseStatsResponse{
		CourseID:               course.CourseID,
		CourseTitle:            course.Title,
		TotalPlannedSessions:   course.TotalPlannedSessions,
		SessionsCount:          total,
		CompletedSessionsCount: completed,
		Students:               students,
	}, nil
}

func (s *statsService) StudentCourseStats(ctx context.Context, teacherID, courseID, studentID string) (*dto.StudentCourseStatsResponse, error) {
	if _, err := findOwnedCourse(ctx, s.repo, s.logger, teacherID, courseID); err != nil {
		return nil, err
	}

	entries, err := s.repo.Stats.StudentEntries(ctx, courseID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生考勤明细失败",
			zap.String("course_id", courseID),
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, err
	}

	var counts model.AttendanceCounts
	records := make([]dto.StudentAttendanceItem, 0, len(entries))
	for _, e := range entries {
		counts.Add(e.Status)
		records = append(records, dto.StudentAttendanceItem{
			SessionID: e.SessionID,
			Status:    e.Status,
			Note:      e.Note,
			StartsAt:  formatTime(e.StartsAt),
			EndsAt:    formatTime(e.EndsAt),
			MarkedAt:  formatTime(e.MarkedAt),
		})
	}

	return &dto.StudentCourseStatsResponse{
		CourseID:  courseID,
		StudentID: studentID,
		Summary: dto.AttendanceSummary{
			Present: counts.Present,
			Late:    counts.Late,
			Leave:   counts.Leave,
			Absent:  counts.Absent,
		},
		Records: records,
	}, nil
}
