package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/model"
	"github.com/Woterous/Management-System/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrStudentNotEnrolled = errors.New("该学生未加入此课程")
)

// CourseService 课程与课程名单业务接口
// 所有操作限定在 teacherID 名下，不属于该教师的课程视为不存在
type CourseService interface {
	Create(ctx context.Context, teacherID string, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	List(ctx context.Context, teacherID, keyword string) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, teacherID, id string) (*dto.CourseResponse, error)
	Update(ctx context.Context, teacherID, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, teacherID, id string) error

	AddStudent(ctx context.Context, teacherID, courseID, studentID string) error
	ListStudents(ctx context.Context, teacherID, courseID string) ([]dto.StudentResponse, error)
	RemoveStudent(ctx context.Context, teacherID, courseID, studentID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, teacherID string, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	course := &model.Course{
		TeacherID: teacherID,
		Title:     strings.TrimSpace(req.Title),
		Location:  req.Location,
	}
	if req.TotalPlannedSessions != nil {
		course.TotalPlannedSessions = *req.TotalPlannedSessions
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *courseService) List(ctx context.Context, teacherID, keyword string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, teacherID, strings.TrimSpace(keyword))
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *courseService) GetByID(ctx context.Context, teacherID, id string) (*dto.CourseResponse, error) {
	course, err := s.getOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, teacherID, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.getOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Location != nil {
		course.Location = req.Location
	}
	if req.TotalPlannedSessions != nil {
		course.TotalPlannedSessions = *req.TotalPlannedSessions
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, teacherID, id string) error {
	n, err := s.repo.Course.Delete(ctx, teacherID, id)
	if err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrCourseNotFound
	}
	s.logger.Info("课程已删除", zap.String("course_id", id), zap.String("teacher_id", teacherID))
	return nil
}

// ────────────────────── Roster ──────────────────────

func (s *courseService) AddStudent(ctx context.Context, teacherID, courseID, studentID string) error {
	if _, err := s.getOwned(ctx, teacherID, courseID); err != nil {
		return err
	}
	if _, err := s.repo.Student.GetByID(ctx, teacherID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", studentID), zap.Error(err))
		return err
	}
	if err := s.repo.Enrollment.Add(ctx, courseID, studentID); err != nil {
		s.logger.Error("加入课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

func (s *courseService) ListStudents(ctx context.Context, teacherID, courseID string) ([]dto.StudentResponse, error) {
	if _, err := s.getOwned(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程名单失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, nil
}

func (s *courseService) RemoveStudent(ctx context.Context, teacherID, courseID, studentID string) error {
	if _, err := s.getOwned(ctx, teacherID, courseID); err != nil {
		return err
	}
	n, err := s.repo.Enrollment.Remove(ctx, courseID, studentID)
	if err != nil {
		s.logger.Error("移出课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrStudentNotEnrolled
	}
	return nil
}

// ── 辅助函数 ──

func (s *courseService) getOwned(ctx context.Context, teacherID, id string) (*model.Course, error) {
	return findOwnedCourse(ctx, s.repo, s.logger, teacherID, id)
}

// findOwnedCourse 查询教师名下课程，不存在或不属于该教师均返回 ErrCourseNotFound
func findOwnedCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, teacherID, id string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}
