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

// ── 学生模块业务错误 ──

var ErrStudentNotFound = errors.New("学生不存在")

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	List(ctx context.Context, teacherID, keyword string) ([]dto.StudentResponse, error)
	GetByID(ctx context.Context, teacherID, id string) (*dto.StudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	student := &model.Student{
		TeacherID: teacherID,
		Name:      strings.TrimSpace(req.Name),
		StudentNo: req.StudentNo,
		Age:       req.Age,
		Note:      req.Note,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

func (s *studentService) List(ctx context.Context, teacherID, keyword string) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.List(ctx, teacherID, strings.TrimSpace(keyword))
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, nil
}

func (s *studentService) GetByID(ctx context.Context, teacherID, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}
