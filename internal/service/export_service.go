package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 导出内容以内存缓冲返回，由 Handler 层设置下载响应头后写出
type ExportService interface {
	// ExportCourseStats 导出课程考勤统计为 Excel，返回内容与建议文件名
	ExportCourseStats(ctx context.Context, teacherID, courseID string) (*bytes.Buffer, string, error)
	// ExportSessionsICS 导出教师课表为 iCalendar
	ExportSessionsICS(ctx context.Context, teacherID string, query *dto.SessionRangeQuery) ([]byte, error)
}

type exportService struct {
	repo   *repository.Repository
	stats  StatsService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, stats StatsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, stats: stats, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCourseStats
// ═══════════════════════════════════════════════════════════
//
// 输出格式（单个 Sheet）：
//   - 第 1 行：课程名 + 计划/已建/已完成课次
//   - 第 2 行：表头 姓名 | 学号 | 出勤 | 迟到 | 请假 | 缺勤 | 合计
//   - 之后每位学生一行，按姓名排序

func (s *exportService) ExportCourseStats(ctx context.Context, teacherID, courseID string) (*bytes.Buffer, string, error) {
	stats, err := s.stats.CourseStats(ctx, teacherID, courseID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤统计"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"姓名", "学号", "出勤", "迟到", "请假", "缺勤", "合计"}
	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", colName(len(headers)-1), 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s（计划 %d 次 / 已建 %d 次 / 已完成 %d 次）",
		stats.CourseTitle, stats.TotalPlannedSessions, stats.SessionsCount, stats.CompletedSessionsCount))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for _, st := range stats.Students {
		studentNo := ""
		if st.StudentNo != nil {
			studentNo = *st.StudentNo
		}
		values := []interface{}{st.Name, studentNo, st.Present, st.Late, st.Leave, st.Absent, st.Total}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤统计_%s.xlsx", sanitizeFilename(stats.CourseTitle))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportSessionsICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportSessionsICS(ctx context.Context, teacherID string, query *dto.SessionRangeQuery) ([]byte, error) {
	from, to, err := parseRange(query)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.Session.ListByTeacher(ctx, teacherID, from, to)
	if err != nil {
		s.logger.Error("查询课次失败", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//attendance-api//sessions//ZH")

	now := time.Now().UTC()
	for i := range sessions {
		se := &sessions[i]
		evt := cal.AddEvent(se.SessionID + "@attendance-api")
		evt.SetDtStampTime(now)
		evt.SetStartAt(se.StartsAt.UTC())
		evt.SetEndAt(se.EndsAt.UTC())
		if se.Course != nil {
			evt.SetSummary(se.Course.Title)
		}
		if loc := se.EffectiveLocation(); loc != nil {
			evt.SetLocation(*loc)
		}
		evt.SetDescription("状态: " + se.Status)
	}

	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// sanitizeFilename 去除文件名中的路径分隔符等非法字符
func sanitizeFilename(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\"", "_", "*", "_", "?", "_", "<", "_", ">", "_", "|", "_")
	name = strings.TrimSpace(r.Replace(name))
	if name == "" {
		return "course"
	}
	return name
}
