//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Woterous/Management-System/internal/model"
	"github.com/Woterous/Management-System/internal/repository"
	"github.com/Woterous/Management-System/pkg/database"
	pkgerrors "github.com/Woterous/Management-System/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=attendance_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

type fixture struct {
	teacher  *model.Teacher
	course   *model.Course
	students []*model.Student
}

// setupFixture 创建教师、课程与已选课的学生，返回清理函数
// 删除教师会级联清理其余数据
func setupFixture(t *testing.T, names ...string) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	suffix := time.Now().UnixNano()

	teacher := &model.Teacher{
		Email:        fmt.Sprintf("t%d@example.com", suffix),
		PasswordHash: "$2a$10$placeholder",
		Name:         "测试教师",
	}
	if err := repo.Teacher.Create(ctx, teacher); err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	loc := "Room 101"
	course := &model.Course{TeacherID: teacher.TeacherID, Title: "Algebra", Location: &loc, TotalPlannedSessions: 10}
	if err := repo.Course.Create(ctx, course); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	f := &fixture{teacher: teacher, course: course}
	for _, name := range names {
		st := &model.Student{TeacherID: teacher.TeacherID, Name: name}
		if err := repo.Student.Create(ctx, st); err != nil {
			t.Fatalf("创建学生失败: %v", err)
		}
		if err := repo.Enrollment.Add(ctx, course.CourseID, st.StudentID); err != nil {
			t.Fatalf("选课失败: %v", err)
		}
		f.students = append(f.students, st)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM attendance_records WHERE session_id IN (SELECT session_id FROM sessions WHERE course_id = ?)", course.CourseID)
		testDB.Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Teacher{})
	}
	return f, cleanup
}

func createSession(t *testing.T, repo *repository.Repository, courseID string, startsAt time.Time) *model.Session {
	t.Helper()
	s := &model.Session{
		CourseID: courseID,
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(90 * time.Minute),
		Status:   model.SessionStatusScheduled,
	}
	if err := repo.Session.Create(context.Background(), s); err != nil {
		t.Fatalf("创建课次失败: %v", err)
	}
	return s
}

// ═══════════════════════════════════════════════════════════
// Test: Session
// ═══════════════════════════════════════════════════════════

func TestSession_DuplicateStartConflict(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	createSession(t, repo, f.course.CourseID, start)

	dup := &model.Session{CourseID: f.course.CourseID, StartsAt: start, EndsAt: start.Add(time.Hour), Status: model.SessionStatusScheduled}
	err := repo.Session.Create(context.Background(), dup)
	if !pkgerrors.IsDuplicateKey(err) {
		t.Fatalf("期望唯一约束冲突，实际: %v", err)
	}
}

func TestSession_GetOwned_OtherTeacher(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	other, cleanupOther := setupFixture(t)
	defer cleanupOther()
	repo := repository.NewRepository(testDB)

	s := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	got, err := repo.Session.GetOwned(context.Background(), f.teacher.TeacherID, s.SessionID)
	if err != nil {
		t.Fatalf("本人查询课次失败: %v", err)
	}
	if got.Course == nil || got.Course.Title != "Algebra" {
		t.Errorf("期望预加载课程，实际: %+v", got.Course)
	}
	if loc := got.EffectiveLocation(); loc == nil || *loc != "Room 101" {
		t.Errorf("期望地点回退到课程地点")
	}

	_, err = repo.Session.GetOwned(context.Background(), other.teacher.TeacherID, s.SessionID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望其他教师查询返回 ErrRecordNotFound，实际: %v", err)
	}
}

func TestSession_ListByTeacher_Range(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	mon := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	createSession(t, repo, f.course.CourseID, mon.AddDate(0, 0, 2))
	createSession(t, repo, f.course.CourseID, mon)
	createSession(t, repo, f.course.CourseID, mon.AddDate(0, 0, 7))

	from, to := mon, mon.AddDate(0, 0, 6)
	list, err := repo.Session.ListByTeacher(ctx, f.teacher.TeacherID, &from, &to)
	if err != nil {
		t.Fatalf("ListByTeacher 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 个课次，实际 %d", len(list))
	}
	if !list[0].StartsAt.Before(list[1].StartsAt) {
		t.Error("期望按开始时间升序")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Attendance
// ═══════════════════════════════════════════════════════════

func TestAttendance_SeedIdempotent(t *testing.T) {
	f, cleanup := setupFixture(t, "Bo", "Ana")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	n, err := repo.Attendance.SeedMissing(ctx, s.SessionID, f.course.CourseID, model.AttendanceStatusPresent)
	if err != nil {
		t.Fatalf("SeedMissing 失败: %v", err)
	}
	if n != 2 {
		t.Fatalf("期望补建 2 条，实际 %d", n)
	}

	ana := f.students[1].StudentID
	note := "bus"
	updated, err := repo.Attendance.ApplyUpdates(ctx, s.SessionID, []model.AttendanceUpdate{
		{StudentID: ana, Status: model.AttendanceStatusLate, Note: &note},
	})
	if err != nil || updated != 1 {
		t.Fatalf("ApplyUpdates 期望更新 1 条，实际 %d, err=%v", updated, err)
	}

	n, err = repo.Attendance.SeedMissing(ctx, s.SessionID, f.course.CourseID, model.AttendanceStatusPresent)
	if err != nil {
		t.Fatalf("重复 SeedMissing 失败: %v", err)
	}
	if n != 0 {
		t.Errorf("重复补建应为 0 条，实际 %d", n)
	}

	records, err := repo.Attendance.ListForSession(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("ListForSession 失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(records))
	}
	if records[0].Student == nil || records[0].Student.Name != "Ana" {
		t.Errorf("期望按姓名排序且 Ana 在前")
	}
	if records[0].Status != model.AttendanceStatusLate {
		t.Errorf("重复开课不应覆盖已编辑状态，实际 %s", records[0].Status)
	}
}

func TestAttendance_UpdateUnseededIsNoop(t *testing.T) {
	f, cleanup := setupFixture(t, "Ana")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	updated, err := repo.Attendance.ApplyUpdates(ctx, s.SessionID, []model.AttendanceUpdate{
		{StudentID: f.students[0].StudentID, Status: model.AttendanceStatusAbsent},
	})
	if err != nil {
		t.Fatalf("ApplyUpdates 失败: %v", err)
	}
	if updated != 0 {
		t.Errorf("未补建时更新应命中 0 条，实际 %d", updated)
	}

	records, _ := repo.Attendance.ListForSession(ctx, s.SessionID)
	if len(records) != 0 {
		t.Errorf("更新不应创建记录，实际 %d 条", len(records))
	}
}

func TestAttendance_TransactionRollback(t *testing.T) {
	f, cleanup := setupFixture(t, "Ana")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	if _, err := repo.Attendance.SeedMissing(ctx, s.SessionID, f.course.CourseID, model.AttendanceStatusPresent); err != nil {
		t.Fatalf("SeedMissing 失败: %v", err)
	}

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)
	if _, err := txRepo.Attendance.ApplyUpdates(ctx, s.SessionID, []model.AttendanceUpdate{
		{StudentID: f.students[0].StudentID, Status: model.AttendanceStatusAbsent},
	}); err != nil {
		tx.Rollback()
		t.Fatalf("事务内更新失败: %v", err)
	}
	tx.Rollback()

	records, _ := repo.Attendance.ListForSession(ctx, s.SessionID)
	if len(records) != 1 || records[0].Status != model.AttendanceStatusPresent {
		t.Errorf("回滚后状态应保持 present")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Stats & Cascade
// ═══════════════════════════════════════════════════════════

func TestStats_CourseRollup(t *testing.T) {
	f, cleanup := setupFixture(t, "Ana", "Bo")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s1 := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s2 := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC))
	for _, s := range []*model.Session{s1, s2} {
		if _, err := repo.Attendance.SeedMissing(ctx, s.SessionID, f.course.CourseID, model.AttendanceStatusPresent); err != nil {
			t.Fatalf("SeedMissing 失败: %v", err)
		}
	}
	if _, err := repo.Attendance.ApplyUpdates(ctx, s2.SessionID, []model.AttendanceUpdate{
		{StudentID: f.students[1].StudentID, Status: model.AttendanceStatusAbsent},
	}); err != nil {
		t.Fatalf("ApplyUpdates 失败: %v", err)
	}
	if err := repo.Session.UpdateStatus(ctx, s1.SessionID, model.SessionStatusCompleted); err != nil {
		t.Fatalf("UpdateStatus 失败: %v", err)
	}

	rows, err := repo.Stats.CourseRollup(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("CourseRollup 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(rows))
	}
	if rows[1].Name != "Bo" || rows[1].Present != 1 || rows[1].Absent != 1 {
		t.Errorf("Bo 统计不符: %+v", rows[1])
	}
	if rows[0].Total() != 2 {
		t.Errorf("Ana 总计应为 2，实际 %d", rows[0].Total())
	}

	total, completed, err := repo.Stats.SessionCounts(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("SessionCounts 失败: %v", err)
	}
	if total != 2 || completed != 1 {
		t.Errorf("期望 total=2 completed=1，实际 %d/%d", total, completed)
	}

	entries, err := repo.Stats.StudentEntries(ctx, f.course.CourseID, f.students[1].StudentID)
	if err != nil {
		t.Fatalf("StudentEntries 失败: %v", err)
	}
	if len(entries) != 2 || entries[1].Status != model.AttendanceStatusAbsent {
		t.Errorf("明细不符: %+v", entries)
	}
}

func TestCourse_DeleteCascades(t *testing.T) {
	f, cleanup := setupFixture(t, "Ana")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := createSession(t, repo, f.course.CourseID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	if _, err := repo.Attendance.SeedMissing(ctx, s.SessionID, f.course.CourseID, model.AttendanceStatusPresent); err != nil {
		t.Fatalf("SeedMissing 失败: %v", err)
	}

	n, err := repo.Course.Delete(ctx, f.teacher.TeacherID, f.course.CourseID)
	if err != nil || n != 1 {
		t.Fatalf("删除课程失败: n=%d err=%v", n, err)
	}

	var count int64
	testDB.Model(&model.AttendanceRecord{}).Where("session_id = ?", s.SessionID).Count(&count)
	if count != 0 {
		t.Errorf("期望考勤记录被级联删除，剩余 %d", count)
	}
	testDB.Model(&model.CourseStudent{}).Where("course_id = ?", f.course.CourseID).Count(&count)
	if count != 0 {
		t.Errorf("期望选课关系被级联删除，剩余 %d", count)
	}
}

func TestEnrollment_AddTwiceIsNoop(t *testing.T) {
	f, cleanup := setupFixture(t, "Ana")
	defer cleanup()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Enrollment.Add(ctx, f.course.CourseID, f.students[0].StudentID); err != nil {
		t.Fatalf("重复选课应静默成功: %v", err)
	}
	students, err := repo.Enrollment.ListStudents(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("ListStudents 失败: %v", err)
	}
	if len(students) != 1 {
		t.Errorf("期望名单 1 人，实际 %d", len(students))
	}
}
