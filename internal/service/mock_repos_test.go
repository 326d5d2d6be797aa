package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Woterous/Management-System/internal/model"
	"github.com/Woterous/Management-System/internal/repository"
	pkgerrors "github.com/Woterous/Management-System/pkg/errors"
)

// ── 内存数据集 ──
// 各 Mock Repository 共享同一份数据，以便补建/统计等跨表查询

type memStore struct {
	teachers    map[string]*model.Teacher
	students    map[string]*model.Student
	courses     map[string]*model.Course
	enrollments map[string]map[string]bool // courseID → studentID 集合
	sessions    map[string]*model.Session
	attendance  map[string]*model.AttendanceRecord // sessionID|studentID → 记录

	applyErr error // 非空时 ApplyUpdates 返回该错误
}

func newMemStore() *memStore {
	return &memStore{
		teachers:    make(map[string]*model.Teacher),
		students:    make(map[string]*model.Student),
		courses:     make(map[string]*model.Course),
		enrollments: make(map[string]map[string]bool),
		sessions:    make(map[string]*model.Session),
		attendance:  make(map[string]*model.AttendanceRecord),
	}
}

func attendanceKey(sessionID, studentID string) string {
	return sessionID + "|" + studentID
}

// newMockRepository 以内存数据集组装 Repository（无 db，事务为 nil）
func newMockRepository(store *memStore) *repository.Repository {
	return &repository.Repository{
		Teacher:    &mockTeacherRepo{store},
		Student:    &mockStudentRepo{store},
		Course:     &mockCourseRepo{store},
		Enrollment: &mockEnrollmentRepo{store},
		Session:    &mockSessionRepo{store},
		Attendance: &mockAttendanceRepo{store},
		Stats:      &mockStatsRepo{store},
	}
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct{ s *memStore }

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	for _, existing := range m.s.teachers {
		if existing.Email == t.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.TeacherID == "" {
		t.TeacherID = uuid.New().String()
	}
	m.s.teachers[t.TeacherID] = t
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.s.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByEmail(_ context.Context, email string) (*model.Teacher, error) {
	for _, t := range m.s.teachers {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct{ s *memStore }

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	if st.StudentID == "" {
		st.StudentID = uuid.New().String()
	}
	st.CreatedAt = time.Now()
	m.s.students[st.StudentID] = st
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, teacherID, id string) (*model.Student, error) {
	if st, ok := m.s.students[id]; ok && st.TeacherID == teacherID {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, teacherID, keyword string) ([]model.Student, error) {
	var result []model.Student
	for _, st := range m.s.students {
		if st.TeacherID != teacherID {
			continue
		}
		if keyword != "" {
			no := ""
			if st.StudentNo != nil {
				no = *st.StudentNo
			}
			kw := strings.ToLower(keyword)
			if !strings.Contains(strings.ToLower(st.Name), kw) && !strings.Contains(strings.ToLower(no), kw) {
				continue
			}
		}
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		c.CourseID = uuid.New().String()
	}
	m.s.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, teacherID, id string) (*model.Course, error) {
	if c, ok := m.s.courses[id]; ok && c.TeacherID == teacherID {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, teacherID, keyword string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.s.courses {
		if c.TeacherID != teacherID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(keyword)) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	cp := *c
	m.s.courses[c.CourseID] = &cp
	return nil
}

// Delete 模拟外键级联
func (m *mockCourseRepo) Delete(_ context.Context, teacherID, id string) (int64, error) {
	c, ok := m.s.courses[id]
	if !ok || c.TeacherID != teacherID {
		return 0, nil
	}
	delete(m.s.courses, id)
	delete(m.s.enrollments, id)
	for sid, se := range m.s.sessions {
		if se.CourseID != id {
			continue
		}
		delete(m.s.sessions, sid)
		for key, rec := range m.s.attendance {
			if rec.SessionID == sid {
				delete(m.s.attendance, key)
			}
		}
	}
	return 1, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *memStore }

func (m *mockEnrollmentRepo) Add(_ context.Context, courseID, studentID string) error {
	if m.s.enrollments[courseID] == nil {
		m.s.enrollments[courseID] = make(map[string]bool)
	}
	m.s.enrollments[courseID][studentID] = true
	return nil
}

func (m *mockEnrollmentRepo) Remove(_ context.Context, courseID, studentID string) (int64, error) {
	if !m.s.enrollments[courseID][studentID] {
		return 0, nil
	}
	delete(m.s.enrollments[courseID], studentID)
	return 1, nil
}

func (m *mockEnrollmentRepo) ListStudents(_ context.Context, courseID string) ([]model.Student, error) {
	var result []model.Student
	for sid := range m.s.enrollments[courseID] {
		if st, ok := m.s.students[sid]; ok {
			result = append(result, *st)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct{ s *memStore }

// Create 模拟 (course_id, starts_at) 唯一约束
func (m *mockSessionRepo) Create(_ context.Context, se *model.Session) error {
	for _, existing := range m.s.sessions {
		if existing.CourseID == se.CourseID && existing.StartsAt.Equal(se.StartsAt) {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if se.SessionID == "" {
		se.SessionID = uuid.New().String()
	}
	stored := *se
	stored.Course = nil
	m.s.sessions[se.SessionID] = &stored
	return nil
}

func (m *mockSessionRepo) withCourse(se *model.Session) model.Session {
	cp := *se
	if c, ok := m.s.courses[se.CourseID]; ok {
		course := *c
		cp.Course = &course
	}
	return cp
}

func (m *mockSessionRepo) GetOwned(_ context.Context, teacherID, sessionID string) (*model.Session, error) {
	se, ok := m.s.sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withCourse(se)
	if !cp.OwnedBy(teacherID) {
		return nil, gorm.ErrRecordNotFound
	}
	return &cp, nil
}

func (m *mockSessionRepo) filter(keep func(*model.Session) bool, from, to *time.Time) []model.Session {
	var result []model.Session
	for _, se := range m.s.sessions {
		if !keep(se) {
			continue
		}
		if from != nil && se.EndsAt.Before(*from) {
			continue
		}
		if to != nil && se.StartsAt.After(*to) {
			continue
		}
		result = append(result, m.withCourse(se))
	}
	return result
}

func (m *mockSessionRepo) ListByTeacher(_ context.Context, teacherID string, from, to *time.Time) ([]model.Session, error) {
	result := m.filter(func(se *model.Session) bool {
		c, ok := m.s.courses[se.CourseID]
		return ok && c.TeacherID == teacherID
	}, from, to)
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, nil
}

func (m *mockSessionRepo) ListByCourse(_ context.Context, courseID string, from, to *time.Time) ([]model.Session, error) {
	result := m.filter(func(se *model.Session) bool { return se.CourseID == courseID }, from, to)
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.After(result[j].StartsAt) })
	return result, nil
}

func (m *mockSessionRepo) UpdateStatus(_ context.Context, sessionID, status string) error {
	if se, ok := m.s.sessions[sessionID]; ok {
		se.Status = status
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ s *memStore }

func (m *mockAttendanceRepo) SeedMissing(_ context.Context, sessionID, courseID, status string) (int64, error) {
	var seeded int64
	for sid := range m.s.enrollments[courseID] {
		key := attendanceKey(sessionID, sid)
		if _, exists := m.s.attendance[key]; exists {
			continue
		}
		m.s.attendance[key] = &model.AttendanceRecord{
			AttendanceID: uuid.New().String(),
			SessionID:    sessionID,
			StudentID:    sid,
			Status:       status,
			MarkedAt:     time.Now(),
		}
		seeded++
	}
	return seeded, nil
}

func (m *mockAttendanceRepo) ApplyUpdates(_ context.Context, sessionID string, updates []model.AttendanceUpdate) (int64, error) {
	if m.s.applyErr != nil {
		return 0, m.s.applyErr
	}
	var updated int64
	for _, u := range updates {
		rec, ok := m.s.attendance[attendanceKey(sessionID, u.StudentID)]
		if !ok {
			continue
		}
		rec.Status = u.Status
		rec.Note = u.Note
		rec.MarkedAt = time.Now()
		updated++
	}
	return updated, nil
}

func (m *mockAttendanceRepo) ListForSession(_ context.Context, sessionID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.s.attendance {
		if rec.SessionID != sessionID {
			continue
		}
		cp := *rec
		if st, ok := m.s.students[rec.StudentID]; ok {
			student := *st
			cp.Student = &student
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return studentName(result[i]) < studentName(result[j]) })
	return result, nil
}

func studentName(rec model.AttendanceRecord) string {
	if rec.Student == nil {
		return ""
	}
	return rec.Student.Name
}

// ── Mock StatsRepository ──

type mockStatsRepo struct{ s *memStore }

func (m *mockStatsRepo) CourseRollup(_ context.Context, courseID string) ([]model.StudentAttendanceRollup, error) {
	var rows []model.StudentAttendanceRollup
	for sid := range m.s.enrollments[courseID] {
		st, ok := m.s.students[sid]
		if !ok {
			continue
		}
		row := model.StudentAttendanceRollup{StudentID: sid, Name: st.Name, StudentNo: st.StudentNo}
		for _, rec := range m.s.attendance {
			se, ok := m.s.sessions[rec.SessionID]
			if ok && se.CourseID == courseID && rec.StudentID == sid {
				row.Add(rec.Status)
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (m *mockStatsRepo) SessionCounts(_ context.Context, courseID string) (int64, int64, error) {
	var total, completed int64
	for _, se := range m.s.sessions {
		if se.CourseID != courseID {
			continue
		}
		total++
		if se.Status == model.SessionStatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (m *mockStatsRepo) StudentEntries(_ context.Context, courseID, studentID string) ([]model.StudentAttendanceEntry, error) {
	var entries []model.StudentAttendanceEntry
	for _, rec := range m.s.attendance {
		se, ok := m.s.sessions[rec.SessionID]
		if !ok || se.CourseID != courseID || rec.StudentID != studentID {
			continue
		}
		entries = append(entries, model.StudentAttendanceEntry{
			SessionID: rec.SessionID,
			Status:    rec.Status,
			Note:      rec.Note,
			MarkedAt:  rec.MarkedAt,
			StartsAt:  se.StartsAt,
			EndsAt:    se.EndsAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartsAt.Before(entries[j].StartsAt) })
	return entries, nil
}

// ── 测试数据构造 ──

func seedTeacher(s *memStore, email string) *model.Teacher {
	t := &model.Teacher{TeacherID: uuid.New().String(), Email: email, Name: email}
	s.teachers[t.TeacherID] = t
	return t
}

func seedCourse(s *memStore, teacherID, title string, location *string) *model.Course {
	c := &model.Course{CourseID: uuid.New().String(), TeacherID: teacherID, Title: title, Location: location, TotalPlannedSessions: 10}
	s.courses[c.CourseID] = c
	return c
}

func seedStudent(s *memStore, teacherID, name string, enrollIn ...string) *model.Student {
	st := &model.Student{StudentID: uuid.New().String(), TeacherID: teacherID, Name: name}
	s.students[st.StudentID] = st
	for _, courseID := range enrollIn {
		if s.enrollments[courseID] == nil {
			s.enrollments[courseID] = make(map[string]bool)
		}
		s.enrollments[courseID][st.StudentID] = true
	}
	return st
}

func strPtr(s string) *string { return &s }
