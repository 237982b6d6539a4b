package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/pkg/jobs"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type fakeAcademies struct {
	academy *models.Academy
	today   time.Time
}

func (f *fakeAcademies) Get(ctx context.Context, academyID string) (*models.Academy, error) {
	if f.academy == nil || f.academy.ID != academyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "academia no encontrada")
	}
	cp := *f.academy
	return &cp, nil
}

func (f *fakeAcademies) Today(ctx context.Context, academyID string) (time.Time, error) {
	return f.today, nil
}

func (f *fakeAcademies) Logo(academy *models.Academy) []byte { return nil }

func (f *fakeAcademies) BySlug(ctx context.Context, slug string) (*models.Academy, error) {
	if f.academy == nil || f.academy.Slug != slug {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "academia no encontrada")
	}
	cp := *f.academy
	return &cp, nil
}

type fakeCourses struct {
	courses map[string]models.CourseDetail
}

func (f *fakeCourses) FindByID(ctx context.Context, academyID, id string) (*models.CourseDetail, error) {
	c, ok := f.courses[id]
	if !ok || c.AcademyID != academyID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (f *fakeCourses) ListActive(ctx context.Context, academyID string) ([]models.CourseDetail, error) {
	var out []models.CourseDetail
	for _, c := range f.courses {
		if c.AcademyID == academyID && c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeStudents struct {
	students map[string]models.Student
}

func (f *fakeStudents) FindByID(ctx context.Context, academyID, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok || s.AcademyID != academyID {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

// fakeStore keeps enrollments, payments and attendance in memory with row-level locking.
type fakeStore struct {
	mu          sync.Mutex
	seq         int
	enrollments map[string]*models.Enrollment
	payments    []models.Payment
	attendance  map[string]models.Attendance
	failUpsert  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{enrollments: map[string]*models.Enrollment{}, attendance: map[string]models.Attendance{}}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) Create(ctx context.Context, e *models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = f.nextID("enr")
	}
	cp := *e
	f.enrollments[e.ID] = &cp
	return nil
}

func (f *fakeStore) detail(e *models.Enrollment) *models.EnrollmentDetail {
	total := decimal.Zero
	for _, p := range f.payments {
		if p.EnrollmentID == e.ID {
			total = total.Add(p.Amount)
		}
	}
	return &models.EnrollmentDetail{Enrollment: *e, StudentName: "Ana Quispe", StudentDNI: "12345678", CourseName: "Guitarra", TotalPaid: total}
}

func (f *fakeStore) FindByID(ctx context.Context, academyID, id string) (*models.EnrollmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok || e.AcademyID != academyID {
		return nil, sql.ErrNoRows
	}
	return f.detail(e), nil
}

func (f *fakeStore) FindPublic(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f.detail(e), nil
}

func (f *fakeStore) List(ctx context.Context, academyID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if e.AcademyID == academyID {
			out = append(out, *f.detail(e))
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) SetActive(ctx context.Context, academyID, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok || e.AcademyID != academyID {
		return sql.ErrNoRows
	}
	e.IsActive = active
	return nil
}

func (f *fakeStore) UpdateTotalClasses(ctx context.Context, academyID, id string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok || e.AcademyID != academyID {
		return sql.ErrNoRows
	}
	e.TotalClasses = total
	e.IsPersonalized = true
	return nil
}

// fakePayments is the payment repository view over fakeStore.
type fakePayments struct{ *fakeStore }

func (f fakePayments) Create(ctx context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.enrollments[p.EnrollmentID]; !ok {
		return repository.ErrForeignKeyViolation
	}
	p.ID = f.nextID("pay")
	f.payments = append(f.payments, *p)
	return nil
}

func (f fakePayments) ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.AcademyID == academyID && p.EnrollmentID == enrollmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePayments) FindByID(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ID == id && p.EnrollmentID == enrollmentID && p.AcademyID == academyID {
			cp := p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakePayments) Update(ctx context.Context, academyID, enrollmentID, id string, patch models.PaymentPatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.payments {
		if p.ID == id && p.EnrollmentID == enrollmentID && p.AcademyID == academyID {
			if patch.Amount != nil {
				f.payments[i].Amount = *patch.Amount
			}
			if patch.Method != nil {
				f.payments[i].Method = *patch.Method
			}
			if patch.Code != nil {
				f.payments[i].Code = nil
				if *patch.Code != "" {
					code := *patch.Code
					f.payments[i].Code = &code
				}
			}
			return true, nil
		}
	}
	return false, nil
}

func (f fakePayments) Delete(ctx context.Context, academyID, enrollmentID, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.payments {
		if p.ID == id && p.EnrollmentID == enrollmentID && p.AcademyID == academyID {
			f.payments = append(f.payments[:i], f.payments[i+1:]...)
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakePayments) SetReceipt(ctx context.Context, academyID, id, receiptPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.payments {
		if p.ID == id && p.AcademyID == academyID {
			path := receiptPath
			f.payments[i].ReceiptPath = &path
			f.payments[i].ThumbnailPath = nil
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f fakePayments) SetThumbnail(ctx context.Context, academyID, receiptPath, thumbnailPath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.payments {
		if p.AcademyID == academyID && p.ReceiptPath != nil && *p.ReceiptPath == receiptPath {
			path := thumbnailPath
			f.payments[i].ThumbnailPath = &path
			return true, nil
		}
	}
	return false, nil
}

// fakeAttendance mirrors the transactional contract of AttendanceRepository.Set.
type fakeAttendance struct{ *fakeStore }

func attendanceKey(enrollmentID string, day time.Time) string {
	return enrollmentID + "|" + day.Format(DateLayout)
}

func (f fakeAttendance) Set(ctx context.Context, academyID string, change models.AttendanceChange, delta repository.DeltaFunc) (*models.AttendanceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[change.EnrollmentID]
	if !ok || e.AcademyID != academyID {
		return nil, sql.ErrNoRows
	}
	key := attendanceKey(change.EnrollmentID, change.Day)
	prev, exists := f.attendance[key]
	next := prev
	if !exists {
		next = models.Attendance{ID: f.nextID("att"), AcademyID: academyID, EnrollmentID: change.EnrollmentID, Day: change.Day}
	}
	if change.OwnCheck != nil {
		next.OwnCheck = *change.OwnCheck
	}
	if change.AdminCheck != nil {
		next.AdminCheck = *change.AdminCheck
	}
	if change.TeacherID != nil {
		next.TeacherID = change.TeacherID
	}
	d := delta(prev.AdminCheck, next.AdminCheck)
	count := e.ClassCount + d
	if count < 0 {
		count = 0
	}
	if f.failUpsert {
		return nil, fmt.Errorf("upsert attendance: connection reset")
	}
	e.ClassCount = count
	f.attendance[key] = next
	return &models.AttendanceResult{Attendance: next, Delta: d, ClassCount: count}, nil
}

func (f fakeAttendance) ListByEnrollment(ctx context.Context, academyID, enrollmentID string) ([]models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attendance
	for _, a := range f.attendance {
		if a.EnrollmentID == enrollmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeAttendance) Roster(ctx context.Context, academyID, courseID string, day time.Time) ([]models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RosterEntry
	for _, e := range f.enrollments {
		if e.CourseID != courseID || !e.IsActive {
			continue
		}
		entry := models.RosterEntry{
			EnrollmentID:     e.ID,
			StudentID:        e.StudentID,
			ClassCount:       e.ClassCount,
			TotalClasses:     e.TotalClasses,
			RemainingClasses: e.TotalClasses - e.ClassCount,
		}
		if a, ok := f.attendance[attendanceKey(e.ID, day)]; ok {
			id := a.ID
			entry.AttendanceID = &id
			entry.OwnCheck = a.OwnCheck
			entry.AdminCheck = a.AdminCheck
		}
		out = append(out, entry)
	}
	return out, nil
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// memoryObjects is an in-memory object store.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Save(key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (m *memoryObjects) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (m *memoryObjects) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
