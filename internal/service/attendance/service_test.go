package attendance

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	managers []notification.CreateNotificationRequest
	direct   map[string][]notification.CreateNotificationRequest
}

func (n *recordingNotifier) NotifyEmployee(ctx context.Context, employeeID string, req notification.CreateNotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.direct == nil {
		n.direct = make(map[string][]notification.CreateNotificationRequest)
	}
	n.direct[employeeID] = append(n.direct[employeeID], req)
}

func (n *recordingNotifier) NotifyManagers(ctx context.Context, req notification.CreateNotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.managers = append(n.managers, req)
}

type fixture struct {
	svc       *AttendanceServiceImpl
	employees *memory.EmployeeRepository
	records   *memory.AttendanceRepository
	storage   *storage.LocalStorage
	notifier  *recordingNotifier
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:2000/uploads")
	require.NoError(t, err)

	f := &fixture{
		employees: memory.NewEmployeeRepository(),
		records:   memory.NewAttendanceRepository(),
		storage:   local,
		notifier:  &recordingNotifier{},
		clock:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAttendanceService(f.records, f.employees, file.NewFileService(local), f.notifier, Config{
		LateAfterHour:   9,
		LateAfterMinute: 30,
		Location:        time.UTC,
	}).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) login(t *testing.T, empID string, role employee.Role) context.Context {
	t.Helper()
	e, err := f.employees.Create(context.Background(), employee.Employee{
		EmpID:    empID,
		Name:     "Name " + empID,
		Email:    empID + "@example.com",
		Role:     role,
		IsActive: true,
	})
	require.NoError(t, err)
	return jwt.ContextWithClaims(context.Background(), jwt.Claims{EmployeeID: e.ID, EmpID: e.EmpID, Role: string(role)})
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))))
	return buf.Bytes()
}

func TestCheckIn_OnTimeAndLate(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)
	bob := f.login(t, "EMP-002", employee.RoleEmployee)

	f.clock = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	onTime, err := f.svc.CheckIn(alice, attendance.CheckInRequest{Note: " on site "})
	require.NoError(t, err)
	assert.Equal(t, "present", onTime.Status)
	assert.Equal(t, "2024-05-01", onTime.Date)
	assert.Equal(t, "on site", onTime.Note)
	assert.False(t, onTime.HasPhoto)

	f.clock = time.Date(2024, 5, 1, 9, 31, 0, 0, time.UTC)
	late, err := f.svc.CheckIn(bob, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "late", late.Status)

	require.Len(t, f.notifier.managers, 2)
	assert.Equal(t, notification.TypeAttendanceCheckedIn, f.notifier.managers[0].Type)
	assert.Equal(t, onTime.ID, f.notifier.managers[0].Data["attendance_id"])
}

func TestCheckIn_OncePerDay(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)

	_, err := f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(alice, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	f.clock = f.clock.Add(24 * time.Hour)
	next, err := f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", next.Date)
}

func TestCheckIn_WithPhoto(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)
	photo := smallPNG(t)

	resp, err := f.svc.CheckIn(alice, attendance.CheckInRequest{
		Photo:         bytes.NewReader(photo),
		PhotoFilename: "me.png",
		PhotoSize:     int64(len(photo)),
	})
	require.NoError(t, err)
	assert.True(t, resp.HasPhoto)
	require.NotNil(t, resp.PhotoURL)
	assert.Contains(t, *resp.PhotoURL, "http://localhost:2000/uploads/attendance/2024-05-01/")

	rc, contentType, err := f.svc.OpenPhoto(alice, resp.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", contentType)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestCheckIn_InvalidPhotoType(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)

	_, err := f.svc.CheckIn(alice, attendance.CheckInRequest{
		Photo:         bytes.NewReader([]byte("gif89a")),
		PhotoFilename: "me.gif",
	})
	assert.Error(t, err)
	assert.Empty(t, f.notifier.managers)
}

func TestCheckIn_InactiveEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := f.login(t, "EMP-001", employee.RoleEmployee)
	claims, err := jwt.ClaimsFromContext(ctx)
	require.NoError(t, err)

	e, err := f.employees.GetByID(context.Background(), claims.EmployeeID)
	require.NoError(t, err)
	e.IsActive = false
	require.NoError(t, f.employees.Update(context.Background(), e))

	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestCheckIn_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestCheckOut(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)

	_, err := f.svc.CheckOut(alice)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)

	f.clock = f.clock.Add(8*time.Hour + 15*time.Minute)
	out, err := f.svc.CheckOut(alice)
	require.NoError(t, err)
	require.NotNil(t, out.CheckOut)
	require.NotNil(t, out.WorkingHours)
	assert.Equal(t, 8.25, *out.WorkingHours)

	_, err = f.svc.CheckOut(alice)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	require.Len(t, f.notifier.managers, 2)
	assert.Equal(t, notification.TypeAttendanceCheckedOut, f.notifier.managers[1].Type)
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)

	before, err := f.svc.Today(alice)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", before.Date)
	assert.False(t, before.CheckedIn)
	assert.Nil(t, before.Attendance)

	_, err = f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)

	after, err := f.svc.Today(alice)
	require.NoError(t, err)
	assert.True(t, after.CheckedIn)
	assert.False(t, after.CheckedOut)
	require.NotNil(t, after.Attendance)
}

func TestListAndGet_Visibility(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)
	bob := f.login(t, "EMP-002", employee.RoleEmployee)
	admin := f.login(t, "ADM-001", employee.RoleAdmin)

	aliceRecord, err := f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(bob, attendance.CheckInRequest{})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(alice, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Equal(t, aliceRecord.ID, mine.Attendances[0].ID)

	_, err = f.svc.List(alice, attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	all, err := f.svc.List(admin, attendance.AttendanceFilter{Date: ptr("2024-05-01")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, 1, all.TotalPages)

	_, err = f.svc.Get(bob, aliceRecord.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	got, err := f.svc.Get(admin, aliceRecord.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", got.EmpID)

	_, err = f.svc.Get(admin, "65a1f0c2e4b0a1b2c3d4e5f6")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestOpenPhoto_Missing(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "EMP-001", employee.RoleEmployee)
	photo := smallPNG(t)

	noPhoto, err := f.svc.CheckIn(alice, attendance.CheckInRequest{})
	require.NoError(t, err)
	_, _, err = f.svc.OpenPhoto(alice, noPhoto.ID)
	assert.ErrorIs(t, err, attendance.ErrPhotoNotFound)

	f.clock = f.clock.Add(24 * time.Hour)
	withPhoto, err := f.svc.CheckIn(alice, attendance.CheckInRequest{Photo: bytes.NewReader(photo), PhotoFilename: "a.png"})
	require.NoError(t, err)

	stored, err := f.records.GetByID(context.Background(), withPhoto.ID)
	require.NoError(t, err)
	require.NoError(t, f.storage.Delete(context.Background(), *stored.PhotoPath))

	_, _, err = f.svc.OpenPhoto(alice, withPhoto.ID)
	assert.ErrorIs(t, err, attendance.ErrPhotoNotFound)
}

func ptr[T any](v T) *T { return &v }
