package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
)

type Config struct {
	LateAfterHour   int
	LateAfterMinute int
	// Location decides which calendar day a check-in belongs to. Defaults to time.Local.
	Location *time.Location
}

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	fileService    file.FileService
	notifier       notification.Notifier
	config         Config
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	fileService file.FileService,
	notifier notification.Notifier,
	cfg Config,
) attendance.AttendanceService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		fileService:    fileService,
		notifier:       notifier,
		config:         cfg,
		now:            time.Now,
	}
}

func getClaimsFromContext(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *AttendanceServiceImpl) localNow() time.Time {
	return s.now().In(s.config.Location)
}

func (s *AttendanceServiceImpl) toResponse(ctx context.Context, a attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.NewAttendanceResponse(a)
	if a.PhotoPath != nil {
		if url, err := s.fileService.GetFileURL(ctx, *a.PhotoPath); err == nil {
			resp.PhotoURL = &url
		}
	}
	return resp
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	now := s.localNow()
	date := now.Format(attendance.DateLayout)

	// Fail before storing a photo that would be orphaned.
	if _, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date); err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	} else if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}

	var photoPath *string
	if req.HasPhoto() {
		path, err := s.fileService.UploadAttendancePhoto(ctx, emp.ID, date, req.Photo, req.PhotoFilename)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		photoPath = &path
	}

	created, err := s.attendanceRepo.Create(ctx, attendance.Attendance{
		EmployeeID:   emp.ID,
		EmpID:        emp.EmpID,
		EmployeeName: emp.Name,
		Date:         date,
		CheckIn:      now,
		PhotoPath:    photoPath,
		Status:       attendance.StatusAt(now, s.config.LateAfterHour, s.config.LateAfterMinute),
		Note:         req.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if photoPath != nil {
			if delErr := s.fileService.DeleteFile(ctx, *photoPath); delErr != nil {
				slog.Warn("failed to remove photo of rejected check-in", "path", *photoPath, "error", delErr)
			}
		}
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-in: %w", err)
	}

	s.notifier.NotifyManagers(ctx, notification.CreateNotificationRequest{
		Type:    notification.TypeAttendanceCheckedIn,
		Title:   "Check-in",
		Message: fmt.Sprintf("%s (%s) checked in at %s, %s", created.EmployeeName, created.EmpID, now.Format("15:04"), created.Status),
		Data: map[string]interface{}{
			"attendance_id": created.ID,
			"employee_id":   created.EmployeeID,
			"status":        string(created.Status),
		},
	})

	return s.toResponse(ctx, created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context) (attendance.AttendanceResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.localNow()
	today, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, claims.EmployeeID, now.Format(attendance.DateLayout))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if today.CheckOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	updated, err := s.attendanceRepo.SetCheckOut(ctx, today.ID, now)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	hours := 0.0
	if h := updated.WorkingHours(); h != nil {
		hours = *h
	}
	s.notifier.NotifyManagers(ctx, notification.CreateNotificationRequest{
		Type:    notification.TypeAttendanceCheckedOut,
		Title:   "Check-out",
		Message: fmt.Sprintf("%s (%s) checked out at %s after %.2fh", updated.EmployeeName, updated.EmpID, now.Format("15:04"), hours),
		Data: map[string]interface{}{
			"attendance_id": updated.ID,
			"employee_id":   updated.EmployeeID,
			"working_hours": hours,
		},
	})

	return s.toResponse(ctx, updated), nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context) (attendance.TodayResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	date := s.localNow().Format(attendance.DateLayout)
	resp := attendance.TodayResponse{Date: date}

	today, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, claims.EmployeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return resp, nil
		}
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	record := s.toResponse(ctx, today)
	resp.CheckedIn = true
	resp.CheckedOut = today.CheckOut != nil
	resp.Attendance = &record
	return resp, nil
}

// ListMine implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMine(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = &claims.EmployeeID
	return s.list(ctx, filter)
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !employee.Role(claims.Role).CanManage() {
		return attendance.ListAttendanceResponse{}, auth.ErrForbidden
	}
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		responses = append(responses, s.toResponse(ctx, a))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// getVisible loads a record the caller owns or, for managers, any record.
func (s *AttendanceServiceImpl) getVisible(ctx context.Context, id string) (attendance.Attendance, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return attendance.Attendance{}, err
	}

	a, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if a.EmployeeID != claims.EmployeeID && !employee.Role(claims.Role).CanManage() {
		return attendance.Attendance{}, auth.ErrForbidden
	}
	return a, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	a, err := s.getVisible(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.toResponse(ctx, a), nil
}

// OpenPhoto implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) OpenPhoto(ctx context.Context, id string) (io.ReadCloser, string, error) {
	a, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if a.PhotoPath == nil {
		return nil, "", attendance.ErrPhotoNotFound
	}

	rc, contentType, err := s.fileService.Open(ctx, *a.PhotoPath)
	if err != nil {
		// The daily cleanup removes old photos while the record stays.
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, "", attendance.ErrPhotoNotFound
		}
		return nil, "", fmt.Errorf("failed to open attendance photo: %w", err)
	}
	return rc, contentType, nil
}
