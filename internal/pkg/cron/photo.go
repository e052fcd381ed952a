package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
)

// AttendancePhotoPrefix is the storage prefix attendance photos are written under.
const AttendancePhotoPrefix = "attendance"

type PhotoJobs struct {
	storage   storage.FileStorage
	retention time.Duration
	hour      int
	minute    int
	now       func() time.Time
}

func NewPhotoJobs(fileStorage storage.FileStorage, retention time.Duration, hour, minute int) *PhotoJobs {
	return &PhotoJobs{
		storage:   fileStorage,
		retention: retention,
		hour:      hour,
		minute:    minute,
		now:       time.Now,
	}
}

func (j *PhotoJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("cleanup_attendance_photos", j.hour, j.minute, j.CleanupAttendancePhotos)
}

// CleanupAttendancePhotos deletes attendance photos last modified before the
// retention window. Attendance records keep their photo path; only the file goes.
func (j *PhotoJobs) CleanupAttendancePhotos(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	slog.Info("Cron: Starting attendance photo cleanup", "cutoff", cutoff)

	var deleted, failed int
	err := j.storage.Walk(ctx, AttendancePhotoPrefix, func(fi storage.FileInfo) error {
		if !fi.ModTime.Before(cutoff) {
			return nil
		}
		if err := j.storage.Delete(ctx, fi.Path); err != nil {
			failed++
			slog.Error("Cron: Failed to delete attendance photo", "path", fi.Path, "error", err)
			return nil
		}
		deleted++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan attendance photos: %w", err)
	}

	slog.Info("Cron: Attendance photo cleanup finished", "deleted", deleted, "failed", failed)
	return nil
}
