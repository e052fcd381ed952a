package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePhoto(t *testing.T, s *storage.LocalStorage, path string, age time.Duration, now time.Time) {
	t.Helper()
	_, err := s.Upload(context.Background(), strings.NewReader("jpeg"), path, "image/jpeg")
	require.NoError(t, err)
	mod := now.Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(s.BasePath(), filepath.FromSlash(path)), mod, mod))
}

func TestCleanupAttendancePhotos_DeletesOnlyExpired(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 2, 0, 0, 0, time.Local)
	writePhoto(t, s, "attendance/2024-03-01/old.jpg", 45*24*time.Hour, now)
	writePhoto(t, s, "attendance/2024-03-31/edge.jpg", 30*24*time.Hour-time.Minute, now)
	writePhoto(t, s, "attendance/2024-04-30/new.jpg", 24*time.Hour, now)
	writePhoto(t, s, "files/contract.pdf", 90*24*time.Hour, now)

	jobs := NewPhotoJobs(s, 30*24*time.Hour, 2, 0)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.CleanupAttendancePhotos(context.Background()))

	ctx := context.Background()
	exists := func(p string) bool {
		ok, err := s.Exists(ctx, p)
		require.NoError(t, err)
		return ok
	}
	assert.False(t, exists("attendance/2024-03-01/old.jpg"))
	assert.True(t, exists("attendance/2024-03-31/edge.jpg"))
	assert.True(t, exists("attendance/2024-04-30/new.jpg"))
	assert.True(t, exists("files/contract.pdf"), "only attendance photos are purged")
}

func TestCleanupAttendancePhotos_EmptyDirectory(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	jobs := NewPhotoJobs(s, 24*time.Hour, 2, 0)
	assert.NoError(t, jobs.CleanupAttendancePhotos(context.Background()))
}

type flakyStorage struct {
	storage.FileStorage
	files   []storage.FileInfo
	deleted []string
	walkErr error
}

func (f *flakyStorage) Walk(ctx context.Context, prefix string, fn func(storage.FileInfo) error) error {
	if f.walkErr != nil {
		return f.walkErr
	}
	for _, fi := range f.files {
		if err := fn(fi); err != nil {
			return err
		}
	}
	return nil
}

func (f *flakyStorage) Delete(ctx context.Context, path string) error {
	if strings.Contains(path, "locked") {
		return errors.New("permission denied")
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func TestCleanupAttendancePhotos_SkipsFilesThatFailToDelete(t *testing.T) {
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	fs := &flakyStorage{files: []storage.FileInfo{
		{Path: "attendance/a.jpg", ModTime: old},
		{Path: "attendance/locked.jpg", ModTime: old},
		{Path: "attendance/c.jpg", ModTime: old},
	}}

	jobs := NewPhotoJobs(fs, 24*time.Hour, 2, 0)
	require.NoError(t, jobs.CleanupAttendancePhotos(context.Background()))
	assert.Equal(t, []string{"attendance/a.jpg", "attendance/c.jpg"}, fs.deleted)
}

func TestCleanupAttendancePhotos_WalkFailureIsReturned(t *testing.T) {
	fs := &flakyStorage{walkErr: errors.New("disk unavailable")}

	jobs := NewPhotoJobs(fs, 24*time.Hour, 2, 0)
	err := jobs.CleanupAttendancePhotos(context.Background())
	assert.ErrorContains(t, err, "disk unavailable")
}

func TestPhotoJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	NewPhotoJobs(&flakyStorage{}, time.Hour, 2, 0).RegisterJobs(s)
	NewAuthJobs(pruneCounter{}).RegisterJobs(s)
	assert.Equal(t, []string{"cleanup_attendance_photos", "prune_revoked_tokens"}, s.Jobs())
}

type pruneCounter struct{}

func (pruneCounter) PruneRevoked(time.Time) int { return 2 }

func TestPruneRevokedTokens(t *testing.T) {
	assert.NoError(t, NewAuthJobs(pruneCounter{}).PruneRevokedTokens(context.Background()))
}

func TestCleanupAttendancePhotos_UnreadableDirectoryDoesNotStopPurge(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	s, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 2, 0, 0, 0, time.Local)
	writePhoto(t, s, "attendance/2024-01-01/locked.jpg", 120*24*time.Hour, now)
	writePhoto(t, s, "attendance/2024-02-01/old.jpg", 90*24*time.Hour, now)

	locked := filepath.Join(s.BasePath(), "attendance", "2024-01-01")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	jobs := NewPhotoJobs(s, 30*24*time.Hour, 2, 0)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.CleanupAttendancePhotos(context.Background()))

	ok, err := s.Exists(context.Background(), "attendance/2024-02-01/old.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}
