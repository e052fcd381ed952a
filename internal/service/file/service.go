package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for WebP decoding support
)

const (
	// AttendancePhotoDir is the storage prefix of check-in photos.
	AttendancePhotoDir = "attendance"

	MaxUploadSize = 5 << 20 // 5MB

	photoMaxBytes = 150 * 1024
	photoMinBytes = 50 * 1024
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file is too large")
)

var (
	photoUpload = storage.UploadOptions{
		ContentType: "image/jpeg",
		AllowedExts: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
	genericUpload = storage.UploadOptions{
		MaxSize:     MaxUploadSize,
		AllowedExts: []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"},
	}
)

type UploadResult struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type FileService interface {
	// UploadAttendancePhoto stores a check-in photo as a compressed JPEG under attendance/<date>/
	UploadAttendancePhoto(ctx context.Context, employeeID string, date string, file io.Reader, filename string) (string, error)

	// UploadFile stores an image or pdf for the employee as is
	UploadFile(ctx context.Context, employeeID string, file io.Reader, filename string, size int64) (UploadResult, error)

	// Open returns the stored file and its content type
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func checkUpload(filename string, size int64, opts storage.UploadOptions) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !validator.IsInSlice(ext, opts.AllowedExts) {
		return "", fmt.Errorf("%w: only %s allowed", ErrInvalidFileType, strings.Join(opts.AllowedExts, ", "))
	}
	if opts.MaxSize > 0 && size > opts.MaxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, opts.MaxSize)
	}
	return ext, nil
}

// UploadAttendancePhoto compresses the image to 50KB - 150KB before storing it.
func (s *fileServiceImpl) UploadAttendancePhoto(ctx context.Context, employeeID string, date string, file io.Reader, filename string) (string, error) {
	if _, err := checkUpload(filename, 0, photoUpload); err != nil {
		return "", err
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, photoMaxBytes, photoMinBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	// attendance/{date}/{employeeID}-{uuid}.jpg
	key := path.Join(AttendancePhotoDir, date, fmt.Sprintf("%s-%s.jpg", employeeID, uuid.New().String()))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, photoUpload.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload attendance photo: %w", err)
	}
	return uploadedPath, nil
}

// UploadFile implements FileService.
func (s *fileServiceImpl) UploadFile(ctx context.Context, employeeID string, file io.Reader, filename string, size int64) (UploadResult, error) {
	ext, err := checkUpload(filename, size, genericUpload)
	if err != nil {
		return UploadResult{}, err
	}

	// Guard against a size header that understates the body.
	limited := &io.LimitedReader{R: file, N: MaxUploadSize + 1}
	key := path.Join("files", employeeID, uuid.New().String()+ext)
	contentType := contentTypeOf(key)

	uploadedPath, err := s.storage.Upload(ctx, limited, key, contentType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload file: %w", err)
	}
	if limited.N <= 0 {
		_ = s.storage.Delete(ctx, uploadedPath)
		return UploadResult{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, MaxUploadSize)
	}

	url, err := s.storage.GetURL(ctx, uploadedPath, 0)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		Path:        uploadedPath,
		URL:         url,
		ContentType: contentType,
		Size:        MaxUploadSize + 1 - limited.N,
	}, nil
}

// Open implements FileService.
func (s *fileServiceImpl) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return rc, contentTypeOf(path), nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string) (string, error) {
	return s.storage.GetURL(ctx, path, 0)
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG within [minSize, maxSize] when it can.
// A JPEG already in range is kept byte for byte; other formats are always converted.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if format == "jpeg" && len(buffer) <= maxSize && len(buffer) >= minSize {
		return buffer, nil
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	// Start with quality 85 and reduce progressively
	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize && len(compressed) >= minSize {
			return compressed, nil
		}
		if len(compressed) > maxSize {
			quality -= 5
			continue
		}
		// Too small: a lower quality would only shrink it further.
		break
	}

	if len(compressed) > maxSize {
		// Aim for the middle of the range
		targetSize := (maxSize + minSize) / 2
		ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
		newWidth := int(float64(originalWidth) * ratio)
		newHeight := int(float64(originalHeight) * ratio)

		if newWidth < 600 {
			newWidth = min(600, originalWidth)
		}
		if newHeight < 400 {
			newHeight = min(400, originalHeight)
		}

		resized := resizeImage(img, newWidth, newHeight)

		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
			return nil, fmt.Errorf("failed to encode resized image: %w", err)
		}
		compressed = buf.Bytes()
	}

	return compressed, nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
