package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileService(t *testing.T) (FileService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:2000/uploads")
	require.NoError(t, err)
	return NewFileService(local), local
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAttendancePhoto_ConvertsToJPEG(t *testing.T) {
	svc, local := newTestFileService(t)
	ctx := context.Background()

	key, err := svc.UploadAttendancePhoto(ctx, "emp1", "2024-05-01", bytes.NewReader(pngBytes(t, 64, 48)), "selfie.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "attendance/2024-05-01/emp1-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, err := local.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	_, format, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestUploadAttendancePhoto_RejectsBadInput(t *testing.T) {
	svc, _ := newTestFileService(t)
	ctx := context.Background()

	_, err := svc.UploadAttendancePhoto(ctx, "emp1", "2024-05-01", strings.NewReader("%PDF-1.4"), "doc.pdf")
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = svc.UploadAttendancePhoto(ctx, "emp1", "2024-05-01", strings.NewReader("not an image"), "fake.jpg")
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestUploadFile(t *testing.T) {
	svc, _ := newTestFileService(t)
	ctx := context.Background()

	result, err := svc.UploadFile(ctx, "emp1", strings.NewReader("%PDF-1.4 body"), "Medical.pdf", 13)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Path, "files/emp1/"))
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, int64(13), result.Size)
	assert.Equal(t, "http://localhost:2000/uploads/"+result.Path, result.URL)

	rc, contentType, err := svc.Open(ctx, result.Path)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(body))
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, svc.DeleteFile(ctx, result.Path))
	_, _, err = svc.Open(ctx, result.Path)
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestUploadFile_Limits(t *testing.T) {
	svc, _ := newTestFileService(t)
	ctx := context.Background()

	_, err := svc.UploadFile(ctx, "emp1", strings.NewReader("#!/bin/sh"), "run.sh", 9)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = svc.UploadFile(ctx, "emp1", strings.NewReader("x"), "big.pdf", MaxUploadSize+1)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	oversized := bytes.Repeat([]byte("a"), MaxUploadSize+10)
	_, err = svc.UploadFile(ctx, "emp1", bytes.NewReader(oversized), "lying.pdf", 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCompressImage_KeepsJPEGInRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := compressImage(buf.Bytes(), buf.Len()+1, buf.Len()-1)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
}
