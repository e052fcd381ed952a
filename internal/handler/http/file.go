package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
)

type FileHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
}

type fileHandlerImpl struct {
	fileService file.FileService
}

func NewFileHandler(fileService file.FileService) FileHandler {
	return &fileHandlerImpl{
		fileService: fileService,
	}
}

// Upload handles POST /file/upload with a multipart "file" field
func (h *fileHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, file.MaxUploadSize+formOverhead)
	if err := r.ParseMultipartForm(file.MaxUploadSize + formOverhead); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.PayloadTooLarge(w, "File size must not exceed 5MB")
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	upload, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer upload.Close()

	result, err := h.fileService.UploadFile(r.Context(), claims.EmployeeID, upload, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("File uploaded", "emp_id", claims.EmpID, "path", result.Path, "size", result.Size)
	response.Created(w, "File uploaded successfully", result)
}
