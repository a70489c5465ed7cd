package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/models"
)

// DetectionService defines the lifecycle operations required by the
// detection endpoints.
type DetectionService interface {
	Create(ctx context.Context, draft models.DetectionCreate) (*models.Detection, error)
	GetByID(ctx context.Context, id string) (*models.Detection, error)
	List(ctx context.Context, ownerID string, page, perPage int) (*models.DetectionList, error)
	Delete(ctx context.Context, id string) error
	CanAccess(user *models.User, d *models.Detection) bool
}

// UploadPolicy holds the upload validation settings sourced from config.
type UploadPolicy struct {
	// Dir is the root directory where uploads are stored, one subdirectory
	// per owner.
	Dir string
	// MaxBytes caps the accepted file size.
	MaxBytes int64
	// ImageExts and VideoExts are the accepted lowercase extensions
	// (without dot) per media type.
	ImageExts []string
	VideoExts []string
}

// DetectionHandler handles HTTP requests for detection records.
type DetectionHandler struct {
	Detections DetectionService
	Policy     UploadPolicy
}

// Upload handles POST /detection/upload. It accepts a multipart form with a
// "file" part and a "media_type" value, stores the file under the owner's
// upload directory and creates a pending record.
// Oversized files and disallowed extensions fail 400.
func (h *DetectionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	// Slack for the non-file form parts.
	r.Body = http.MaxBytesReader(w, r.Body, h.Policy.MaxBytes+64*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{
			Detail: fmt.Sprintf("file exceeds the maximum allowed size of %d bytes or the form is malformed", h.Policy.MaxBytes),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "missing file part"})
		return
	}
	defer file.Close()

	mediaType := models.MediaType(r.FormValue("media_type"))
	if !mediaType.Valid() {
		writeJSON(w, http.StatusBadRequest, detail{Detail: fmt.Sprintf("unsupported media type %q", mediaType)})
		return
	}

	if header.Size > h.Policy.MaxBytes {
		writeJSON(w, http.StatusBadRequest, detail{
			Detail: fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", h.Policy.MaxBytes),
		})
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !extensionAllowed(ext, mediaType, h.Policy) {
		writeJSON(w, http.StatusBadRequest, detail{
			Detail: fmt.Sprintf("file extension %q not allowed for %s files", ext, mediaType),
		})
		return
	}

	dest, size, err := h.storeUpload(user.ID, header.Filename, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "failed to store upload"})
		return
	}

	d, err := h.Detections.Create(r.Context(), models.DetectionCreate{
		UserID:    &user.ID,
		MediaType: mediaType,
		FileName:  header.Filename,
		FilePath:  dest,
		FileSize:  size,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// List handles GET /detection/ with page and per_page query parameters,
// returning the caller's own records.
func (h *DetectionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	perPage, err := queryInt(r, "per_page", 20)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.Detections.List(r.Context(), user.ID, page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /detection/{id}. 404 if absent, 403 unless the caller
// owns the record or is a superuser.
func (h *DetectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	d, err := h.Detections.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.Detections.CanAccess(user, d) {
		writeError(w, apperr.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /detection/{id} under the same authorization rule
// as Get.
func (h *DetectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.Detections.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.Detections.CanAccess(user, d) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	if err := h.Detections.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Detection deleted successfully"})
}

func (h *DetectionHandler) storeUpload(ownerID, name string, src io.Reader) (string, int64, error) {
	dir := filepath.Join(h.Policy.Dir, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	dest := filepath.Join(dir, filepath.Base(name))
	out, err := os.Create(dest)
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	size, err := io.Copy(out, src)
	if err != nil {
		return "", 0, err
	}
	return dest, size, nil
}

func extensionAllowed(ext string, mediaType models.MediaType, policy UploadPolicy) bool {
	allowed := policy.ImageExts
	if mediaType == models.MediaVideo {
		allowed = policy.VideoExts
	}
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", apperr.ErrInvalidPagination, key)
	}
	return n, nil
}
