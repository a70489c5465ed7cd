package service

import (
	"context"
	"fmt"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/detector"
	"github.com/akovalyov/deeptrace/internal/models"
)

// Pagination bounds for listing detection records.
const (
	minPerPage = 1
	maxPerPage = 100
)

// DetectionRepository defines the persistence operations required by the
// DetectionService.
type DetectionRepository interface {
	// Create inserts a new pending record.
	Create(ctx context.Context, draft models.DetectionCreate) (*models.Detection, error)
	// Get fetches a record by ID; apperr.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*models.Detection, error)
	// ListByUser returns the user's records newest-created first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Detection, error)
	// CountByUser returns the user's total record count.
	CountByUser(ctx context.Context, userID string) (int64, error)
	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, id string, patch models.DetectionUpdate) (*models.Detection, error)
	// Delete hard-deletes a record; apperr.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// DetectionService implements the detection record lifecycle:
//
//	pending --start processing--> processing
//	processing --complete--> completed
//	processing --fail--> failed
//
// Completed and failed are terminal. Illegal transitions fail with
// apperr.ErrIllegalTransition.
type DetectionService struct {
	repo   DetectionRepository
	detect detector.Func
}

// NewDetectionService constructs a DetectionService using the provided
// repository and the injected inference function.
func NewDetectionService(repo DetectionRepository, detect detector.Func) *DetectionService {
	return &DetectionService{repo: repo, detect: detect}
}

// Create inserts a new record in the pending state.
func (s *DetectionService) Create(ctx context.Context, draft models.DetectionCreate) (*models.Detection, error) {
	if !draft.MediaType.Valid() {
		return nil, fmt.Errorf("%w: unsupported media type %q", apperr.ErrValidation, draft.MediaType)
	}
	return s.repo.Create(ctx, draft)
}

// GetByID fetches a record by ID.
func (s *DetectionService) GetByID(ctx context.Context, id string) (*models.Detection, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of the owner's records, newest-created first, with the
// owner's total count. page must be >= 1 and perPage within [1, 100];
// violations fail with apperr.ErrInvalidPagination.
func (s *DetectionService) List(ctx context.Context, ownerID string, page, perPage int) (*models.DetectionList, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be greater than 0", apperr.ErrInvalidPagination)
	}
	if perPage < minPerPage || perPage > maxPerPage {
		return nil, fmt.Errorf("%w: per_page must be between %d and %d",
			apperr.ErrInvalidPagination, minPerPage, maxPerPage)
	}

	offset := (page - 1) * perPage
	items, err := s.repo.ListByUser(ctx, ownerID, perPage, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &models.DetectionList{
		Detections: items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// Update applies a partial update after validating it against the lifecycle
// state machine and the result invariants.
func (s *DetectionService) Update(ctx context.Context, id string, patch models.DetectionUpdate) (*models.Detection, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(d.Status, patch); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete hard-deletes a record.
func (s *DetectionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// StartProcessing transitions a pending record to processing.
func (s *DetectionService) StartProcessing(ctx context.Context, id string) (*models.Detection, error) {
	status := models.StatusProcessing
	return s.Update(ctx, id, models.DetectionUpdate{Status: &status})
}

// Complete transitions a processing record to completed, recording the
// verdict, the confidence score, and the processing duration.
func (s *DetectionService) Complete(ctx context.Context, id string, result models.DetectionResult, confidence, seconds float64) (*models.Detection, error) {
	status := models.StatusCompleted
	return s.Update(ctx, id, models.DetectionUpdate{
		Status:                &status,
		Result:                &result,
		ConfidenceScore:       &confidence,
		ProcessingTimeSeconds: &seconds,
	})
}

// Fail transitions a processing record to failed, recording the error
// message.
func (s *DetectionService) Fail(ctx context.Context, id string, message string) (*models.Detection, error) {
	status := models.StatusFailed
	return s.Update(ctx, id, models.DetectionUpdate{
		Status:       &status,
		ErrorMessage: &message,
	})
}

// Process runs the injected detector over a pending record synchronously:
// the record is moved to processing, inference runs, and the outcome is
// recorded as completed or failed.
func (s *DetectionService) Process(ctx context.Context, id string) (*models.Detection, error) {
	d, err := s.StartProcessing(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.detect(ctx, d.FilePath, d.MediaType)
	if err != nil {
		return s.Fail(ctx, id, err.Error())
	}
	return s.Complete(ctx, id, out.Result, out.Confidence, out.Seconds)
}

// CanAccess reports whether user may read or delete the record: the owner
// and superusers may, nobody else.
func (s *DetectionService) CanAccess(user *models.User, d *models.Detection) bool {
	if user == nil || d == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return d.UserID != nil && *d.UserID == user.ID
}

// validateUpdate enforces the transition table and the invariant that
// result and confidence are only ever set on a completed record, with the
// confidence constrained to [0, 1].
func validateUpdate(current models.DetectionStatus, patch models.DetectionUpdate) error {
	next := current
	if patch.Status != nil {
		next = *patch.Status
		if !transitionAllowed(current, next) {
			return fmt.Errorf("%w: %s -> %s", apperr.ErrIllegalTransition, current, next)
		}
	}

	if (patch.Result != nil || patch.ConfidenceScore != nil) && next != models.StatusCompleted {
		return fmt.Errorf("%w: result fields require completed status", apperr.ErrValidation)
	}
	if patch.ConfidenceScore != nil {
		if c := *patch.ConfidenceScore; c < 0 || c > 1 {
			return fmt.Errorf("%w: confidence_score must be within [0, 1]", apperr.ErrValidation)
		}
	}
	return nil
}

// transitionAllowed implements the state machine. A status-preserving update
// is always allowed.
func transitionAllowed(from, to models.DetectionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.StatusPending:
		return to == models.StatusProcessing
	case models.StatusProcessing:
		return to == models.StatusCompleted || to == models.StatusFailed
	}
	return false
}
