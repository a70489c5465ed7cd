// Package models defines the core data structures for users and detection records.
package models

import "time"

// MediaType identifies the kind of media submitted for detection.
type MediaType string

const (
	// MediaImage is a still image upload.
	MediaImage MediaType = "image"
	// MediaVideo is a video upload.
	MediaVideo MediaType = "video"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

// DetectionStatus is the lifecycle state of a detection record.
type DetectionStatus string

const (
	// StatusPending means the record was created but processing has not started.
	StatusPending DetectionStatus = "pending"
	// StatusProcessing means inference is underway.
	StatusProcessing DetectionStatus = "processing"
	// StatusCompleted means inference finished and a result is recorded.
	StatusCompleted DetectionStatus = "completed"
	// StatusFailed means inference failed; error_message holds the cause.
	StatusFailed DetectionStatus = "failed"
)

// Terminal reports whether s has no outgoing transitions.
func (s DetectionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DetectionResult is the verdict produced by the detector.
type DetectionResult string

const (
	// ResultReal means the media is judged authentic.
	ResultReal DetectionResult = "real"
	// ResultFake means the media is judged a deepfake.
	ResultFake DetectionResult = "fake"
	// ResultUncertain means the detector could not decide.
	ResultUncertain DetectionResult = "uncertain"
)

// User represents an application account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the unique login email, case-sensitive as stored.
	Email string `json:"email"`
	// HashedPassword is the bcrypt hash of the password; never serialized.
	HashedPassword string `json:"-"`
	// FullName is an optional display name.
	FullName string `json:"full_name,omitempty"`
	// IsActive gates authentication; inactive users cannot log in.
	IsActive bool `json:"is_active"`
	// IsSuperuser grants access to records owned by other users.
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCreate is the input for creating a user. Password is plaintext here
// and hashed by the repository before persisting.
type UserCreate struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UserUpdate is a partial update of a user. Nil fields are left untouched.
type UserUpdate struct {
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// Detection is a per-upload detection record.
type Detection struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`
	// UserID references the owning user. Nil for orphaned records.
	// The owner is set at creation and never changes.
	UserID    *string   `json:"user_id,omitempty"`
	MediaType MediaType `json:"media_type"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	// FileSize is the uploaded file size in bytes.
	FileSize int64 `json:"file_size"`
	// Status is the lifecycle state; records are created pending.
	Status DetectionStatus `json:"status"`
	// Result is set only once the record is completed.
	Result *DetectionResult `json:"result,omitempty"`
	// ConfidenceScore lies in [0, 1] when present.
	ConfidenceScore       *float64  `json:"confidence_score,omitempty"`
	ProcessingTimeSeconds *float64  `json:"processing_time_seconds,omitempty"`
	ErrorMessage          *string   `json:"error_message,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DetectionCreate is the input for creating a detection record.
// Status is not part of the input: new records are always pending.
type DetectionCreate struct {
	UserID    *string   `json:"user_id,omitempty"`
	MediaType MediaType `json:"media_type"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
}

// DetectionUpdate is a partial update of a detection record. Nil fields are
// left untouched.
type DetectionUpdate struct {
	Status                *DetectionStatus `json:"status,omitempty"`
	Result                *DetectionResult `json:"result,omitempty"`
	ConfidenceScore       *float64         `json:"confidence_score,omitempty"`
	ProcessingTimeSeconds *float64         `json:"processing_time_seconds,omitempty"`
	ErrorMessage          *string          `json:"error_message,omitempty"`
}

// DetectionList is a page of detection records with the owner's total count.
type DetectionList struct {
	Detections []Detection `json:"detections"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
}
