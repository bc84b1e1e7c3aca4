package complaints

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status enumerates the complaint workflow states accepted on the wire.
type Status string

const (
	// StatusPending marks a complaint that still needs attention.
	StatusPending Status = "pending"
	// StatusCompleted marks a resolved complaint.
	StatusCompleted Status = "completed"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidComplaintID indicates that a complaint identifier is empty or exceeds storage bounds.
	ErrInvalidComplaintID = errors.New("complaints: invalid complaint id")
	// ErrInvalidStatus indicates a status value outside the accepted enum.
	ErrInvalidStatus = errors.New("complaints: invalid status")
	// ErrComplaintNotFound indicates that no complaint exists for the given identifier.
	ErrComplaintNotFound = errors.New("complaints: complaint not found")
)

// ParseStatus validates raw input and returns a Status.
func ParseStatus(rawInput string) (Status, error) {
	switch Status(rawInput) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, rawInput)
	}
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// ComplaintID represents a validated complaint identifier.
type ComplaintID string

// NewComplaintID validates raw input and returns a ComplaintID.
func NewComplaintID(rawInput string) (ComplaintID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidComplaintID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidComplaintID, maxIdentifierLength)
	}
	return ComplaintID(trimmed), nil
}

// String returns the underlying string identifier.
func (id ComplaintID) String() string {
	return string(id)
}

// Complaint models one customer complaint document. The JSON tags are the
// wire contract consumed by the dashboard; `_id` and the RFC 3339 timestamp
// are load-bearing field shapes.
type Complaint struct {
	ID              string    `gorm:"column:id;primaryKey;size:190;not null" json:"_id"`
	Mobile          string    `gorm:"column:mobile;size:32;not null" json:"mobile"`
	Name            string    `gorm:"column:name;size:190;not null" json:"name"`
	Address         string    `gorm:"column:address;type:text;not null" json:"address"`
	Product         string    `gorm:"column:product;size:190;not null" json:"product"`
	Issue           string    `gorm:"column:issue;type:text;not null" json:"issue"`
	ComplaintNumber string    `gorm:"column:complaint_number;size:190;not null;index:idx_complaints_number" json:"complaint_number"`
	Priority        string    `gorm:"column:priority;size:32;not null" json:"priority"`
	Status          Status    `gorm:"column:status;size:32;not null" json:"status"`
	Timestamp       time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

// TableName provides the explicit table binding for GORM.
func (Complaint) TableName() string {
	return "customer_info"
}

// UpdateRequest carries the mutable fields of a PATCH. Nil fields are left
// untouched on the stored record.
type UpdateRequest struct {
	Issue  *string
	Status *Status
}

// CreateRequest carries the caller-supplied fields of a new complaint.
// Identity, complaint number, and timestamp are issued by the service.
type CreateRequest struct {
	Mobile   string
	Name     string
	Address  string
	Product  string
	Issue    string
	Priority string
	Status   *Status
}
