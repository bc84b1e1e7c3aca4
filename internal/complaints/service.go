package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError wraps a failure with a dotted operation code so HTTP handlers
// and logs can classify it without string matching.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "complaints.service.new"
	opList       = "complaints.list"
	opUpdate     = "complaints.update"
	opCreate     = "complaints.create"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

type IDProvider interface {
	NewID() (string, error)
}

// Service owns reads and writes of the complaint collection.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// List returns every persisted complaint in insertion order.
func (s *Service) List(ctx context.Context) ([]Complaint, error) {
	if s.db == nil {
		s.logError(opList, "missing_database", errMissingDatabase)
		return nil, newServiceError(opList, "missing_database", errMissingDatabase)
	}

	var records []Complaint
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		s.logError(opList, "query_failed", err)
		return nil, newServiceError(opList, "query_failed", err)
	}

	return records, nil
}

// Update patches the mutable fields of one complaint. Nil request fields are
// left untouched; a request with neither field returns the stored record
// unchanged. The status enum is enforced before anything is written.
func (s *Service) Update(ctx context.Context, id ComplaintID, request UpdateRequest) (Complaint, error) {
	if s.db == nil {
		s.logError(opUpdate, "missing_database", errMissingDatabase)
		return Complaint{}, newServiceError(opUpdate, "missing_database", errMissingDatabase)
	}

	if request.Status != nil {
		if _, err := ParseStatus(request.Status.String()); err != nil {
			s.logError(opUpdate, "invalid_status", err, zap.String("complaint_id", id.String()))
			return Complaint{}, newServiceError(opUpdate, "invalid_status", err)
		}
	}

	var updated Complaint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Complaint
		err := tx.Where("id = ?", id.String()).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdate, "not_found", fmt.Errorf("%w: %s", ErrComplaintNotFound, id.String()))
		}
		if err != nil {
			s.logError(opUpdate, "select_failed", err, zap.String("complaint_id", id.String()))
			return newServiceError(opUpdate, "select_failed", err)
		}

		if request.Issue != nil {
			existing.Issue = *request.Issue
		}
		if request.Status != nil {
			existing.Status = *request.Status
		}

		if err := tx.Save(&existing).Error; err != nil {
			s.logError(opUpdate, "save_failed", err, zap.String("complaint_id", id.String()))
			return newServiceError(opUpdate, "save_failed", err)
		}

		updated = existing
		return nil
	})
	if txErr != nil {
		return Complaint{}, txErr
	}

	s.logger.Debug("complaint updated",
		zap.String("complaint_id", updated.ID),
		zap.String("status", updated.Status.String()))
	return updated, nil
}

// Create persists a new complaint, issuing its identity, complaint number,
// and timestamp. Status defaults to pending when the request omits it.
func (s *Service) Create(ctx context.Context, request CreateRequest) (Complaint, error) {
	if s.db == nil {
		s.logError(opCreate, "missing_database", errMissingDatabase)
		return Complaint{}, newServiceError(opCreate, "missing_database", errMissingDatabase)
	}
	if s.idProvider == nil {
		s.logError(opCreate, "missing_id_provider", errMissingIDProvider)
		return Complaint{}, newServiceError(opCreate, "missing_id_provider", errMissingIDProvider)
	}

	if err := validateCreateRequest(request); err != nil {
		s.logError(opCreate, "invalid_request", err)
		return Complaint{}, newServiceError(opCreate, "invalid_request", err)
	}

	status := StatusPending
	if request.Status != nil {
		parsed, err := ParseStatus(request.Status.String())
		if err != nil {
			s.logError(opCreate, "invalid_status", err)
			return Complaint{}, newServiceError(opCreate, "invalid_status", err)
		}
		status = parsed
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return Complaint{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	record := Complaint{
		ID:              id,
		Mobile:          request.Mobile,
		Name:            request.Name,
		Address:         request.Address,
		Product:         request.Product,
		Issue:           request.Issue,
		ComplaintNumber: complaintNumber(id),
		Priority:        request.Priority,
		Status:          status,
		Timestamp:       s.clock().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opCreate, "insert_failed", err, zap.String("complaint_id", id))
		return Complaint{}, newServiceError(opCreate, "insert_failed", err)
	}

	s.logger.Info("complaint created",
		zap.String("complaint_id", record.ID),
		zap.String("complaint_number", record.ComplaintNumber))
	return record, nil
}

func validateCreateRequest(request CreateRequest) error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(request.Mobile) == "" {
		missing = append(missing, "mobile")
	}
	if strings.TrimSpace(request.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(request.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(request.Product) == "" {
		missing = append(missing, "product")
	}
	if strings.TrimSpace(request.Issue) == "" {
		missing = append(missing, "issue")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// complaintNumber derives the customer-facing reference from the opaque id
// so the same injectable IDProvider keeps both deterministic in tests.
func complaintNumber(id string) string {
	compact := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "CMP-" + compact
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("complaints service error", attrs...)
}
