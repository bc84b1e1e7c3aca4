package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/supportline/complaintdesk/internal/complaints"
	"go.uber.org/zap"
)

var (
	// ErrNoActiveEdit indicates a draft operation was attempted while idle.
	ErrNoActiveEdit = errors.New("dashboard: no active edit")
	// ErrUnknownComplaint indicates an edit was started for an id absent
	// from the current view.
	ErrUnknownComplaint = errors.New("dashboard: unknown complaint id")

	errMissingUpdater = errors.New("dashboard: complaint updater is required")
	errMissingView    = errors.New("dashboard: view source is required")
)

// ComplaintUpdater is the write half of the update-service boundary.
type ComplaintUpdater interface {
	UpdateIssue(ctx context.Context, id, issue string) error
	UpdateStatus(ctx context.Context, id string, status complaints.Status) error
}

// ViewSource provides the record list edits are seeded from and the refresh
// trigger fired after a confirmed write.
type ViewSource interface {
	Snapshot() ViewState
	Refresh()
}

// EditState is the tagged single edit slot: Editing is the discriminant and
// ID and Draft are meaningful only while it is set.
type EditState struct {
	Editing bool
	ID      string
	Draft   string
}

type EditSessionConfig struct {
	Client ComplaintUpdater
	View   ViewSource
	Logger *zap.Logger
}

// EditSession tracks the one in-flight inline edit shared across the whole
// record set. Writes are confirm-then-refresh: nothing is applied locally
// until the server accepts it and the view is re-fetched.
type EditSession struct {
	client ComplaintUpdater
	view   ViewSource
	logger *zap.Logger

	mu       sync.Mutex
	state    EditState
	inflight int
	lastErr  string
}

func NewEditSession(cfg EditSessionConfig) (*EditSession, error) {
	if cfg.Client == nil {
		return nil, errMissingUpdater
	}
	if cfg.View == nil {
		return nil, errMissingView
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EditSession{
		client: cfg.Client,
		view:   cfg.View,
		logger: logger,
	}, nil
}

// StartEdit opens an edit for the given record, seeding the draft with its
// current issue text. Valid from any state; a prior in-progress edit is
// silently discarded.
func (s *EditSession) StartEdit(id string) error {
	record, ok := s.findRecord(id)
	if !ok {
		return ErrUnknownComplaint
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = EditState{Editing: true, ID: id, Draft: record.Issue}
	return nil
}

// UpdateDraft replaces the draft buffer verbatim.
func (s *EditSession) UpdateDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Editing {
		return ErrNoActiveEdit
	}
	s.state.Draft = text
	return nil
}

// CancelEdit clears the edit slot unconditionally. Safe to call while idle.
func (s *EditSession) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = EditState{}
}

// SaveIssue submits the draft as the record's new issue text. On success the
// edit slot is cleared and a refresh is triggered; on failure the slot and
// draft are kept so the user can retry in place.
func (s *EditSession) SaveIssue(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.Editing {
		s.mu.Unlock()
		return ErrNoActiveEdit
	}
	id := s.state.ID
	draft := s.state.Draft
	s.inflight++
	s.mu.Unlock()

	err := s.client.UpdateIssue(ctx, id, draft)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Warn("issue save failed", zap.String("complaint_id", id), zap.Error(err))
		return err
	}
	s.state = EditState{}
	s.lastErr = ""
	s.mu.Unlock()

	s.view.Refresh()
	return nil
}

// SetStatus submits a status change for any record, independent of the edit
// slot. No optimistic local change is made; a failed write leaves the
// displayed status to be reconciled by the next refresh.
func (s *EditSession) SetStatus(ctx context.Context, id string, status complaints.Status) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	err := s.client.UpdateStatus(ctx, id, status)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Warn("status update failed",
			zap.String("complaint_id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return err
	}
	s.lastErr = ""
	s.mu.Unlock()

	s.view.Refresh()
	return nil
}

// State returns the current edit slot.
func (s *EditSession) State() EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updating reports whether any network mutation is in flight. The
// presentation layer is expected to disable conflicting inputs while set;
// the session exposes the flag but does not enforce it.
func (s *EditSession) Updating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastError returns the most recent save or status failure, empty after a
// subsequent success.
func (s *EditSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *EditSession) findRecord(id string) (complaints.Complaint, bool) {
	for _, record := range s.view.Snapshot().Records {
		if record.ID == id {
			return record, true
		}
	}
	return complaints.Complaint{}, false
}
