package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/supportline/complaintdesk/internal/complaints"
	"go.uber.org/zap"
)

const (
	defaultRefreshInterval = 30 * time.Second

	// Shown when a refresh fails without a server-supplied message.
	fallbackFetchMessage = "Failed to fetch customer data"
)

var errMissingLister = errors.New("dashboard: complaint lister is required")

// ViewState is the client's current idea of the full record list. Exactly
// one of loading, error, or ready holds at a time; records survive a failed
// refresh so the presentation layer can keep showing stale data.
type ViewState struct {
	Records      []complaints.Complaint
	Loading      bool
	ErrorMessage string
}

// ComplaintLister is the read half of the update-service boundary.
type ComplaintLister interface {
	ListComplaints(ctx context.Context) ([]complaints.Complaint, error)
}

type SyncControllerConfig struct {
	Client   ComplaintLister
	Interval time.Duration
	Logger   *zap.Logger
}

// SyncController owns ViewState and drives both the periodic poll and
// manual refreshes through one code path. Overlapping refreshes are not
// serialized: the last response to arrive wins, which can briefly surface a
// stale record set when responses land out of order. Known limitation,
// left as-is pending product guidance.
type SyncController struct {
	client   ComplaintLister
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	view   ViewState
	closed bool

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewSyncController(cfg SyncControllerConfig) (*SyncController, error) {
	if cfg.Client == nil {
		return nil, errMissingLister
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SyncController{
		client:   cfg.Client,
		interval: interval,
		logger:   logger,
		view:     ViewState{Loading: true},
		done:     make(chan struct{}),
	}, nil
}

// Start launches the poll loop: one refresh immediately, then one per
// interval until Close. Calling Start more than once is a no-op.
func (c *SyncController) Start() {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.run()
	})
}

func (c *SyncController) run() {
	defer c.wg.Done()

	c.Refresh()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Refresh()
		}
	}
}

// Refresh fetches the full record list and reconciles it into ViewState.
// On success the record sequence is replaced wholesale and any error is
// cleared; on failure the previous records are preserved and the error slot
// is set. Failures never escape past this boundary. A response arriving
// after Close is discarded.
func (c *SyncController) Refresh() {
	records, err := c.client.ListComplaints(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.view.Loading = false
	if err != nil {
		c.view.ErrorMessage = refreshErrorMessage(err)
		c.logger.Warn("refresh failed", zap.Error(err))
		return
	}

	c.view.Records = records
	c.view.ErrorMessage = ""
	c.logger.Debug("refresh applied", zap.Int("records", len(records)))
}

// Snapshot returns a copy of ViewState safe for the presentation layer to
// hold across further refreshes.
func (c *SyncController) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.view
	snapshot.Records = make([]complaints.Complaint, len(c.view.Records))
	copy(snapshot.Records, c.view.Records)
	return snapshot
}

// Close stops the poll loop and freezes ViewState. In-flight requests are
// not cancelled; their late responses become no-ops.
func (c *SyncController) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		c.wg.Wait()
	})
}

func refreshErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackFetchMessage
}
