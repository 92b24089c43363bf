// Package sync polls the backend for notifications and feeds the results
// into the Bubble Tea runtime.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/store"
)

// SyncState represents the current state of the notification poll.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the poll state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// NotificationsFetchedMsg is a tea.Msg sent when a poll completes.
type NotificationsFetchedMsg struct {
	UserID        string
	Notifications []model.Notification

	// Initial is set on the first successful fetch after Start.
	Initial   bool
	Error     error
	AuthError *AuthErrorMsg
}

// Apply folds a successful fetch into s. The first fetch replaces the
// store; later fetches push only unseen records. Resolved invitations
// stay out either way. It returns the new store
// and the number of pushed records, which is zero for the first fetch.
func (m NotificationsFetchedMsg) Apply(s state.Notifications) (state.Notifications, int) {
	if m.Error != nil {
		return s, 0
	}
	if m.Initial {
		return s.Reload(m.Notifications), 0
	}
	return s.Merge(m.Notifications)
}

// AuthErrorMsg is a tea.Msg sent when the backend rejects the token.
type AuthErrorMsg struct {
	Message string
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Poller periodically fetches the signed-in user's notifications.
type Poller struct {
	backend  api.NotificationService
	cache    store.Store
	interval time.Duration
	log      logrus.FieldLogger

	mu        gosync.Mutex
	status    SyncStatus
	userID    string
	running   bool
	fetched   bool
	resultCh  chan NotificationsFetchedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
}

// New creates a Poller. cache may be nil.
func New(
	backend api.NotificationService,
	cache store.Store,
	interval time.Duration,
	log logrus.FieldLogger,
) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		backend:   backend,
		cache:     cache,
		interval:  interval,
		log:       log,
		resultCh:  make(chan NotificationsFetchedMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start begins polling for userID and returns a tea.Cmd that waits for
// the first result. It does nothing if the poller is already running.
func (p *Poller) Start(userID string) tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.fetched = false
	p.userID = userID
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.poll(userID, stop)

	return p.waitForResult()
}

// Stop halts polling. Start may be called again afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
	return nil
}

// Status returns the current poll status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// poll runs the polling loop until stop is closed.
func (p *Poller) poll(userID string, stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.fetch(userID, stop)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetch(userID, stop)
		case <-p.triggerCh:
			p.fetch(userID, stop)
		}
	}
}

// fetch performs a single fetch, refreshes the local cache and sends the
// result on the result channel.
func (p *Poller) fetch(userID string, stop <-chan struct{}) {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	list, err := p.backend.ListNotifications(ctx, userID)

	// A fetch that outlived Stop belongs to a previous session.
	select {
	case <-stop:
		return
	default:
	}

	logger := p.log.WithField("user_id", userID)
	if err != nil {
		p.setStatus(SyncError, err)

		if api.IsAuthError(err) {
			logger.WithError(err).Warn("notification poll rejected")
			p.sendResult(NotificationsFetchedMsg{
				UserID: userID,
				Error:  err,
				AuthError: &AuthErrorMsg{
					Message: "Session expired. Sign in again.",
				},
			})
			return
		}

		logger.WithError(err).Error("notification poll failed")
		p.sendResult(NotificationsFetchedMsg{UserID: userID, Error: err})
		return
	}

	if p.cache != nil {
		if cacheErr := p.cache.ReplaceNotifications(ctx, userID, list); cacheErr != nil {
			logger.WithError(cacheErr).Warn("caching notifications failed")
		}
	}

	p.mu.Lock()
	initial := !p.fetched
	p.fetched = true
	p.mu.Unlock()

	p.setStatus(SyncIdle, nil)
	logger.WithField("count", len(list)).Debug("notifications polled")
	p.sendResult(NotificationsFetchedMsg{
		UserID:        userID,
		Notifications: list,
		Initial:       initial,
	})
}

// setStatus updates the poll status.
func (p *Poller) setStatus(st SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = st
	p.status.Error = err
	if st == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result on the result channel without blocking.
func (p *Poller) sendResult(msg NotificationsFetchedMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// This should be called after processing a NotificationsFetchedMsg to
// continue listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
