package worker

import (
	"context"
	"spotnsort/metrics"
	"spotnsort/models"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// ReportLister is the part of the report backend the poller needs
type ReportLister interface {
	ListReports(ctx context.Context) ([]models.Report, error)
}

// Snapshot is one applied fetch of the report collection
type Snapshot struct {
	Seq       uint64
	Reports   []models.Report
	FetchedAt time.Time
}

// ReportPoller keeps a fresh copy of the report collection. Every fetch gets a
// sequence number when it starts; a response is applied only if it is newer than
// the last applied one, so a slow fetch can never overwrite a faster later one.
type ReportPoller struct {
	backend  ReportLister
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	running  bool // guarded by mu
	inflight sync.WaitGroup

	seq uint64 // last issued sequence number

	mu      sync.RWMutex
	applied uint64
	latest  *Snapshot

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSubID   int
}

// NewReportPoller creates a new report poller. timeout bounds each fetch.
func NewReportPoller(backend ReportLister, interval, timeout time.Duration) *ReportPoller {
	return &ReportPoller{
		backend:     backend,
		interval:    interval,
		timeout:     timeout,
		stopChan:    make(chan struct{}),
		subscribers: make(map[int]chan Snapshot),
	}
}

// Start starts polling in a separate goroutine
func (w *ReportPoller) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		log.Warn("[poller] already running")
		return
	}
	w.running = true
	w.inflight.Add(1)
	log.Infof("[poller] started (interval: %v)", w.interval)
	go w.run()
}

// Stop stops polling and waits for in-flight fetches
func (w *ReportPoller) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopChan)
	w.running = false
	w.mu.Unlock()

	w.inflight.Wait()
	log.Info("[poller] stopped")
}

func (w *ReportPoller) run() {
	defer w.inflight.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll()

	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-w.stopChan:
			return
		}
	}
}

func (w *ReportPoller) poll() {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if _, err := w.Fetch(ctx); err != nil {
		log.Warnf("[poller] fetch failed: %v", err)
	}
}

// Refresh triggers an out-of-band fetch after a mutation. It does not wait for
// it, and does nothing once the poller is stopped.
func (w *ReportPoller) Refresh(_ context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		w.poll()
	}()
}

// Fetch lists reports once and applies the result unless a newer fetch already
// landed. applied is false for a stale response.
func (w *ReportPoller) Fetch(ctx context.Context) (applied bool, err error) {
	seq := atomic.AddUint64(&w.seq, 1)
	reports, err := w.backend.ListReports(ctx)
	if err != nil {
		return false, err
	}
	return w.apply(seq, reports), nil
}

func (w *ReportPoller) apply(seq uint64, reports []models.Report) bool {
	w.mu.Lock()
	if seq <= w.applied {
		w.mu.Unlock()
		metrics.StaleSnapshotsTotal.Inc()
		log.WithFields(log.Fields{"seq": seq, "applied": w.applied}).Debug("[poller] discarded stale snapshot")
		return false
	}
	snap := Snapshot{Seq: seq, Reports: reports, FetchedAt: time.Now()}
	w.applied = seq
	w.latest = &snap
	w.mu.Unlock()

	w.broadcast(snap)
	return true
}

// Latest returns the newest applied snapshot, or nil before the first fetch
func (w *ReportPoller) Latest() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

// Subscribe returns a channel receiving each newly applied snapshot and a
// function to unsubscribe. A slow subscriber only ever sees the newest snapshot.
func (w *ReportPoller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	w.subMu.Lock()
	id := w.nextSubID
	w.nextSubID++
	w.subscribers[id] = ch
	w.subMu.Unlock()

	return ch, func() {
		w.subMu.Lock()
		if _, ok := w.subscribers[id]; ok {
			delete(w.subscribers, id)
			close(ch)
		}
		w.subMu.Unlock()
	}
}

func (w *ReportPoller) broadcast(snap Snapshot) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subscribers {
		// Replace an unread older snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
