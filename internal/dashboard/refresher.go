package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AutoRefreshPaths is the substring allow-list deciding which view paths
// poll automatically. Matching is deliberately a substring check, so an
// unrelated route like /admin-login also polls; kept as-is for parity with
// the upstream behavior.
var AutoRefreshPaths = []string{"dashboard", "admin", "parking_status"}

// ShouldAutoRefresh reports whether the view at path polls automatically.
func ShouldAutoRefresh(path string) bool {
	for _, p := range AutoRefreshPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Notifier surfaces user-visible messages, e.g. frame processing failures.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Refresher drives the dashboard: it owns the State, refreshes it on demand
// and on a timer, and backs off when the service keeps failing. Stop (or
// context cancellation) releases the timer; in-flight requests are not
// cancelled, and a stale response overwriting a newer one is accepted
// (last-response-wins).
type Refresher struct {
	api        API
	interval   time.Duration
	maxBackoff time.Duration
	notifier   Notifier
	onRender   func(State)
	logger     *logrus.Logger

	mu       sync.Mutex
	state    State
	failures int

	stopOnce sync.Once
	stop     chan struct{}
}

func NewRefresher(api API, interval, maxBackoff time.Duration, notifier Notifier, onRender func(State), logger *logrus.Logger) *Refresher {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	if onRender == nil {
		onRender = func(State) {}
	}
	return &Refresher{
		api:        api,
		interval:   interval,
		maxBackoff: maxBackoff,
		notifier:   notifier,
		onRender:   onRender,
		logger:     logger,
	}
}

// State returns a copy of the last known good view data.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh issues the status and recommendation fetches concurrently and
// waits for both. Either failure is logged and leaves the corresponding
// part of the state untouched. Returns false only when both fetches failed.
func (r *Refresher) Refresh(ctx context.Context) bool {
	var wg sync.WaitGroup
	var statusOK, recsOK bool

	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot, err := r.api.FetchStatus(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to fetch parking status")
			return
		}
		r.mu.Lock()
		r.state.Snapshot = snapshot
		r.state.StatusUpdatedAt = time.Now()
		r.mu.Unlock()
		statusOK = true
	}()
	go func() {
		defer wg.Done()
		result, err := r.api.FetchRecommendations(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to fetch recommendations")
			return
		}
		r.mu.Lock()
		r.state.Recommendation = result
		r.state.RecsUpdatedAt = time.Now()
		r.mu.Unlock()
		recsOK = true
	}()
	wg.Wait()

	r.onRender(r.State())
	return statusOK || recsOK
}

// RequestFrameProcessing triggers a detection cycle. On success it refreshes
// the view; on transport failure or an application-reported failure it
// surfaces the reason and does not refresh.
func (r *Refresher) RequestFrameProcessing(ctx context.Context) {
	result, err := r.api.ProcessFrame(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Frame processing request failed")
		r.notifier.Notify("Frame processing failed: " + err.Error())
		return
	}
	if !result.Success {
		r.notifier.Notify("Frame processing failed: " + result.Message)
		return
	}
	r.Refresh(ctx)
}

// Run refreshes immediately, then on the configured interval until Stop or
// context cancellation. Consecutive cycles where both fetches fail double
// the wait up to maxBackoff; any progress resets it.
func (r *Refresher) Run(ctx context.Context) {
	r.mu.Lock()
	if r.stop == nil {
		r.stop = make(chan struct{})
	}
	stop := r.stop
	r.mu.Unlock()

	r.bumpFailures(r.Refresh(ctx))

	timer := time.NewTimer(r.wait())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-timer.C:
			r.bumpFailures(r.Refresh(ctx))
			timer.Reset(r.wait())
		}
	}
}

// Stop ends the polling loop. Safe to call more than once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.stop == nil {
		r.stop = make(chan struct{})
	}
	r.mu.Unlock()
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Refresher) bumpFailures(ok bool) {
	r.mu.Lock()
	if ok {
		r.failures = 0
	} else {
		r.failures++
	}
	r.mu.Unlock()
}

// wait returns the next poll delay: interval doubled per consecutive full
// failure, capped at maxBackoff.
func (r *Refresher) wait() time.Duration {
	r.mu.Lock()
	failures := r.failures
	r.mu.Unlock()

	d := r.interval
	if d > r.maxBackoff {
		return r.maxBackoff
	}
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= r.maxBackoff {
			return r.maxBackoff
		}
	}
	return d
}
