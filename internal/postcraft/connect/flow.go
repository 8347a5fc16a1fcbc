package connect

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
)

const (
	DefaultDelay       = 1500 * time.Millisecond
	DefaultFailureRate = 0.1
)

// Rand is the outcome source for the simulated authorization step.
type Rand interface {
	Float64() float64
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Options configures a Flow. Zero values select the defaults.
type Options struct {
	Delay       time.Duration
	FailureRate float64
	Rand        Rand
	Scheduler   Scheduler
	// OnChange is called after every state change, including timer-driven ones.
	OnChange func(Session)
}

// Flow drives one connection session. Starting a new connect while another
// attempt is in progress overwrites it; the old attempt's timer is ignored.
type Flow struct {
	mu          sync.Mutex
	session     Session
	delay       time.Duration
	failureRate float64
	rnd         Rand
	sched       Scheduler
	onChange    func(Session)
}

// NewFlow returns an idle flow.
func NewFlow(opts Options) *Flow {
	f := &Flow{
		session:     Session{Step: Idle},
		delay:       opts.Delay,
		failureRate: opts.FailureRate,
		rnd:         opts.Rand,
		sched:       opts.Scheduler,
		onChange:    opts.OnChange,
	}
	if f.delay <= 0 {
		f.delay = DefaultDelay
	}
	if f.failureRate <= 0 {
		f.failureRate = DefaultFailureRate
	}
	if f.rnd == nil {
		f.rnd = globalRand{}
	}
	if f.sched == nil {
		f.sched = timeScheduler{}
	}
	return f
}

// Session returns a snapshot of the current session.
func (f *Flow) Session() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Connect starts a flow for p.
func (f *Flow) Connect(p postcraft.Platform) (Session, error) {
	return f.apply(Event{Kind: EventConnect, Platform: p})
}

// Allow grants the requested permissions.
func (f *Flow) Allow() (Session, error) { return f.apply(Event{Kind: EventAllow}) }

// Cancel abandons an in-progress attempt.
func (f *Flow) Cancel() (Session, error) { return f.apply(Event{Kind: EventCancel}) }

// Retry restarts a failed attempt for the same platform.
func (f *Flow) Retry() (Session, error) { return f.apply(Event{Kind: EventRetry}) }

// Back leaves a failed attempt.
func (f *Flow) Back() (Session, error) { return f.apply(Event{Kind: EventBack}) }

// Close resets the flow completely.
func (f *Flow) Close() (Session, error) { return f.apply(Event{Kind: EventClose}) }

// Apply feeds an arbitrary event to the flow.
func (f *Flow) Apply(ev Event) (Session, error) { return f.apply(ev) }

func (f *Flow) apply(ev Event) (Session, error) {
	f.mu.Lock()
	next, err := Transition(f.session, ev)
	if err != nil {
		f.mu.Unlock()
		return next, err
	}
	f.session = next
	if next.Pending() {
		attempt := next.Attempt
		f.sched.AfterFunc(f.delay, func() { f.elapse(attempt) })
	}
	f.mu.Unlock()

	logutil.Debugf("connect: %s -> step=%s stage=%s platform=%s", ev.Kind, next.Step, next.Stage, next.Platform)
	f.notify(next)
	return next, nil
}

func (f *Flow) elapse(attempt int) {
	f.mu.Lock()
	if f.session.Attempt != attempt || !f.session.Pending() {
		f.mu.Unlock()
		logutil.Debugf("connect: dropping stale timer for attempt %d", attempt)
		return
	}
	ev := Event{Kind: EventTimer}
	if f.session.Stage == StageAuthorizing {
		ev.Success = f.rnd.Float64() >= f.failureRate
	}
	next, err := Transition(f.session, ev)
	if err != nil {
		f.mu.Unlock()
		logutil.Errorf("connect: timer transition failed: %v", err)
		return
	}
	f.session = next
	f.mu.Unlock()

	logutil.Debugf("connect: timer -> step=%s platform=%s", next.Step, next.Platform)
	f.notify(next)
}

func (f *Flow) notify(s Session) {
	if f.onChange != nil {
		f.onChange(s)
	}
}
