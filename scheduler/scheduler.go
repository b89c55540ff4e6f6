package scheduler

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

// Scheduler runs named periodic tasks (snapshots, daily briefings) and
// named one-shot delays (UI signal expiry). Re-registering a name replaces
// the previous task.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	timers  map[string]*timerEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped bool
}

type tickerEntry struct {
	interval time.Duration
	stopCh   chan struct{}
}

type timerEntry struct {
	timer *time.Timer
	due   time.Time
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		timers:  make(map[string]*timerEntry),
		stopCh:  make(chan struct{}),
		logger:  logger,
	}
}

func (s *Scheduler) run(kind, name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("kind", kind),
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
}

// AddTicker registers a task to run on a fixed interval.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || interval <= 0 {
		return
	}

	if old, ok := s.tickers[name]; ok {
		close(old.stopCh)
	}
	entry := &tickerEntry{interval: interval, stopCh: make(chan struct{})}
	s.tickers[name] = entry

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run("ticker", name, fn)
			case <-entry.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Debug("scheduler ticker registered", zap.String("name", name), zap.Duration("interval", interval))
}

// AddDelay runs fn once after the given delay.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if old, ok := s.timers[name]; ok {
		old.timer.Stop()
	}
	entry := &timerEntry{due: time.Now().Add(delay)}
	entry.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A replacement registered under the same name owns the slot now.
		if s.timers[name] == entry {
			delete(s.timers, name)
		}
		s.mu.Unlock()
		s.run("delay", name, fn)
	})
	s.timers[name] = entry
}

// Remove stops and removes a ticker or delay task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

func (s *Scheduler) removeLocked(name string) {
	if entry, ok := s.tickers[name]; ok {
		close(entry.stopCh)
		delete(s.tickers, name)
	}
	if t, ok := s.timers[name]; ok {
		t.timer.Stop()
		delete(s.timers, name)
	}
}

// RemovePrefix removes every task whose name starts with prefix, e.g. all
// tasks belonging to one account session.
func (s *Scheduler) RemovePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for name := range s.tickers {
		if strings.HasPrefix(name, prefix) {
			s.removeLocked(name)
			n++
		}
	}
	for name := range s.timers {
		if strings.HasPrefix(name, prefix) {
			s.removeLocked(name)
			n++
		}
	}
	return n
}

// Stop stops all tasks. Tasks registered afterwards are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
	for name, t := range s.timers {
		t.timer.Stop()
		delete(s.timers, name)
	}
	s.tickers = make(map[string]*tickerEntry)
}

// TaskInfo describes a registered task for the admin API.
type TaskInfo struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Interval time.Duration `json:"interval,omitempty"`
	Due      *time.Time    `json:"due,omitempty"`
}

// ListTickers returns the names of all registered ticker tasks, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks lists tickers and pending delays, sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskInfo, 0, len(s.tickers)+len(s.timers))
	for name, t := range s.tickers {
		out = append(out, TaskInfo{Name: name, Kind: "ticker", Interval: t.interval})
	}
	for name, t := range s.timers {
		due := t.due
		out = append(out, TaskInfo{Name: name, Kind: "delay", Due: &due})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
