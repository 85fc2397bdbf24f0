package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job interface that all scheduled jobs must implement. NextRun is consulted
// after each run completes, which gives interval jobs fixed-delay semantics:
// the gap is measured from the end of one run to the start of the next.
type Job interface {
	Run(ctx context.Context) error
	NextRun() time.Time
}

// Scheduler manages and runs background jobs. Each job runs on its own
// timer; a job is never scheduled again until its previous run has returned,
// so no two runs of the same job ever overlap. A failed run is logged and
// rescheduled; it never stops the scheduler.
type Scheduler struct {
	jobs    map[string]Job
	timers  map[string]*time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new job scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]Job),
		timers: make(map[string]*time.Timer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a job to the scheduler.
func (s *Scheduler) Register(name string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[name] = job
	log.Printf("[SCHEDULER] Registered job: %s", name)
}

// Start begins running all registered jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	log.Printf("[SCHEDULER] Starting with %d jobs", len(s.jobs))

	for name, job := range s.jobs {
		s.scheduleJob(name, job)
	}
}

// scheduleJob arms the timer for a single job. Caller holds s.mu.
func (s *Scheduler) scheduleJob(name string, job Job) {
	duration := time.Until(job.NextRun())
	if duration < 0 {
		duration = 0
	}

	s.timers[name] = time.AfterFunc(duration, func() {
		s.runJob(name, job)
	})
}

// runJob executes a job and reschedules it.
func (s *Scheduler) runJob(name string, job Job) {
	s.wg.Add(1)
	defer s.wg.Done()

	if err := job.Run(s.ctx); err != nil {
		// The next run may well succeed; keep going.
		log.Printf("[SCHEDULER] Job '%s' failed: %v", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.scheduleJob(name, job)
	}
}

// Stop cancels all timers, interrupts running jobs via their context, and
// waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	log.Println("[SCHEDULER] Stopping...")
	s.running = false

	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[string]*time.Timer)

	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	log.Println("[SCHEDULER] Stopped")
}

// RunNow immediately runs a specific job, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()

	if !exists {
		return nil
	}
	return job.Run(s.ctx)
}
