package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/metrics"
	"riffraff/internal/platform/tasklog"
)

var ErrQueueFull = errors.New("task queue is full")

// Job is the body of a background task. It receives a context that is
// independent of whatever request scheduled it.
type Job func(ctx context.Context) error

type Task struct {
	ID      string
	Name    string
	Subject string
	Run     Job
}

// FailureRecorder persists failed tasks.
type FailureRecorder interface {
	Record(ctx context.Context, f tasklog.Failure) error
}

// Queue runs fire-and-forget tasks on a fixed pool of workers. Enqueue
// never blocks; failures are logged, counted and recorded, never returned
// to the submitter.
type Queue struct {
	tasks    chan Task
	workers  int
	timeout  time.Duration
	recorder FailureRecorder

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewQueue(cfg config.WorkersConfig, recorder FailureRecorder) *Queue {
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	workers := cfg.Count
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		tasks:    make(chan Task, size),
		workers:  workers,
		timeout:  cfg.TaskTimeout,
		recorder: recorder,
	}
}

func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	log.Info().Int("workers", q.workers).Int("capacity", cap(q.tasks)).Msg("task queue started")
}

// Enqueue submits a task and reports whether it was accepted. A full or
// stopped queue drops the task.
func (q *Queue) Enqueue(name, subject string, job Job) bool {
	task := Task{ID: uuid.NewString(), Name: name, Subject: subject, Run: job}

	if q.offer(task) {
		metrics.TasksEnqueued.WithLabelValues(name, "accepted").Inc()
		return true
	}

	metrics.TasksEnqueued.WithLabelValues(name, "dropped").Inc()
	log.Warn().Str("task", name).Str("task_id", task.ID).Str("subject", subject).Msg("task dropped")
	q.recordFailure(task, ErrQueueFull)
	return false
}

func (q *Queue) offer(task Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return false
	}
	select {
	case q.tasks <- task:
		metrics.QueueDepth.Inc()
		return true
	default:
		return false
	}
}

// Len is the number of tasks waiting for a worker.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Stop stops accepting tasks and waits for queued ones to drain, or for ctx
// to end.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("task queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for task := range q.tasks {
		metrics.QueueDepth.Dec()
		q.run(task)
	}
}

func (q *Queue) run(task Task) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	logger := log.With().Str("task", task.Name).Str("task_id", task.ID).Str("subject", task.Subject).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	err := q.safeRun(ctx, task)
	if err != nil {
		metrics.TasksCompleted.WithLabelValues(task.Name, "failure").Inc()
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("task failed")
		q.recordFailure(task, err)
		return
	}

	metrics.TasksCompleted.WithLabelValues(task.Name, "success").Inc()
	logger.Debug().Dur("duration", time.Since(start)).Msg("task completed")
}

func (q *Queue) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}

func (q *Queue) recordFailure(task Task, cause error) {
	if q.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := q.recorder.Record(ctx, tasklog.Failure{
		TaskID:   task.ID,
		TaskName: task.Name,
		Subject:  task.Subject,
		Error:    cause.Error(),
	})
	if err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Msg("failed to record task failure")
	}
}
