package novelai

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"image_bot/clock"
	"image_bot/entities"
	"image_bot/queue"
	"image_bot/repositories/default_settings"
	"image_bot/repositories/image_generations"
	"image_bot/repositories/settings"
)

// Client generates images upstream.
type Client interface {
	Inference(ctx context.Context, request *entities.NovelAIRequest) (*entities.NovelAIResponse, error)
}

type Config struct {
	// Client is nil when no NovelAI token was configured.
	Client      Client
	Generations image_generations.Repository
	Settings    settings.Repository
	Defaults    default_settings.Repository
	Clock       clock.Clock
	// OwnerID skips the gate and may change bot-wide settings.
	OwnerID string

	// RetryDelay is the pause between attempts on transient upstream errors.
	RetryDelay   time.Duration
	LoadingEmoji string
}

// NAIQueue runs generation jobs one at a time, in the order they were added.
type NAIQueue struct {
	client      Client
	generations image_generations.Repository
	settings    settings.Repository
	defaults    default_settings.Repository
	clock       clock.Clock
	ownerID     string
	retryDelay  time.Duration

	mu           sync.Mutex
	pending      []*Job
	draining     bool
	closed       bool
	generating   map[string]bool
	lastDone     map[string]time.Time
	loadingEmoji string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	gate    *Gate
	buttons *buttonStore
}

func New(cfg Config) *NAIQueue {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &NAIQueue{
		client:       cfg.Client,
		generations:  cfg.Generations,
		settings:     cfg.Settings,
		defaults:     cfg.Defaults,
		clock:        cfg.Clock,
		ownerID:      cfg.OwnerID,
		retryDelay:   cfg.RetryDelay,
		generating:   make(map[string]bool),
		lastDone:     make(map[string]time.Time),
		loadingEmoji: cfg.LoadingEmoji,
		ctx:          ctx,
		cancel:       cancel,
		buttons:      newButtonStore(),
	}
	q.gate = NewGate(GateConfig{
		State:      q,
		Settings:   cfg.Settings,
		Defaults:   cfg.Defaults,
		Clock:      cfg.Clock,
		Configured: cfg.Client != nil,
	})
	return q
}

func (q *NAIQueue) Gate() *Gate { return q.gate }

// Add queues job and starts draining if the queue was idle.
// The returned position is 0 when the job starts right away, otherwise its place in line.
// A job that is refused runs its follow-up before Add returns.
func (q *NAIQueue) Add(job *Job) (int, error) {
	if job == nil {
		return -1, ErrInvalidJob
	}
	position, err := q.add(job)
	if err != nil {
		q.runFollowUp(job, job.FollowUp)
	}
	return position, err
}

func (q *NAIQueue) add(job *Job) (int, error) {
	if job.Request == nil || job.Responder == nil {
		return -1, ErrInvalidJob
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return -1, ErrQueueClosed
	}
	if q.generating[job.Submitter.ID] && !job.Submitter.Owner {
		return -1, ErrAlreadyGenerating
	}

	q.generating[job.Submitter.ID] = true

	if q.draining {
		q.pending = append(q.pending, job)
		queueDepth.Set(float64(len(q.pending)))
		return len(q.pending), nil
	}

	q.draining = true
	q.wg.Add(1)
	go q.drain(job)
	return 0, nil
}

// Len is the number of jobs waiting, not counting the one generating.
func (q *NAIQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Generating reports whether submitter has a job queued or running.
func (q *NAIQueue) Generating(submitterID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generating[submitterID]
}

// LastDone is when submitter's last job finished.
func (q *NAIQueue) LastDone(submitterID string) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	last, ok := q.lastDone[submitterID]
	return last, ok
}

func (q *NAIQueue) LoadingEmoji() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadingEmoji
}

func (q *NAIQueue) SetLoadingEmoji(emoji string) {
	q.mu.Lock()
	q.loadingEmoji = emoji
	q.mu.Unlock()
}

// LoadingMessage is what a submitter sees before their job starts.
func (q *NAIQueue) LoadingMessage() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.draining {
		return q.loadingEmoji + positionContent(len(q.pending)+1)
	}
	return q.loadingEmoji + generatingContent
}

// Stop refuses new jobs and waits for the queued ones to finish.
// If ctx ends first, the running job is cancelled and the rest are abandoned.
func (q *NAIQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	defer q.buttons.purge()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

// release clears the submitter's in-progress flag. Completed jobs also start the cooldown.
func (q *NAIQueue) release(job *Job, completed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.generating, job.Submitter.ID)
	if completed {
		q.lastDone[job.Submitter.ID] = q.clock.Now()
	}
}

func (q *NAIQueue) Commands() []*discordgo.ApplicationCommand { return q.commands() }

func (q *NAIQueue) Handlers() queue.CommandHandlers { return q.handlers() }

func (q *NAIQueue) Components() queue.Components { return q.components() }
