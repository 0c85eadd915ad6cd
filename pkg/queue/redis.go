package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"AstroChart/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueMode selects which halves of the queue run in this process.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
	ModeConsumerOnly
)

func (m QueueMode) String() string {
	switch m {
	case ModeProducerOnly:
		return "producer-only"
	case ModeConsumerOnly:
		return "consumer-only"
	default:
		return "producer-consumer"
	}
}

func (m QueueMode) consumes() bool { return m != ModeProducerOnly }

const retryBatch = 100

// promoteScript moves one due message from the retry set to the work list.
// Only the caller whose ZREM succeeds pushes it, so replicas never duplicate.
var promoteScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 1 then
	redis.call('LPUSH', KEYS[2], ARGV[1])
	return 1
end
return 0
`)

type queueKeys struct {
	messages string
	retry    string
	dead     string
}

func newQueueKeys(prefix string) queueKeys {
	return queueKeys{
		messages: prefix + ":messages",
		retry:    prefix + ":retry",
		dead:     prefix + ":dlq",
	}
}

// RedisQueue keeps pending messages in a list. Failed messages wait in a
// sorted set scored by their retry time; messages that exhaust RetryLimit
// or fail permanently land in a dead-letter list.
type RedisQueue struct {
	logger *logger.Logger
	config QueueConfig
	client redis.UniversalClient
	mode   QueueMode
	keys   queueKeys
	now    func() time.Time

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix namespaces the queue's Redis keys.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		if prefix != "" {
			r.keys = newQueueKeys(prefix)
		}
	}
}

func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client redis.UniversalClient, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	var cfg QueueConfig
	if config != nil {
		cfg = *config
	}
	cfg.Workers = max(cfg.Workers, 1)
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if lgr == nil {
		lgr = logger.Nop()
	}

	r := &RedisQueue{
		logger: lgr,
		config: cfg,
		client: client,
		mode:   mode,
		keys:   newQueueKeys("astro:queue"),
		now:    time.Now,
		jobs:   map[string]Job{},
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisQueue) RegisterJobs(jobs ...Job) {
	for _, job := range jobs {
		r.RegisterJob(job)
	}
}

// RegisterJob binds job to its message type. The first registration wins.
func (r *RedisQueue) RegisterJob(job Job) {
	if !r.mode.consumes() {
		r.logger.Warn("producer-only queue ignores jobs", logger.String("job", job.Name()))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.jobs[job.Type()]; ok {
		r.logger.Warn("duplicate job type",
			logger.String("type", job.Type()),
			logger.String("kept", prev.Name()),
			logger.String("ignored", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.logger.Info("job registered", logger.String("job", job.Name()), logger.String("type", job.Type()))
}

// Start checks Redis is reachable, then launches the workers and the retry
// promoter unless the queue is producer-only.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("queue already running")
	}

	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	if r.mode.consumes() {
		r.wg.Add(r.config.Workers + 1)
		for i := 0; i < r.config.Workers; i++ {
			go r.worker(i)
		}
		go r.promoter()
	}
	r.running = true
	r.logger.Info("redis queue started",
		logger.String("mode", r.mode.String()),
		logger.String("list", r.keys.messages),
		logger.Int("workers", r.config.Workers))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs until ctx expires.
// A job interrupted by the cancellation is pushed back for the next start.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	wasRunning := r.running
	r.running = false
	r.mu.Unlock()
	r.cancel()
	if !wasRunning {
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.logger.Info("redis queue stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue workers still busy: %w", ctx.Err())
	}
}

// Enqueue stores payload as a new message of msgType and returns its id.
// A consuming queue refuses types it has no job for.
func (r *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) (string, error) {
	r.mu.RLock()
	running := r.running
	_, known := r.jobs[msgType]
	r.mu.RUnlock()
	switch {
	case !running:
		return "", ErrNotRunning
	case r.mode.consumes() && !known:
		return "", fmt.Errorf("no job registered for type %q", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	msg := Message{ID: uuid.NewString(), Type: msgType, Payload: raw, Timestamp: r.now().UTC()}
	if err := r.push(ctx, r.keys.messages, msg, false); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// PublishMessage implements QueueService.
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	_, err := r.Enqueue(ctx, msgType, payload)
	return err
}

func (r *RedisQueue) Stats(ctx context.Context) (Stats, error) {
	var pending, retrying, dead *redis.IntCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		pending = p.LLen(ctx, r.keys.messages)
		retrying = p.ZCard(ctx, r.keys.retry)
		dead = p.LLen(ctx, r.keys.dead)
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	return Stats{Pending: pending.Val(), Retrying: retrying.Val(), Dead: dead.Val()}, nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	r.logger.Debug("queue worker started", logger.Int("worker", id))
	for r.ctx.Err() == nil {
		msg, ok := r.next()
		if ok {
			r.process(msg)
		}
	}
}

// next blocks for up to PollTimeout waiting for a message.
func (r *RedisQueue) next() (Message, bool) {
	var msg Message
	res, err := r.client.BRPop(r.ctx, r.config.PollTimeout, r.keys.messages).Result()
	switch {
	case errors.Is(err, redis.Nil), r.ctx.Err() != nil:
		return msg, false
	case err != nil:
		r.logger.Error("queue poll failed", logger.Error(err))
		r.sleep(time.Second)
		return msg, false
	case len(res) != 2:
		return msg, false
	}
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		r.logger.Error("undecodable queue message dropped", logger.Error(err))
		return msg, false
	}
	return msg, true
}

func (r *RedisQueue) process(msg Message) {
	r.mu.RLock()
	job, ok := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		msg.LastError = "no job for type " + msg.Type
		r.bury(msg)
		return
	}

	start := time.Now()
	err := job.Handle(WithMessageID(r.ctx, msg.ID), msg.Payload)
	fields := []logger.Field{
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Duration("elapsed", time.Since(start)),
	}
	switch {
	case err == nil:
		r.logger.Debug("message processed", fields...)
	case errors.Is(err, context.Canceled) && r.ctx.Err() != nil:
		r.logger.Warn("message interrupted by shutdown", fields...)
		if err := r.push(context.Background(), r.keys.messages, msg, true); err != nil {
			r.logger.Error("requeue failed", logger.String("id", msg.ID), logger.Error(err))
		}
	default:
		r.logger.Error("message failed", append(fields, logger.Int("attempt", msg.Attempts+1), logger.Error(err))...)
		r.fail(msg, err)
	}
}

// fail schedules another attempt with a doubling delay, or buries msg when
// err is permanent or the attempts are used up.
func (r *RedisQueue) fail(msg Message, err error) {
	msg.LastError = err.Error()
	if IsPermanent(err) || msg.Attempts >= r.config.RetryLimit {
		r.bury(msg)
		return
	}

	delay := r.config.RetryDelay << uint(min(msg.Attempts, 6))
	msg.Attempts++
	data, merr := json.Marshal(msg)
	if merr != nil {
		r.logger.Error("encode retry", logger.Error(merr))
		return
	}
	due := r.now().Add(delay)
	if zerr := r.client.ZAdd(context.Background(), r.keys.retry, redis.Z{Score: float64(due.Unix()), Member: data}).Err(); zerr != nil {
		r.logger.Error("schedule retry", logger.String("id", msg.ID), logger.Error(zerr))
	}
}

func (r *RedisQueue) bury(msg Message) {
	r.logger.Warn("message moved to dead-letter list",
		logger.String("id", msg.ID),
		logger.String("type", msg.Type),
		logger.Int("attempts", msg.Attempts),
		logger.String("last_error", msg.LastError))
	if err := r.push(context.Background(), r.keys.dead, msg, false); err != nil {
		r.logger.Error("dead-letter push failed", logger.String("id", msg.ID), logger.Error(err))
	}
}

// push adds msg to list key. Workers pop from the tail, so tail=true puts
// msg first in line.
func (r *RedisQueue) push(ctx context.Context, key string, msg Message, tail bool) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if tail {
		err = r.client.RPush(ctx, key, data).Err()
	} else {
		err = r.client.LPush(ctx, key, data).Err()
	}
	if err != nil {
		return fmt.Errorf("push %s: %w", key, err)
	}
	return nil
}

func (r *RedisQueue) promoter() {
	defer r.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.promoteDue()
		}
	}
}

func (r *RedisQueue) promoteDue() {
	due, err := r.client.ZRangeByScore(r.ctx, r.keys.retry, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(r.now().Unix(), 10),
		Count: retryBatch,
	}).Result()
	if err != nil {
		if r.ctx.Err() == nil {
			r.logger.Error("read retry set", logger.Error(err))
		}
		return
	}
	keys := []string{r.keys.retry, r.keys.messages}
	for _, member := range due {
		if err := promoteScript.Run(r.ctx, r.client, keys, member).Err(); err != nil {
			if r.ctx.Err() == nil {
				r.logger.Error("promote retry", logger.Error(err))
			}
			return
		}
	}
}

func (r *RedisQueue) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-r.ctx.Done():
	}
}
