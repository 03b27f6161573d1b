// pkg/queue/queue.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/finsight/finserv-docs/config"
)

// TaskTypeSummaryGenerate asks the worker to generate and persist a summary
// for an already-ingested document.
const TaskTypeSummaryGenerate = "summary:generate"

// statusTTL bounds how long a finished task's status record survives.
const statusTTL = 24 * time.Hour

// SummaryTask 摘要任务
type SummaryTask struct {
	DocumentID string `json:"documentId"`
	Question   string `json:"question,omitempty"`
}

// SummaryStatus records the outcome of the latest summary task for a
// document. Exposed on document reads so callers can see whether their
// summary is still pending.
type SummaryStatus struct {
	DocumentID string    `json:"documentId"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Queue 接口定义
type Queue interface {
	EnqueueSummary(ctx context.Context, task *SummaryTask) error
	SaveStatus(ctx context.Context, status *SummaryStatus) error
	GetStatus(ctx context.Context, documentID string) (*SummaryStatus, error)
}

// AsynqQueue 实现
type AsynqQueue struct {
	client *asynq.Client
	redis  *redis.Client
}

func NewQueue(cfg *config.QueueConfig) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	}

	return &AsynqQueue{
		client: asynq.NewClient(redisOpt),
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
	}, nil
}

// EnqueueSummary queues a summary-generation task. The task id is derived
// from the document id, so enqueueing the same document twice (a retried
// upload, a duplicate race) collapses onto a single pending task.
func (q *AsynqQueue) EnqueueSummary(ctx context.Context, task *SummaryTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.TaskID(TaskTypeSummaryGenerate + ":" + task.DocumentID),
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
		asynq.Queue("default"),
	}

	t := asynq.NewTask(TaskTypeSummaryGenerate, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// already queued; idempotent
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// SaveStatus 保存任务状态
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *SummaryStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	key := statusKey(status.DocumentID)
	if err := q.redis.Set(ctx, key, data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}

	return nil
}

// GetStatus returns the latest status, or nil when none is recorded.
func (q *AsynqQueue) GetStatus(ctx context.Context, documentID string) (*SummaryStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(documentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	var status SummaryStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}

func statusKey(documentID string) string {
	return "summary_status:" + documentID
}
