package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/internal/service/document"
	"github.com/finsight/finserv-docs/pkg/logger"
	"github.com/finsight/finserv-docs/pkg/queue"
)

// SummaryWorker consumes summary:generate tasks and writes the first summary
// for freshly ingested documents.
type SummaryWorker struct {
	BaseWorker
	docService document.Service
	statuses   queue.Queue
}

func NewSummaryWorker(cfg *Config, docService document.Service, statuses queue.Queue, logger logger.Logger) (*SummaryWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &SummaryWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   logger,
			stopChan: make(chan struct{}),
		},
		docService: docService,
		statuses:   statuses,
	}

	// 注册任务处理器
	w.registerHandlers()
	return w, nil
}

func (w *SummaryWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeSummaryGenerate, w.handleSummaryGenerate)
}

func (w *SummaryWorker) handleSummaryGenerate(ctx context.Context, t *asynq.Task) error {
	var task queue.SummaryTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal summary task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal summary task: %w", err)
	}
	if task.DocumentID == "" {
		return fmt.Errorf("summary task missing document id")
	}

	w.logger.Info("Generating first summary",
		logger.String("documentId", task.DocumentID),
	)

	_, err := w.docService.UpdateSummary(ctx, task.DocumentID, task.Question)
	switch {
	case err == nil:
		w.saveStatus(ctx, task.DocumentID, "completed", "")
		return nil
	case errors.Is(err, models.ErrNotFound):
		// the document is gone; retrying cannot help
		w.logger.Warn("Document not found for summary task",
			logger.String("documentId", task.DocumentID),
		)
		w.saveStatus(ctx, task.DocumentID, "failed", err.Error())
		return nil
	case errors.Is(err, models.ErrInvalidInput):
		// no extractable text; a retry reads the same empty text
		w.saveStatus(ctx, task.DocumentID, "failed", err.Error())
		return nil
	default:
		// summarizer or store outage; asynq retries with backoff
		w.logger.Error("Summary generation failed",
			logger.String("documentId", task.DocumentID),
			logger.Error(err),
		)
		w.saveStatus(ctx, task.DocumentID, "retrying", err.Error())
		return err
	}
}

func (w *SummaryWorker) saveStatus(ctx context.Context, docID, state, errMsg string) {
	if w.statuses == nil {
		return
	}
	err := w.statuses.SaveStatus(ctx, &queue.SummaryStatus{
		DocumentID: docID,
		Status:     state,
		Error:      errMsg,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		w.logger.Error("Failed to save summary status", logger.Error(err))
	}
}

func (w *SummaryWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
