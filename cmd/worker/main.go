package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "github.com/finsight/finserv-docs/config"
    "github.com/finsight/finserv-docs/internal/service/document"
    "github.com/finsight/finserv-docs/pkg/logger"
    "github.com/finsight/finserv-docs/pkg/queue"
    "github.com/finsight/finserv-docs/pkg/worker"
)

func main() {

    // 初始化日志
    log, err := logger.NewLogger(
        logger.WithLevel("info"),
        logger.WithEncoding("json"),
        logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
    )
    if err != nil {
        panic(err)
    }
    defer log.Sync()

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // 创建文档服务
    docService, err := document.GetService(ctx, log)
    if err != nil {
        log.Error("Failed to create document service", logger.Error(err))
        os.Exit(1)
    }

    queueCfg := config.GetQueueConfig()

    // 状态写回用的队列客户端
    statuses, err := queue.NewQueue(queueCfg)
    if err != nil {
        log.Error("Failed to connect to queue backend", logger.Error(err))
        os.Exit(1)
    }

    // 创建 worker 配置
    workerCfg := &worker.Config{
        RedisAddr:   queueCfg.RedisAddr,
        RedisDB:     queueCfg.RedisDB,
        Concurrency: queueCfg.Concurrency,
        Queues: map[string]int{
            "critical": 6,
            "default":  3,
            "low":      1,
        },
    }

    // 创建 worker
    summaryWorker, err := worker.NewSummaryWorker(workerCfg, docService, statuses, log)
    if err != nil {
        log.Error("Failed to create summary worker", logger.Error(err))
        os.Exit(1)
    }

    // 启动 worker
    if err := summaryWorker.Start(ctx); err != nil {
        log.Error("Failed to start worker", logger.Error(err))
        os.Exit(1)
    }

    // 等待中断信号
    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
    <-sigChan

    // 优雅关闭
    log.Info("Shutting down worker...")
    summaryWorker.Stop()
    log.Info("Worker stopped")
}
