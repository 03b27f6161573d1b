package config

import "sync"

var (
	queueOnce   sync.Once
	queueConfig *QueueConfig
)

// QueueConfig redis 队列配置
type QueueConfig struct {
	RedisAddr   string
	RedisDB     int
	Concurrency int
}

func GetQueueConfig() *QueueConfig {
	queueOnce.Do(func() {
		loadEnv()
		queueConfig = &QueueConfig{
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvInt("REDIS_DB", 0),
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		}
	})
	return queueConfig
}
