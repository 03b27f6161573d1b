package config

import "sync"

var (
	serverOnce   sync.Once
	serverConfig *ServerConfig
)

type ServerConfig struct {
	Port          string
	MaxUploadSize int64
}

func GetServerConfig() *ServerConfig {
	serverOnce.Do(func() {
		loadEnv()
		serverConfig = &ServerConfig{
			Port:          getEnv("PORT", "8080"),
			MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		}
	})
	return serverConfig
}
