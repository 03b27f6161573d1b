package config

import "sync"

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig
)

// StorageConfig picks the artifact store backend (minio or s3).
type StorageConfig struct {
	Type string
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()
		storageConfig = &StorageConfig{
			Type: getEnv("STORAGE_TYPE", "minio"),
		}
	})
	return storageConfig
}
