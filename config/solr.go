package config

import (
	"strings"
	"sync"
)

var (
	solrOnce   sync.Once
	solrConfig *SolrConfig
)

// SolrConfig 搜索索引连接配置
type SolrConfig struct {
	BaseURL    string
	Collection string
}

// CollectionURL returns the core-scoped endpoint, e.g. http://host:8983/solr/finserv.
func (c *SolrConfig) CollectionURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + c.Collection
}

func GetSolrConfig() *SolrConfig {
	solrOnce.Do(func() {
		loadEnv()
		solrConfig = &SolrConfig{
			BaseURL:    getEnv("SOLR_BASE_URL", "http://localhost:8983/solr"),
			Collection: getEnv("SOLR_CORE", "finserv-docs"),
		}
	})
	return solrConfig
}
