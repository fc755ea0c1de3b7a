package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var (
	client *http.Client
	once   sync.Once
)

// GetHttpClient returns the pooled client shared by the llm and embedding SDKs.
// Deadlines come from request contexts, so no client timeout is set.
func GetHttpClient() *http.Client {
	once.Do(func() {
		client = &http.Client{Transport: customTransport}
	})
	return client
}
