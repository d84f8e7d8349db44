// Package config holds the configuration of the explorer commands.
package config

import "time"

// ExplorerCfg stores the global configs of the explorer
type ExplorerCfg struct {
	// DataDir is where the explorer.yml config file is looked for
	DataDir string
	// LogLevel logging level
	LogLevel string
	// LogOutput logging output (stdout, stderr or a file path)
	LogOutput string
	// LogErrorFile if set, errors are also written to this file
	LogErrorFile string
	// Languages preferred languages for the localizable texts, most preferred first
	Languages []string
	// Color colorizes the terminal output
	Color bool
	// JSON prints JSON instead of tables
	JSON bool

	Backend *BackendCfg
	Query   *QueryCfg
	API     *APICfg
}

// BackendCfg stores the configs of the election data source
type BackendCfg struct {
	// URL of the backend API
	URL string
	// Token optional bearer token (UUID) for the backend API
	Token string
	// DataFile if set, the data is read from this JSON snapshot instead of the backend
	DataFile string
}

// QueryCfg stores the configs of the query cache
type QueryCfg struct {
	// CacheSize maximum number of cached queries
	CacheSize int
	// StaleTime is how long fetched data is fresh, for the queries without their own
	StaleTime time.Duration
	// Retries after a failed fetch, negative disables retrying
	Retries int
	// RetryDelay initial delay between retries
	RetryDelay time.Duration
}

// APICfg stores the configs of the explorer HTTP API
type APICfg struct {
	// Host listen address
	Host string
	// Port listen port
	Port int
	// Route base path of the API
	Route string
	// AdminToken bearer token for the admin handlers, they are disabled if empty
	AdminToken string
	// TLSDomain if set, a letsencrypt certificate is fetched for it
	TLSDomain string
	// TLSDirCert directory where the certificates are stored
	TLSDirCert string
	// Metrics exposes the prometheus metrics under /metrics
	Metrics bool
}

// NewConfig returns an ExplorerCfg filled with the defaults.
func NewConfig() *ExplorerCfg {
	return &ExplorerCfg{
		LogLevel:  DefaultLogLevel,
		LogOutput: DefaultLogOutput,
		Languages: []string{DefaultLanguage},
		Color:     true,
		Backend:   &BackendCfg{URL: DefaultBackendURL},
		Query: &QueryCfg{
			CacheSize:  DefaultCacheSize,
			StaleTime:  DefaultStaleTime,
			Retries:    DefaultRetries,
			RetryDelay: DefaultRetryDelay,
		},
		API: &APICfg{
			Host:  DefaultHost,
			Port:  DefaultPort,
			Route: DefaultRoute,
		},
	}
}
