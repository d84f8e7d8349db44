package config

import "time"

// These consts are defaults used in ExplorerCfg
const (
	DefaultLogLevel   = "info"
	DefaultLogOutput  = "stderr"
	DefaultLanguage   = "en"
	DefaultBackendURL = "http://127.0.0.1:9090/v1"

	DefaultCacheSize  = 1024
	DefaultStaleTime  = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second

	DefaultHost  = "0.0.0.0"
	DefaultPort  = 9095
	DefaultRoute = "/v1"
)
