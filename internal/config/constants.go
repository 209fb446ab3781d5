// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "scorm-attempt-keep"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort            = ":8080"
	DefaultLogLevel              = "info"
	DefaultTransactionRetryLimit = 3
	DefaultScormPackageDir       = "./data/scorm"
	DefaultCORSOrigin            = "http://localhost:5173"
	DefaultAuthEnabled           = true
)
