// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"` // ローカル開発用。本番はマイグレーションツールで管理
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type AppConfig struct {
	// 受験番号の一意制約違反・楽観ロック失敗時のリトライ回数
	TransactionRetryLimit int `mapstructure:"transaction_retry_limit"`
}

type ScormConfig struct {
	PackageDir string `mapstructure:"package_dir"`
}

type NotifyConfig struct {
	Mailer string `mapstructure:"mailer"` // "log" | "smtp" | "ses" | "" (メール通知なし)
	To     string `mapstructure:"to"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" | "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Auth     AuthConfig     `mapstructure:"auth"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Scorm    ScormConfig    `mapstructure:"scorm"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数 (例: APP_DATABASE_URL) でも上書きできる
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	applyDefaults(&Cfg, viper.IsSet("auth.enabled"))

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Transaction Retry Limit: %d", Cfg.App.TransactionRetryLimit)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)

	return nil
}

// applyDefaults は未設定の項目にデフォルト値を入れます
func applyDefaults(cfg *Config, authSet bool) {
	if cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.App.TransactionRetryLimit <= 0 {
		log.Printf("Transaction retry limit not set or invalid, using default '%d'", DefaultTransactionRetryLimit)
		cfg.App.TransactionRetryLimit = DefaultTransactionRetryLimit
	}
	if cfg.Scorm.PackageDir == "" {
		cfg.Scorm.PackageDir = DefaultScormPackageDir
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{DefaultCORSOrigin}
	}
	if cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	// 未設定なら認証は有効
	if !authSet {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		cfg.Auth.Enabled = DefaultAuthEnabled
	}
}
