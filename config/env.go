package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func loadDotEnv() {
	_ = godotenv.Load()
}

// applyEnvOverrides reads TJ_* environment variables and overwrites the
// corresponding fields when a variable is set. Secrets such as the DSN and
// S3 keys are expected to arrive this way.
func applyEnvOverrides(cfg *Config) {
	// Account
	setStr(&cfg.Account.Name, "TJ_ACCOUNT_NAME")
	setStr(&cfg.Account.Currency, "TJ_ACCOUNT_CURRENCY")
	setFloat64(&cfg.Account.Balance, "TJ_ACCOUNT_BALANCE")
	setFloat64(&cfg.Account.RiskPercent, "TJ_ACCOUNT_RISK_PERCENT")

	// Simulation
	setBool(&cfg.Simulation.Enabled, "TJ_SIMULATION_ENABLED")
	setFloat64(&cfg.Simulation.StartingBalance, "TJ_SIMULATION_STARTING_BALANCE")
	setFloat64(&cfg.Simulation.RiskPercent, "TJ_SIMULATION_RISK_PERCENT")

	// Storage
	setStr(&cfg.Storage.Type, "TJ_STORAGE_TYPE")
	setStr(&cfg.Storage.DBPath, "TJ_STORAGE_DB_PATH")
	setStr(&cfg.Storage.DSN, "TJ_STORAGE_DSN")
	setStr(&cfg.Storage.DSN, "TJ_DATABASE_URL") // common alias
	setInt(&cfg.Storage.MaxConns, "TJ_STORAGE_MAX_CONNS")

	// Blob
	setStr(&cfg.Blob.Type, "TJ_BLOB_TYPE")
	setStr(&cfg.Blob.Dir, "TJ_BLOB_DIR")
	setStr(&cfg.Blob.BaseURL, "TJ_BLOB_BASE_URL")
	setStr(&cfg.Blob.S3.Endpoint, "TJ_S3_ENDPOINT")
	setStr(&cfg.Blob.S3.Region, "TJ_S3_REGION")
	setStr(&cfg.Blob.S3.Bucket, "TJ_S3_BUCKET")
	setStr(&cfg.Blob.S3.AccessKey, "TJ_S3_ACCESS_KEY")
	setStr(&cfg.Blob.S3.SecretKey, "TJ_S3_SECRET_KEY")
	setBool(&cfg.Blob.S3.UseSSL, "TJ_S3_USE_SSL")
	setBool(&cfg.Blob.S3.ForcePathStyle, "TJ_S3_FORCE_PATH_STYLE")
	setStr(&cfg.Blob.S3.PublicURL, "TJ_S3_PUBLIC_URL")

	// Server
	setStr(&cfg.Server.Addr, "TJ_SERVER_ADDR")
	setStr(&cfg.Server.Mode, "TJ_SERVER_MODE")
	setStringSlice(&cfg.Server.CORSOrigins, "TJ_SERVER_CORS_ORIGINS")

	// Log
	setStr(&cfg.Log.Level, "TJ_LOG_LEVEL")
	setStr(&cfg.Log.Encoding, "TJ_LOG_ENCODING")
	setBool(&cfg.Log.Development, "TJ_LOG_DEVELOPMENT")

	// Backup
	setBool(&cfg.Backup.Enabled, "TJ_BACKUP_ENABLED")
	setStr(&cfg.Backup.Cron, "TJ_BACKUP_CRON")
	setStr(&cfg.Backup.Prefix, "TJ_BACKUP_PREFIX")
	setInt(&cfg.Backup.Keep, "TJ_BACKUP_KEEP")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
