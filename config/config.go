package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
)

// RedisConfig Redis connection settings for the durable store
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	IdleTimeout int // seconds
}

// Config application settings, loaded from the environment
type Config struct {
	// PassBi remote API
	APIBaseURL string
	APIToken   string        // session token injected at startup (empty = anonymous)
	APITimeout time.Duration // per-request timeout

	// Connectivity probe
	ProbeURL     string
	ProbeTimeout time.Duration

	// Cache policy
	OperatorFreshness  time.Duration // max age of the operator snapshot
	UserFreshness      time.Duration // max age of the user profile
	MinRefreshInterval time.Duration // floor between successful forced refreshes
	AutoRefreshCheck   time.Duration // background staleness check period
	SnapshotTTL        time.Duration // durable store TTL for persisted snapshots

	// Durable store
	Redis     RedisConfig
	KeyPrefix string

	// Sync journal (Elasticsearch, optional)
	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string
	JournalIndex          string

	// Web surface
	WebPort  int
	LogDebug bool
}

// LoadConfig loads settings from environment variables with defaults
func LoadConfig() *Config {
	// optional .env file
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	} else {
		log.Println(".env file loaded")
	}

	cfg := &Config{
		APIBaseURL: getEnv("PASSBI_API_BASE_URL", "https://api.passbi.sn/api/v1"),
		APIToken:   getEnv("PASSBI_API_TOKEN", ""),
		APITimeout: getDuration("PASSBI_API_TIMEOUT_SECONDS", 30),

		ProbeURL:     getEnv("CONNECTIVITY_PROBE_URL", "https://api.passbi.sn/api/v1/health"),
		ProbeTimeout: getDuration("CONNECTIVITY_PROBE_TIMEOUT_SECONDS", 5),

		OperatorFreshness:  getDurationMinutes("OPERATOR_FRESHNESS_MINUTES", 60),
		UserFreshness:      getDurationMinutes("USER_FRESHNESS_MINUTES", 15),
		MinRefreshInterval: getDuration("MIN_REFRESH_INTERVAL_SECONDS", 30),
		AutoRefreshCheck:   getDurationMinutes("AUTO_REFRESH_CHECK_MINUTES", 5),
		SnapshotTTL:        getDurationMinutes("SNAPSHOT_TTL_MINUTES", 7*24*60),

		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getIntEnv("REDIS_DB", 0),
			MaxRetries:  getIntEnv("REDIS_MAX_RETRIES", 3),
			PoolSize:    getIntEnv("REDIS_POOL_SIZE", 10),
			IdleTimeout: getIntEnv("REDIS_IDLE_TIMEOUT_SECONDS", 240),
		},
		KeyPrefix: getEnv("CACHE_KEY_PREFIX", "passbi:"),

		ElasticsearchURL:      getEnv("ELASTICSEARCH_URL", ""),
		ElasticsearchUsername: getEnv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPassword: getEnv("ELASTICSEARCH_PASSWORD", ""),
		JournalIndex:          getEnv("JOURNAL_INDEX", "passbi-refresh-journal"),

		WebPort:  getIntEnv("WEB_PORT", 8080),
		LogDebug: getBoolEnv("LOG_DEBUG", false),
	}

	return cfg
}
