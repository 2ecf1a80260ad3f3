package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage attempts are retried this many times in total, ConnectDelay apart.
	ConnectAttempts int           `env:"PG_CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectDelay    time.Duration `env:"PG_CONNECT_DELAY" envDefault:"2s"`
}

// KafkaConfig enables ledger event publication when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:""`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"ledger.entries"`

	// PublishTimeout caps the post-commit wait on delivery per mutation.
	PublishTimeout time.Duration `env:"KAFKA_PUBLISH_TIMEOUT" envDefault:"2s"`
}

// RiskConfig points at an optional YAML risk policy. Empty means defaults.
type RiskConfig struct {
	PolicyPath string `env:"RISK_POLICY_PATH" envDefault:""`
}
