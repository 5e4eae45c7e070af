package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Logger   LoggerConfig        `mapstructure:"logger"`
	Database DatabaseConfig      `mapstructure:"database"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Kafka    KafkaConfig         `mapstructure:"kafka"`
	Elastic  ElasticsearchConfig `mapstructure:"elastic"`
}

type ServerConfig struct {
	AppEnv          string        `mapstructure:"app_env"`
	HTTPPort        string        `mapstructure:"http_port"`
	GRPCPort        string        `mapstructure:"grpc_port"`
	Timezone        string        `mapstructure:"timezone"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DatabaseConfig selects the SQL driver: "pgx" for PostgreSQL or "sqlite3" for a local file.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig is optional; an empty Addr disables the board cache and pub/sub.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig is optional; no brokers disables the event log and the weighing listener.
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	EventsTopic   string   `mapstructure:"events_topic"`
	WeighingTopic string   `mapstructure:"weighing_topic"`
	GroupID       string   `mapstructure:"group_id"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Load reads an optional config.yaml from ./configs or the working directory and lets
// environment variables override every key.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the business timezone used for default session dates.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Server.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_env", "dev")
	v.SetDefault("server.http_port", ":8080")
	v.SetDefault("server.grpc_port", ":8082")
	v.SetDefault("server.timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.disable_caller", false)
	v.SetDefault("logger.disable_stacktrace", true)

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.sqlite_path", "pricing.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5433")
	v.SetDefault("postgres.user", "omnipos")
	v.SetDefault("postgres.password", "omnipos")
	v.SetDefault("postgres.dbname", "omnipos_pricing")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 300*time.Second)
	v.SetDefault("postgres.conn_max_idle_time", 60*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.events_topic", "pricing.events")
	v.SetDefault("kafka.weighing_topic", "weighing.readings")
	v.SetDefault("kafka.group_id", "pricing")

	v.SetDefault("elastic.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elastic.username", "")
	v.SetDefault("elastic.password", "")
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.app_env", "APP_ENV")
	v.BindEnv("server.http_port", "HTTP_PORT")
	v.BindEnv("server.grpc_port", "GRPC_PORT")
	v.BindEnv("server.timezone", "APP_TIMEZONE")
	v.BindEnv("server.shutdown_timeout", "SHUTDOWN_TIMEOUT")

	// Logger
	v.BindEnv("logger.level", "LOGGER_LEVEL")
	v.BindEnv("logger.encoding", "LOGGER_ENCODING")
	v.BindEnv("logger.disable_caller", "LOGGER_DISABLE_CALLER")
	v.BindEnv("logger.disable_stacktrace", "LOGGER_DISABLE_STACKTRACE")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.sqlite_path", "SQLITE_PATH")

	v.BindEnv("postgres.host", "POSTGRES_HOST")
	v.BindEnv("postgres.port", "POSTGRES_PORT")
	v.BindEnv("postgres.user", "POSTGRES_USER")
	v.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	v.BindEnv("postgres.dbname", "POSTGRES_DB")
	v.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	v.BindEnv("postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	v.BindEnv("postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	v.BindEnv("postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")
	v.BindEnv("postgres.conn_max_idle_time", "POSTGRES_CONN_MAX_IDLE_TIME")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// Kafka
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.events_topic", "KAFKA_TOPIC_EVENTS")
	v.BindEnv("kafka.weighing_topic", "KAFKA_TOPIC_WEIGHING")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_PRICING")

	// Elasticsearch
	v.BindEnv("elastic.addresses", "ELASTICSEARCH_ADDRESSES")
	v.BindEnv("elastic.username", "ELASTICSEARCH_USERNAME")
	v.BindEnv("elastic.password", "ELASTICSEARCH_PASSWORD")
}
