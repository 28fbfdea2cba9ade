// api/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Postgres      PostgresConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Auth          AuthConfiguration
	Cache         CacheConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// PostgresConfiguration stores data for database connection
type PostgresConfiguration struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// AuthConfiguration stores token verification settings
type AuthConfiguration struct {
	JWTSecret string
}

// CacheConfiguration stores the in-process cache tier settings
type CacheConfiguration struct {
	Query  CacheTierConfiguration
	Stats  CacheTierConfiguration
	Public CacheTierConfiguration
}

type CacheTierConfiguration struct {
	TTL           string
	MaxEntries    int
	SweepInterval string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("postgres.dsn", "host=localhost user=gurukul password=gurukul dbname=gurukul port=5432 sslmode=disable")
	viper.SetDefault("postgres.maxOpenConns", 25)
	viper.SetDefault("postgres.maxIdleConns", 5)
	viper.SetDefault("postgres.connMaxLifetime", "30m")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("auth.jwtSecret", "gurukul-dev-secret")
	viper.SetDefault("cache.query.ttl", "5m")
	viper.SetDefault("cache.query.maxEntries", 10000)
	viper.SetDefault("cache.query.sweepInterval", "1m")
	viper.SetDefault("cache.stats.ttl", "1m")
	viper.SetDefault("cache.stats.maxEntries", 1000)
	viper.SetDefault("cache.stats.sweepInterval", "30s")
	viper.SetDefault("cache.public.ttl", "30m")
	viper.SetDefault("cache.public.maxEntries", 20000)
	viper.SetDefault("cache.public.sweepInterval", "5m")
	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("log.dir", "logging")
	viper.SetDefault("log.level", "info")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
