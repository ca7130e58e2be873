// Package env holds the environment variable names of the service
package env

const (
	// Prefix is the prefix of all service environment variables
	Prefix = "FXCROSS_"

	// DBURLSuffix is the suffix of the PostgreSQL connection URL variable
	DBURLSuffix = "DB_URL"

	// RedisURLSuffix is the suffix of the Redis connection URL variable
	RedisURLSuffix = "REDIS_URL"
)

// Name returns the full name of the variable with the given suffix
func Name(suffix string) string {
	return Prefix + suffix
}
