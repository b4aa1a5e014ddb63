// Package config loads application configuration from environment
// variables.  Every value has a documented default so the service can
// start against a local MongoDB with no configuration at all, matching
// the desktop application it replaces.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultDepartureTimes is the fixed ordered list of departure slots
// the original timetable ships with.  DEPARTURE_TIMES overrides it.
var DefaultDepartureTimes = []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00"}

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	MongoURI          string        // connection string for the reservation store
	MongoDB           string        // database name
	MongoCollection   string        // reservation collection name
	MongoTimeout      time.Duration // server selection / ping timeout
	ConnectRetries    int           // connection attempts before startup fails
	ConnectRetryDelay time.Duration // fixed delay between attempts

	BusCapacity    int      // number of seats on the vehicle
	DepartureTimes []string // ordered departure time labels
}

// Load reads the environment and returns a Config.  Invalid numeric
// values fall back to their defaults with a log line rather than
// aborting: a misconfigured capacity must not take the service down.
func Load() Config {
	cfg := Config{
		Env:               envStr("APP_ENV", "dev"),
		Port:              envStr("APP_PORT", "8080"),
		MongoURI:          envStr("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDB:           envStr("MONGO_DB", "reserva_onibus_db"),
		MongoCollection:   envStr("MONGO_COLLECTION", "reservas"),
		MongoTimeout:      envDur("MONGO_TIMEOUT", 5*time.Second),
		ConnectRetries:    envInt("MONGO_CONNECT_RETRIES", 5),
		ConnectRetryDelay: envDur("MONGO_CONNECT_RETRY_DELAY", 5*time.Second),
		BusCapacity:       envInt("BUS_CAPACITY", 20),
		DepartureTimes:    envList("DEPARTURE_TIMES", DefaultDepartureTimes),
	}
	if cfg.BusCapacity < 1 {
		log.Printf("config: invalid BUS_CAPACITY %d, using 20", cfg.BusCapacity)
		cfg.BusCapacity = 20
	}
	if cfg.ConnectRetries < 1 {
		cfg.ConnectRetries = 1
	}
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
