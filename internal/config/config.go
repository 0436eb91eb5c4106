package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host        string
	Port        string
	Mode        string
	CORSOrigins []string
}

type Storage struct {
	Driver    string
	Namespace string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Advisor struct {
	BaseURL string
	Timeout time.Duration
}

type Auth struct {
	Servers string
	Timeout time.Duration
}

type Client struct {
	CookieName string
	Secret     string
	TTL        time.Duration
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// Janitor bounds the in-memory per-client bookkeeping.
type Janitor struct {
	Interval time.Duration
	IdleTTL  time.Duration
}

type Config struct {
	HTTP      HTTPServer
	Storage   Storage
	Redis     RedisCache
	Postgres  Postgres
	Advisor   Advisor
	Auth      Auth
	Client    Client
	RateLimit RateLimit
	Janitor   Janitor
}

const (
	logtag = "[config]"

	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := FromEnv()
	log.Printf("%s backend config : %+v\n", logtag, cfg.redacted())
	return cfg
}

// FromEnv builds the config from the current environment only.
func FromEnv() *Config {
	return &Config{
		HTTP:      *newHTTP(),
		Storage:   *newStorage(),
		Redis:     *newRedis(),
		Postgres:  *newPostgres(),
		Advisor:   *newAdvisor(),
		Auth:      *newAuth(),
		Client:    *newClient(),
		RateLimit: *newRateLimit(),
		Janitor:   *newJanitor(),
	}
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port:        getenv("HTTP_PORT", "8080"),
		Host:        getenv("HTTP_HOST", "localhost"),
		Mode:        getenv("HTTP_MODE", "RW"),
		CORSOrigins: splitList(getenv("HTTP_CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
	}
}

func newStorage() *Storage {
	return &Storage{
		Driver:    getenv("STORAGE_DRIVER", StorageMemory),
		Namespace: getenv("STORAGE_NAMESPACE", "local_storage"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", "shared"),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "test"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newAdvisor() *Advisor {
	return &Advisor{
		BaseURL: getenv("ADVISOR_URL", "http://127.0.0.1:8000"),
		Timeout: getduration("ADVISOR_TIMEOUT", 30*time.Second),
	}
}

func newAuth() *Auth {
	return &Auth{
		Servers: getenv("AUTH_SERVERS", "http://localhost:8000"),
		Timeout: getduration("AUTH_TIMEOUT", 5*time.Second),
	}
}

func newClient() *Client {
	return &Client{
		CookieName: getenv("CLIENT_COOKIE", "kinoshelf_client"),
		Secret:     getenv("CLIENT_SECRET", "shared"),
		TTL:        getduration("CLIENT_TTL", 365*24*time.Hour),
	}
}

func newRateLimit() *RateLimit {
	rps, err := strconv.ParseFloat(getenv("ADVISOR_RPS", "5"), 64)
	if err != nil {
		log.Printf("%s ADVISOR_RPS malformed, using 5", logtag)
		rps = 5
	}
	burst, err := strconv.Atoi(getenv("ADVISOR_BURST", "10"))
	if err != nil {
		log.Printf("%s ADVISOR_BURST malformed, using 10", logtag)
		burst = 10
	}
	return &RateLimit{RPS: rps, Burst: burst}
}

func newJanitor() *Janitor {
	return &Janitor{
		Interval: getduration("JANITOR_INTERVAL", time.Minute),
		IdleTTL:  getduration("JANITOR_IDLE_TTL", 30*time.Minute),
	}
}

func (c Config) redacted() Config {
	c.Redis.Password = "***"
	c.Postgres.Password = "***"
	c.Client.Secret = "***"
	return c
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getduration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s %s malformed (%v), using %s", logtag, key, err, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw, sep string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
