package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func Load() App {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process env")
	}

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),
		Gateway: Gateway{
			BaseURL:      getenv("GATEWAY_BASE_URL", "https://pay.upigateway.in/api"),
			UserToken:    must("GATEWAY_USER_TOKEN"),
			RedirectURL:  getenv("GATEWAY_REDIRECT_URL", "http://localhost:8080/payment/return"),
			WebhookToken: os.Getenv("WEBHOOK_TOKEN"),
		},
		Redis: Redis{Addr: os.Getenv("REDIS_ADDR")},
		Kafka: Kafka{
			Brokers:      splitList(os.Getenv("KAFKA_BROKERS")),
			SettledTopic: getenv("SETTLED_TOPIC", "bill.settled"),
		},
		Sweep: Sweep{
			Schedule: getenv("SWEEP_SCHEDULE", "*/2 * * * *"),
			MaxAge:   getduration("SWEEP_MAX_AGE", 30*time.Minute),
		},
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("bad duration env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
