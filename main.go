package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskdeck/auth"
	"taskdeck/storage"
)

func main() {
	_ = godotenv.Load()

	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	logger := log.New()
	if log.GetLevel() == log.DebugLevel {
		logger.SetLevel(log.DebugLevel)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")

	backend := strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	var kv storage.KV
	switch backend {
	case "", "file":
		dataFile := os.Getenv("TASKDECK_FILE")
		if dataFile == "" {
			dataFile = "taskdeck.json"
		}
		fkv, err := storage.NewFileKV(dataFile)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		kv = fkv
	case "memory":
		kv = storage.NewMemoryKV()
	case "redis":
		if redisConn == "" {
			log.Fatal("missing redis config")
		}
		kv = storage.NewRedisKV(redis.NewClient(parseRedisConn(redisConn)), os.Getenv("REDIS_PREFIX"))
	default:
		log.Fatalf("unknown STORAGE_BACKEND %q", backend)
	}

	repo := storage.NewTaskRepo(kv, logger)
	var tasks storage.TaskSource = repo
	if redisConn != "" && backend != "redis" {
		ttl := 5 * time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		tasks = storage.NewCache(repo, redis.NewClient(parseRedisConn(redisConn)), ttl)
	}

	sessions := auth.NewStore(kv, logger)

	app := newApp(sessions, tasks, kv, logger, os.Stdin, os.Stdout)
	if err := app.run(context.Background()); err != nil {
		log.Fatalf("app: %v", err)
	}
}

// parseRedisConn accepts either a redis URL or the comma-separated
// "host:port,password=...,ssl=true" form some hosted providers hand out.
func parseRedisConn(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
