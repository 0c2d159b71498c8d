package main

import (
	"context"
	"log"
	"os"

	"github.com/advocaid/auth-client/internal/configs"
	"github.com/advocaid/auth-client/internal/stubapi"
	"github.com/advocaid/auth-client/pkg/mail"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	cfg, err := configs.Load(env)
	if err != nil {
		log.Printf("No config file found (%v), using defaults", err)
		cfg = configs.Default(env)
	}

	users, err := stubapi.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var cache stubapi.CacheService
	if redisCache, err := stubapi.InitRedis(context.Background(), cfg); err == nil {
		cache = redisCache
	} else {
		log.Printf("Redis unavailable, falling back to in-memory cache")
		cache = stubapi.NewMemoryCache()
	}

	app := stubapi.New(cfg, users, cache, mail.NewMailerService(cfg))

	log.Printf("Stub auth API listening at http://localhost:%s", cfg.Stub.HTTPPort)
	log.Fatal(app.Listen(cfg.ListenAddress()))
}
