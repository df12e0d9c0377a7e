package main

import (
	"context"
	"log"

	"github.com/lmarquezt/chatvault/internal/ai"
	"github.com/lmarquezt/chatvault/internal/chat"
	"github.com/lmarquezt/chatvault/internal/config"
	"github.com/lmarquezt/chatvault/internal/db"
	"github.com/lmarquezt/chatvault/internal/httpapi"
	"github.com/lmarquezt/chatvault/internal/stats"
	"github.com/lmarquezt/chatvault/internal/store"
	"github.com/lmarquezt/chatvault/internal/store/rabbitmq"
	"github.com/lmarquezt/chatvault/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(gdb, &chat.Job{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	st := store.New(gdb)

	// optional read cache; degrade silently when redis is absent
	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(context.Background()); err != nil {
		log.Printf("redis unavailable, cache disabled: %v", err)
	} else {
		st = st.WithCache(rds)
	}

	reg := ai.NewRegistry()
	reg.Register("groq", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := model
		if m == "" {
			m = cfg.GroqModel
		}
		return ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, m), nil
	})

	jobs := chat.NewJobRepo(gdb)
	chatSvc := chat.NewService(st, reg, "groq", cfg.GroqModel, cfg.SystemPrompt, jobs)
	agg := stats.New(st)

	// optional async path; the sync endpoint works without rabbit
	var pub *rabbitmq.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbitmq unavailable, async sends disabled: %v", err)
	} else {
		pub = p
		defer pub.Close()
	}

	r := httpapi.NewRouter(st, cfg, chatSvc, agg, pub)

	log.Printf("server listening addr=%s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
