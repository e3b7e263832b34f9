package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"umspanel/internal/audit"
	"umspanel/internal/config"
	"umspanel/internal/queue"
	"umspanel/internal/store"
)

// Worker drains login audit events from Redis into the audit store. It is
// only needed with QUEUE_BACKEND=redis; the memory queue is drained inside
// the panel.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend != "redis" {
		log.Fatalf("worker requires QUEUE_BACKEND=redis (got %q)", cfg.QueueBackend)
	}

	db, err := store.NewDB(cfg.AuditDriver, cfg.AuditDSN())
	if err != nil {
		log.Fatalf("audit store connect failed: %v", err)
	}
	defer db.Close()

	repo := audit.NewRepository(db.Client)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("audit migrate failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Printf("WARNING: redis at %s not reachable, will keep retrying", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(redisClient.Client, "ums:audit")
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Printf("worker started (%s), waiting for login events...", cfg.AuditDriver)
	audit.Run(ctx, messages, repo)
	log.Println("worker stopped")
}
