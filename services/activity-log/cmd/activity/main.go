package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hey-granth/StandardStitch/pkg/config"
	"github.com/hey-granth/StandardStitch/pkg/mq"
	"github.com/hey-granth/StandardStitch/services/activity-log/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RabbitURL == "" {
		log.Fatal("[activity] RABBIT_URL is required")
	}

	mqCfg := mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.ActivityExchange,
		Queue:    cfg.ActivityQueue,
		Tag:      "activity-log",
		Bindings: cfg.ActivityBindings,
		Prefetch: 16,
		DLX:      cfg.ActivityDLX,
		DLQ:      cfg.ActivityDLQ,
	}

	var cons *mq.Consumer
	for {
		cons, err = mq.NewConsumer(mqCfg)
		if err != nil {
			log.Printf("[activity] connect failed: %v; retry in 2s", err)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := worker.New(cons).Run(ctx); err != nil {
			log.Printf("[activity] run error: %v", err)
		}
	}()

	log.Printf("[activity] started. queue=%s exchange=%s bindings=%v dlx=%s",
		cfg.ActivityQueue, cfg.ActivityExchange, cfg.ActivityBindings, cfg.ActivityDLX)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	time.Sleep(200 * time.Millisecond)
}
