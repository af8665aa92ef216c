package main

import (
	"flag"
	"log"
	"os"

	"CupoCast/internal/di"
	"CupoCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s storage=%s model=%s", cfg.Environment, cfg.Storage.Type, cfg.Model.Backend)

	// model and scaler artifacts are loaded here; a bad artifact aborts startup
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v events=%s ingest=%s", cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.IngestTopic)
	}

	err = app.Run()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
