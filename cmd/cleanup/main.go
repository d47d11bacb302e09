package main

import (
	"flag"
	"log"
	"time"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/database"
	"github.com/qs3c/vidsum_go_server/internal/repository"
)

// 手动维护工具：清理过期的 webhook 去重记录，并批量清零跨天计数。
// 线上日常由 server 进程内的 cron 执行，这里用于补跑或排障。
func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	dryRun := flag.Bool("dry-run", false, "report only, do not modify anything")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)

	total, err := eventRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count processed events: %v", err)
	}
	log.Printf("Processed events in ledger: %d (retention %d days)", total, cfg.Webhook.RetentionDays())

	if *dryRun {
		log.Println("Dry run, nothing modified")
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Webhook.RetentionDays())
	pruned, err := eventRepo.PruneBefore(cutoff)
	if err != nil {
		log.Fatalf("Failed to prune processed events: %v", err)
	}
	log.Printf("Pruned %d processed events before %s", pruned, cutoff.Format("2006-01-02"))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	swept, err := userRepo.ResetAllOutdated(today)
	if err != nil {
		log.Fatalf("Failed to sweep usage counters: %v", err)
	}
	log.Printf("Reset usage counters for %d users", swept)
}
