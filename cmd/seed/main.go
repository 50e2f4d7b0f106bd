// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/seed"
)

func main() {
	preset := flag.String("preset", "small", "built-in preset ("+strings.Join(seed.PresetNames(), ", ")+") or path to a YAML file")
	clean := flag.Bool("clean", true, "remove existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.SetupLogger(cfg.Env)

	p, err := seed.LoadPreset(*preset)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db)
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, p)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d follows, %d likes, %d comments, %d reports (%d pending)",
		sum.Users, sum.Posts, sum.Follows, sum.Likes, sum.Comments, sum.Reports, sum.PendingReports)
	log.Printf("All seeded users share the password %q", p.Password)
}
