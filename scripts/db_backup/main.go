package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/naebak/naebak/internal/backup"
	"github.com/naebak/naebak/internal/config"
	"github.com/naebak/naebak/internal/db"
)

func main() {
	var out = flag.String("out", "", "Output file (default <database>.backup.json)")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	dst := *out
	if dst == "" {
		dst = cfg.DatabasePath + ".backup.json"
	}

	ctx := context.Background()
	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	meta, err := backup.WriteFile(ctx, conn, dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup %s written to %s\n", meta.ID, dst)
}
