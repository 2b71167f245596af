package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/naebak/naebak/db"
	"github.com/naebak/naebak/internal/backup"
	"github.com/naebak/naebak/internal/config"
	"github.com/naebak/naebak/internal/db"
)

func main() {
	var in = flag.String("in", "", "Backup file to restore (default <database>.backup.json)")
	var clear = flag.Bool("clear", false, "Delete existing rows before restoring")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	src := *in
	if src == "" {
		src = cfg.DatabasePath + ".backup.json"
	}

	raw, err := os.ReadFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	doc, err := backup.Validate(ctx, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	if err := backup.Restore(ctx, conn, doc, *clear); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restore %s completed from %s\n", doc.Metadata.ID, src)
}
