package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/scidesk/internal/admin"
	_ "github.com/JonMunkholm/scidesk/internal/core/tables" // Register the form catalog
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine: the environment may already be set
	_ = godotenv.Overload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := admin.NewRootCommand(admin.Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
