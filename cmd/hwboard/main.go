package main

import (
	"context"
	"log/slog"

	"hwboard-backend/cmd/hwboard/commands"
	"hwboard-backend/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	err := telemetry.SetupFromEnv(ctx, "hwboard")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	}
	telemetry.InitSlog(false)
	defer telemetry.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
