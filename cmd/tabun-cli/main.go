package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"tabun-api/cmd/tabun-cli/commands"
	"tabun-api/lib/osutil"
	"tabun-api/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext(context.Background())

	tel, err := telemetry.SetupFromEnv(ctx, "tabun-cli")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("telemetry disabled", "err", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tel.Shutdown(shutdownCtx)

	if err != nil {
		osutil.Fatal("command failed", err)
	}
}
