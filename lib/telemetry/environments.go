package telemetry

import (
	"context"

	"tabun-api/lib/configutil"
)

// SetupFromEnv searches up the filesystem from the cwd for a file called
// telemetry.json5 and uses it as the config for Setup.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}
