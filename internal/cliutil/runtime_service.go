package cliutil

import (
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
)

// NewServiceRuntime creates a CommandRuntime, loads an AWS config, and instantiates
// a typed service client in a single call. The runtime logger is tagged with the
// resolved region.
func NewServiceRuntime[T any](
	cmd *cobra.Command,
	loadConfig func(profile, region string) (awssdk.Config, error),
	newClient func(awssdk.Config) T,
) (CommandRuntime, awssdk.Config, T, error) {
	var zeroClient T

	runtime, err := NewCommandRuntime(cmd)
	if err != nil {
		return CommandRuntime{}, awssdk.Config{}, zeroClient, err
	}

	cfg, err := loadConfig(runtime.Options.Profile, runtime.Options.Region)
	if err != nil {
		return CommandRuntime{}, awssdk.Config{}, zeroClient, fmt.Errorf("load AWS config: %w", err)
	}

	runtime.Logger = runtime.Logger.With("region", cfg.Region)
	runtime.Logger.Debug("loaded AWS config", "profile", runtime.Options.Profile)

	return runtime, cfg, newClient(cfg), nil
}
