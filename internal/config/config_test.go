package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("awsutils", pflag.ContinueOnError)
	flags.String("profile", "", "")
	flags.String("region", "", "")
	flags.String("output", "table", "")
	flags.Bool("no-confirm", false, "")
	flags.Int("max-pages", 0, "")
	flags.Duration("timeout", 0, "")
	flags.Bool("allow-partial", false, "")
	flags.String("log-level", "info", "")
	flags.String("log-format", "text", "")
	return flags
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	for _, key := range []string{"AWSUTILS_REGION", "AWSUTILS_MAX_PAGES", "AWSUTILS_OUTPUT", "AWSUTILS_TIMEOUT"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	return dir
}

func TestLoadAppliesConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "region: eu-west-1\nmax-pages: 7\ntimeout: 45s\nallow-partial: true\n")

	flags := newFlags()
	used, err := Load(flags, LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Fatalf("expected config file %s, got %s", path, used)
	}

	region, _ := flags.GetString("region")
	maxPages, _ := flags.GetInt("max-pages")
	timeout, _ := flags.GetDuration("timeout")
	allowPartial, _ := flags.GetBool("allow-partial")
	if region != "eu-west-1" || maxPages != 7 || timeout.String() != "45s" || !allowPartial {
		t.Fatalf("unexpected values: region=%s max-pages=%d timeout=%s allow-partial=%t", region, maxPages, timeout, allowPartial)
	}
}

func TestLoadExplicitFlagWins(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "region: eu-west-1\n")
	t.Setenv("AWSUTILS_REGION", "ap-south-1")

	flags := newFlags()
	if err := flags.Set("region", "us-west-2"); err != nil {
		t.Fatalf("set region: %v", err)
	}

	if _, err := Load(flags, LoadOptions{ConfigFile: path}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if region, _ := flags.GetString("region"); region != "us-west-2" {
		t.Fatalf("expected explicit flag to win, got %s", region)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "max-pages: 7\n")
	t.Setenv("AWSUTILS_MAX_PAGES", "2")

	flags := newFlags()
	if _, err := Load(flags, LoadOptions{ConfigFile: path}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if maxPages, _ := flags.GetInt("max-pages"); maxPages != 2 {
		t.Fatalf("expected environment to override file, got %d", maxPages)
	}
}

func TestLoadFindsConfigInHome(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".awsutils.yaml"), "output: json\n")

	flags := newFlags()
	used, err := Load(flags, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := flags.Lookup("output").Value.String(); got != "json" {
		t.Fatalf("expected output from home config, got %s", got)
	}
	if used == "" {
		t.Fatal("expected the home config file to be reported")
	}
}

func TestLoadWithoutConfigKeepsDefaults(t *testing.T) {
	isolate(t)

	flags := newFlags()
	used, err := Load(flags, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != "" {
		t.Fatalf("expected no config file, got %s", used)
	}
	output := flags.Lookup("output")
	if output.Value.String() != "table" || output.Changed {
		t.Fatalf("expected untouched default, got %s (changed=%t)", output.Value, output.Changed)
	}
}

func TestLoadMissingExplicitConfigFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(newFlags(), LoadOptions{ConfigFile: filepath.Join(dir, "missing.yaml")})
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Fatalf("expected read config file error, got %v", err)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "custom.env")
	writeFile(t, envPath, "AWSUTILS_REGION=ca-central-1\n")
	t.Cleanup(func() { _ = os.Unsetenv("AWSUTILS_REGION") })

	flags := newFlags()
	if _, err := Load(flags, LoadOptions{EnvFile: envPath}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if region, _ := flags.GetString("region"); region != "ca-central-1" {
		t.Fatalf("expected region from env file, got %s", region)
	}
}

func TestLoadMissingExplicitEnvFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(newFlags(), LoadOptions{EnvFile: filepath.Join(dir, "missing.env")})
	if err == nil || !strings.Contains(err.Error(), "load env file") {
		t.Fatalf("expected load env file error, got %v", err)
	}
}

func TestLoadRejectsInvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("AWSUTILS_MAX_PAGES", "many")

	_, err := Load(newFlags(), LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "apply max-pages") {
		t.Fatalf("expected apply max-pages error, got %v", err)
	}
}
