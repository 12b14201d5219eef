package cli

import (
	"os"
	"testing"

	"github.com/rileyhilliard/sysdash/internal/config"
)

// isolateConfig runs the test in an empty directory with no sysdash
// environment and resets the global flags afterwards.
func isolateConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"SYSDASH_API_URL", "SYSDASH_METRICS_INTERVAL", "SYSDASH_PROCESS_INTERVAL", config.LegacyAPIURLEnv} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(dir)

	origCfg, origURL := cfgFile, apiURLFlag
	t.Cleanup(func() {
		cfgFile, apiURLFlag = origCfg, origURL
	})
	cfgFile, apiURLFlag = "", ""
	return dir
}

func testConfig(url string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.APIURL = url
	return cfg
}
