package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set from main via SetVersionInfo; main gets them from ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is what `sysdash version --json` reports.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func currentBuild() BuildInfo {
	return BuildInfo{
		Version: formatVersion(version),
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

type versionOptions struct {
	Short bool
	JSON  bool
}

var versionOpts versionOptions

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of sysdash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd, versionOpts)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionOpts.Short, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionOpts.JSON, "json", false, "Print build info as JSON")
}

func printVersion(cmd *cobra.Command, opts versionOptions) error {
	info := currentBuild()
	switch {
	case opts.JSON:
		return WriteJSONSuccess(cmd.OutOrStdout(), info)
	case opts.Short:
		cmd.Println(version)
		return nil
	}

	cmd.Printf("sysdash %s\n", info.Version)
	cmd.Printf("commit: %s\n", info.Commit)
	cmd.Printf("built: %s\n", info.Built)
	cmd.Printf("go: %s\n", info.Go)
	cmd.Printf("os/arch: %s/%s\n", info.OS, info.Arch)
	return nil
}

// formatVersion adds a "v" prefix to release versions. "dev" and "" are left alone.
func formatVersion(v string) string {
	if v == "" || v == "dev" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

// SetVersionInfo records build metadata. It also backs `sysdash --version`.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
	rootCmd.Version = fmt.Sprintf("%s (%s)", formatVersion(v), c)
}

// GetVersion returns the raw version string.
func GetVersion() string {
	return version
}
