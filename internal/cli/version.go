package cli

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/buildinfo"
)

const defaultModulePath = "github.com/erpsync/ebsconn"

type versionInfo struct {
	Version    string   `json:"version"`
	ModulePath string   `json:"module_path"`
	Commit     string   `json:"commit,omitempty"`
	BuildTime  string   `json:"build_time,omitempty"`
	Modified   bool     `json:"modified"`
	GoVersion  string   `json:"go_version"`
	Platform   string   `json:"platform"`
	Drivers    []string `json:"drivers"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ebsconn version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		printf("ebsconn %s\n", info.Version)
		printf("module: %s\n", info.ModulePath)
		if info.Commit != "" {
			printf("commit: %s\n", info.Commit)
		}
		if info.BuildTime != "" {
			printf("built: %s\n", info.BuildTime)
		}
		printf("go: %s (%s)\n", info.GoVersion, info.Platform)
		printf("drivers: %s\n", strings.Join(info.Drivers, ", "))
		if info.Modified {
			printf("modified: true\n")
		}
		return nil
	},
}

// currentVersionInfo prefers link-time metadata and falls back to the
// module's embedded build info.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    "devel",
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Drivers:    []string{"sqlite", "postgres"},
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		info.Version = normalizeVersion(bi.Main.Version)
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		info.Commit = buildSetting(bi, "vcs.revision")
		info.BuildTime = buildSetting(bi, "vcs.time")
		info.Modified = strings.EqualFold(buildSetting(bi, "vcs.modified"), "true")
	}

	if buildinfo.Set() {
		if buildinfo.Version != "" {
			info.Version = normalizeVersion(buildinfo.Version)
		}
		if buildinfo.Commit != "" {
			info.Commit = buildinfo.Commit
		}
		if buildinfo.Date != "" {
			info.BuildTime = buildinfo.Date
		}
	}
	return info
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "devel"
	}
	return version
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
