package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tessro/spotify-cli/internal/styles"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			Commit:    Commit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if JSONOutput() {
			return printJSON(info)
		}

		fmt.Println(styles.Highlight.Render("spotify-cli") + " " + info.Version)
		if Verbose() {
			t := NewTableWriter(cmd.OutOrStdout())
			t.Row("  commit:", info.Commit)
			t.Row("  built:", info.BuildDate)
			t.Row("  go version:", info.GoVersion)
			t.Row("  platform:", info.Platform)
			t.Flush()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
