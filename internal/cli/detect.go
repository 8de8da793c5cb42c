package cli

import (
	"github.com/ksyq12/wpstack/internal/installer"
	"github.com/ksyq12/wpstack/internal/output"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected Linux distribution",
	Long: `Detect the host Linux distribution and report whether Docker and
Certbot installation is supported for it.

Examples:
  wpstack detect
  wpstack detect --json`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	dist := deps.Detector.Detect()

	_, dockerOK := installer.DockerCommands(dist)
	_, certbotOK := installer.CertbotCommands(dist)

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"id":                dist.ID,
			"version":           dist.Version,
			"family":            string(dist.Family()),
			"docker_supported":  dockerOK,
			"certbot_supported": certbotOK,
		})
	}

	output.Summary([][2]string{
		{"Distribution", dist.ID},
		{"Version", dist.Version},
		{"Family", string(dist.Family())},
	})
	if dockerOK {
		output.Success("Docker installation supported")
	} else {
		output.Warn("Docker installation not supported; install it manually")
	}
	if certbotOK {
		output.Success("Certbot installation supported")
	} else {
		output.Error("Certbot installation not supported")
	}
	return nil
}
