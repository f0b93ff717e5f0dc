package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chapsplit/internal/failure"
	"chapsplit/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that ffmpeg, ffprobe, and the configured paths are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg, strings.TrimSpace(outputDir))
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderChecks(results, shouldColorize(out)))

			if failed := preflight.Failed(results); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, r.Name)
				}
				return fmt.Errorf("%w: %d check(s) failed: %s", failure.ErrExternalTool, len(failed), strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Also check that this directory is writable")
	return cmd
}
