package main

import (
	"fmt"

	"github.com/codepix/codepix/internal/metadata"
	"github.com/spf13/cobra"
)

func newModelsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and the ones in use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			active := map[string]string{
				"gemini": g.cfg.GeminiModel,
				"groq":   g.cfg.GroqModel,
			}
			fmt.Fprintln(out, "Models:")
			for _, m := range metadata.Models() {
				mark := " "
				if active[m.Provider] == m.ID {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-8s %-28s %s\n", mark, m.Provider, m.ID, m.Label)
			}
			for _, p := range []string{"gemini", "groq"} {
				if _, ok := metadata.Lookup(active[p]); !ok && active[p] != "" {
					fmt.Fprintf(out, "* %-8s %-28s %s\n", p, active[p], "(custom)")
				}
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
