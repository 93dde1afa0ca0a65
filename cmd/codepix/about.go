package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "about",
		Short:       "Show a short description and link",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "codepix - AI code assistant backend")
			fmt.Fprintln(out, "Generate, explain, translate and optimize code with Gemini or Groq.")
			fmt.Fprintln(out, "https://codepix.live")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
