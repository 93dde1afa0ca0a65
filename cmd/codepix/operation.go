package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codepix/codepix/internal/assist"
	"github.com/codepix/codepix/internal/server"
	"github.com/spf13/cobra"
)

// operationDef describes how one assistant operation is exposed on the CLI.
type operationDef struct {
	op        assist.Operation
	short     string
	inputFlag string
	inputHelp string
	languages bool
	translate bool
}

var (
	generateDef = operationDef{
		op:        assist.OpGenerate,
		short:     "Generate code from a task description",
		inputFlag: "prompt",
		inputHelp: "Task description",
		languages: true,
	}
	explainDef = operationDef{
		op:        assist.OpExplain,
		short:     "Explain a piece of code",
		inputFlag: "prompt",
		inputHelp: "Code or question to explain",
	}
	translateDef = operationDef{
		op:        assist.OpTranslate,
		short:     "Translate code to another language",
		inputFlag: "code",
		inputHelp: "Code to translate",
		translate: true,
	}
	optimizeDef = operationDef{
		op:        assist.OpOptimize,
		short:     "Optimize code and explain the changes",
		inputFlag: "code",
		inputHelp: "Code to optimize",
		languages: true,
	}
)

type operationOptions struct {
	input      string
	file       string
	provider   string
	language   string
	complexity string
	source     string
	target     string
	asJSON     bool
	keychain   bool
}

func newOperationCmd(g *globalOptions, def operationDef) *cobra.Command {
	opts := operationOptions{}
	cmd := &cobra.Command{
		Use:   string(def.op),
		Short: def.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, g, def, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	f := cmd.Flags()
	f.StringVar(&opts.input, def.inputFlag, "", def.inputHelp+" (default: read --file or stdin)")
	f.StringVarP(&opts.file, "file", "f", "", "Read input from this file")
	f.StringVarP(&opts.provider, "provider", "p", "", "Model provider: gemini or groq (default gemini)")
	f.BoolVar(&opts.asJSON, "json", false, "Print the API JSON response instead of plain text")
	f.BoolVar(&opts.keychain, "keychain", false, "Fall back to OS keychain for API keys missing from the environment")
	if def.languages {
		f.StringVarP(&opts.language, "language", "l", "", "Programming language (default javascript)")
	}
	if def.op == assist.OpGenerate {
		f.StringVar(&opts.complexity, "complexity", "", "Complexity level (default intermediate)")
	}
	if def.translate {
		f.StringVar(&opts.source, "from", "", "Source language (default javascript)")
		f.StringVar(&opts.target, "to", "", "Target language (default python)")
	}
	return cmd
}

func runOperation(cmd *cobra.Command, g *globalOptions, def operationDef, opts *operationOptions) error {
	input, err := readInput(cmd, def, opts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	gw, err := buildGateway(ctx, g.cfg, opts.keychain)
	if err != nil {
		return err
	}
	res, err := dispatch(ctx, assist.NewService(gw), def.op, input, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewResponse(res))
	}
	fmt.Fprintln(out, res.Result)
	printStats(cmd.ErrOrStderr(), res)
	return nil
}

func dispatch(ctx context.Context, svc *assist.Service, op assist.Operation, input string, opts *operationOptions) (assist.Result, error) {
	switch op {
	case assist.OpGenerate:
		return svc.Generate(ctx, assist.GenerateRequest{
			Prompt: input, Provider: opts.provider, Language: opts.language, Complexity: opts.complexity,
		})
	case assist.OpExplain:
		return svc.Explain(ctx, assist.ExplainRequest{Prompt: input, Provider: opts.provider})
	case assist.OpTranslate:
		return svc.Translate(ctx, assist.TranslateRequest{
			Code: input, SourceLanguage: opts.source, TargetLanguage: opts.target, Provider: opts.provider,
		})
	case assist.OpOptimize:
		return svc.Optimize(ctx, assist.OptimizeRequest{Code: input, Language: opts.language, Provider: opts.provider})
	default:
		return assist.Result{}, fmt.Errorf("unknown operation %q", op)
	}
}

// readInput takes the flag value first, then --file, then piped stdin.
func readInput(cmd *cobra.Command, def operationDef, opts *operationOptions) (string, error) {
	if opts.input != "" {
		if opts.file != "" {
			return "", fmt.Errorf("--%s and --file are mutually exclusive", def.inputFlag)
		}
		return opts.input, nil
	}
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if in, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(int(in.Fd())) {
		return "", fmt.Errorf("no input: use --%s, --file or pipe it on stdin", def.inputFlag)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no input: use --%s, --file or pipe it on stdin", def.inputFlag)
	}
	return string(data), nil
}

func printStats(w io.Writer, res assist.Result) {
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", res.TimeTaken())
	fmt.Fprintf(w, "Model: %s\n", res.Model)
	fmt.Fprintf(w, "Provider: %s\n", res.Provider)
}
