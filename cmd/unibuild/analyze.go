package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"unibuild/pkg/ai"
	"unibuild/pkg/pipeline"
	"unibuild/pkg/registry"
	"unibuild/pkg/wolfi"
)

func newAnalyzeCmd(v *viper.Viper) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a repository and emit universal build documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := "."
			if len(args) == 1 {
				repoPath = args[0]
			}
			abs, err := filepath.Abs(repoPath)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, v, abs, outputDir)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "write one JSON file per document into this directory (default: stdout)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, v *viper.Viper, repoPath, outputDir string) error {
	log := rootLogger(v)

	client, closeClient, err := buildClient(v)
	if err != nil {
		return err
	}
	if closeClient != nil {
		defer closeClient()
	}

	mode, err := registry.ParseMode(v.GetString("detection-mode"))
	if err != nil {
		return err
	}
	reg, err := registry.New(registry.Options{
		Mode:               mode,
		Client:             client,
		DisableLLMFallback: !v.GetBool("enable-llm-fallback"),
		Logger:             log,
	})
	if err != nil {
		return err
	}

	var idxOpts []wolfi.APKIndexOption
	if url := v.GetString("wolfi-index-url"); url != "" {
		idxOpts = append(idxOpts, wolfi.WithIndexURL(url))
	}
	if ttl := v.GetDuration("wolfi-cache-ttl"); ttl > 0 {
		idxOpts = append(idxOpts, wolfi.WithTTL(ttl))
	}
	idx := wolfi.NewAPKIndex(v.GetString("wolfi-cache-dir"), log, idxOpts...)

	spin := startSpinner("analyzing " + repoPath)
	runner := pipeline.NewRunner(log, v.GetInt("scan-max-depth"), v.GetDuration("timeout"))
	result, err := runner.Run(cmd.Context(), repoPath, reg, idx)
	stopSpinner(spin)
	if err != nil {
		return err
	}

	if err := emit(cmd, result, outputDir); err != nil {
		return err
	}
	printSummary(cmd, result)

	if len(result.Documents) == 0 {
		return fmt.Errorf("no build documents produced")
	}
	return nil
}

// buildClient wires the LLM client: replay cassette, live Azure OpenAI
// (optionally recorded), or none.
func buildClient(v *viper.Viper) (ai.Client, func() error, error) {
	if replay := v.GetString("replay-file"); replay != "" {
		client, err := ai.NewReplayer(replay)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}

	endpoint := v.GetString("azure-openai-endpoint")
	apiKey := v.GetString("azure-openai-api-key")
	deployment := v.GetString("azure-openai-deployment")
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, nil, nil
	}
	var client ai.Client
	azure, err := ai.NewAzOpenAI(endpoint, apiKey, deployment)
	if err != nil {
		return nil, nil, err
	}
	client = azure

	if record := v.GetString("record-file"); record != "" {
		recorder := ai.NewRecorder(client, record)
		return recorder, recorder.Close, nil
	}
	return client, nil, nil
}

func emit(cmd *cobra.Command, result *pipeline.Result, outputDir string) error {
	for i, doc := range result.Documents {
		data, err := doc.Marshal()
		if err != nil {
			return err
		}
		if outputDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			continue
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
		name := doc.Metadata.ProjectName
		if name == "" {
			name = fmt.Sprintf("service-%d", i)
		}
		path := filepath.Join(outputDir, name+".unibuild.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, result *pipeline.Result) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\n%d document(s) emitted\n", len(result.Documents))
	for _, svc := range result.Services {
		if svc.Reason != "" {
			fmt.Fprintf(out, "  %-10s %s (%s)\n", svc.Status, svc.Path, svc.Reason)
			continue
		}
		fmt.Fprintf(out, "  %-10s %s\n", svc.Status, svc.Path)
	}
}

func startSpinner(msg string) *spinner.Spinner {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
