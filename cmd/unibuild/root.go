package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"unibuild/pkg/logger"
)

// Build-time variables set via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UNIBUILD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "unibuild",
		Short:         "Detect a repository's stack and emit universal build documents",
		Version:       version + " (" + gitCommit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("detection-mode", "", "detection mode (full, static, llm_only); defaults to $UNIBUILD_DETECTION_MODE")
	flags.Bool("enable-llm-fallback", true, "register LLM-backed detectors in full mode")
	flags.String("azure-openai-endpoint", "", "Azure OpenAI endpoint")
	flags.String("azure-openai-api-key", "", "Azure OpenAI API key")
	flags.String("azure-openai-deployment", "", "Azure OpenAI deployment name")
	flags.String("wolfi-index-url", "", "override the Wolfi APKINDEX URL")
	flags.String("wolfi-cache-dir", defaultCacheDir(), "directory for the package index cache")
	flags.Duration("wolfi-cache-ttl", 24*time.Hour, "package index cache TTL")
	flags.Int("scan-max-depth", 0, "maximum scan depth (0 = default)")
	flags.Duration("timeout", 10*time.Minute, "overall analysis deadline")
	flags.String("record-file", "", "record LLM exchanges to this cassette file")
	flags.String("replay-file", "", "replay LLM exchanges from this cassette file")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(newAnalyzeCmd(v))
	return root
}

func rootLogger(v *viper.Viper) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  v.GetString("log-level"),
		Format: v.GetString("log-format"),
	})
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "unibuild")
	}
	return ".unibuild-cache"
}
