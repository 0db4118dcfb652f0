// Command advisor is a chat front end for a math placement advising
// knowledge base.
//
// Usage:
//
//	advisor chat [--transcript file.json]
//	advisor serve [--addr :8080]
//	advisor show transcript.json
//
// Configuration is read from the environment, with a .env file in the
// working directory loaded first when present:
//
//	KNOWLEDGE_BASE_ID      knowledge base (Bedrock) or RAG corpus (Gemini)
//	BEDROCK_MODEL_ID       foundation model ID or ARN
//	GUARDRAIL_ID           optional Bedrock guardrail
//	GUARDRAIL_VERSION      optional guardrail version
//	AWS_REGION             Bedrock region (default us-west-2)
//	ADVISOR_PROVIDER       bedrock or gemini (default bedrock)
//	GOOGLE_CLOUD_PROJECT   Vertex AI project
//	GOOGLE_CLOUD_LOCATION  Vertex AI location (default us-central1)
//	GEMINI_MODEL           Gemini model (default gemini-2.5-flash)
//	ADVISOR_ROSTER         roster CSV or SQLite file
//	ADVISOR_JWT_SECRET     session token key for serve
//	ADVISOR_LOG_FILE       rotated JSON log file
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/advisor/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	policyPath string
	rosterFlag string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "advisor: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Math placement advising chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&policyPath, "policy", "", "YAML file overriding the advising policy")
	root.PersistentFlags().StringVar(&rosterFlag, "roster", "", "Roster file (overrides ADVISOR_ROSTER)")

	root.AddCommand(newChatCmd(), newServeCmd(), newShowCmd())
	return root
}

// setup reads configuration and builds the logger shared by both commands.
func setup(stderr bool) (config, *zap.Logger, func(), error) {
	cfg := loadConfig(os.Getenv)
	if rosterFlag != "" {
		cfg.Roster = rosterFlag
	}
	if err := cfg.validate(); err != nil {
		return cfg, nil, nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, cleanup, err := logging.New(logging.Config{Level: level, File: cfg.LogFile, Stderr: stderr})
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, logger, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
