package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/advisor"
	bt "github.com/fwojciec/advisor/bubbletea"
	"github.com/fwojciec/advisor/fsnotify"
	advisorjson "github.com/fwojciec/advisor/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChatCmd() *cobra.Command {
	var transcriptPath string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive terminal chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(transcriptPath)
		},
	}
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Write the conversation to this JSON file on exit")
	return cmd
}

func runChat(transcriptPath string) error {
	ctx, stop := signalContext()
	defer stop()

	// The terminal belongs to the TUI, so logs only go to the log file.
	cfg, logger, cleanup, err := setup(false)
	if err != nil {
		return err
	}
	defer cleanup()

	composer, err := loadComposer(policyPath)
	if err != nil {
		return err
	}
	gen, err := resolveGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	roster := advisor.NewRosterCache(rosterSource(cfg), logger)
	watcher, err := fsnotify.New(cfg.Roster, roster, fsnotify.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("roster reload disabled", zap.Error(err))
	}
	defer watcher.Stop()

	loop := advisor.NewLoop(gen, cfg.KB, advisor.WithComposer(composer), advisor.WithLogger(logger))
	session := advisor.NewSession(time.Now())
	logger.Info("chat started", zap.String("session", session.ID), zap.String("provider", cfg.Provider))

	if _, err := bt.Run(ctx, bt.New(loop, roster, session, advisor.DefaultTheme())); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if transcriptPath != "" && session.Len() > 0 {
		if err := advisorjson.Save(transcriptPath, session); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", transcriptPath)
	}
	return nil
}
