package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/goldmark"
	advisorjson "github.com/fwojciec/advisor/json"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show <transcript.json>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := advisorjson.Load(args[0])
			if err != nil {
				return fmt.Errorf("load transcript: %w", err)
			}
			return writeTranscript(cmd.OutOrStdout(), tr, width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap answers to this many columns")
	return cmd
}

// writeTranscript prints an exported conversation. Answers go through the
// same renderer as the chat screen.
func writeTranscript(w io.Writer, tr advisorjson.Transcript, width int) error {
	var b strings.Builder
	who := "signed out"
	if tr.Student != nil {
		who = tr.Student.Name()
	}
	fmt.Fprintf(&b, "Session %s · %s · %s\n", tr.ID, who, tr.CreatedAt.Format("2006-01-02 15:04"))
	for _, m := range tr.Messages {
		b.WriteString("\n")
		switch m.Role {
		case advisor.RoleUser:
			b.WriteString("> " + goldmark.Sanitize(m.Content))
		case advisor.RoleAssistant:
			b.WriteString(goldmark.Render(m.Content, width, advisor.DefaultTheme()))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
