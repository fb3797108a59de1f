package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"notebook/internal/backend"
	"notebook/internal/document"
	"notebook/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askFile   string
	askAPIKey string
)

// askCmd uploads a document and asks one question without the UI
var askCmd = &cobra.Command{
	Use:   "ask --file FILE QUESTION...",
	Short: "Upload a document and ask a single question",
	Long: `Runs the same credential, upload and chat steps as the interactive
interface, then prints the answer.

Example:
  NOTEBOOK_API_KEY=sk-... notebook ask --file handbook.pdf "How many vacation days?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Document to upload (.pdf, .md, .markdown, .txt)")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "API key (or set NOTEBOOK_API_KEY)")
	_ = askCmd.MarkFlagRequired("file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	key := askAPIKey
	if key == "" {
		key = os.Getenv("NOTEBOOK_API_KEY")
	}

	answer, err := askOnce(ctx, newClient(), key, askFile, strings.Join(args, " "))
	if answer != "" {
		fmt.Fprintln(cmd.OutOrStdout(), answer)
	}
	return err
}

// askOnce drives the gate, intake and conversation for one question.
// On a chat failure it returns the fallback reply together with the error.
func askOnce(ctx context.Context, svc backend.Service, key, path, question string) (string, error) {
	gate := session.NewGate()
	gate.SetCredential(key)
	if !gate.IntakeReachable() {
		return "", errors.New("api key required (--api-key or NOTEBOOK_API_KEY)")
	}

	doc, err := document.Open(path)
	if err != nil {
		return "", err
	}
	intake := session.NewIntake()
	intake.Select(doc)
	ticket, _ := intake.Begin()
	logger.Info("Uploading document", zap.String("name", doc.Name), zap.Int64("size", doc.Size))
	intake.Complete(ticket, svc.UploadDocument(ctx, doc, gate.Credential()))
	if !intake.Ready() {
		return "", fmt.Errorf("upload %s: %s", doc.Name, intake.Message())
	}
	gate.Confirm(intake.Ready())

	conv := session.NewConversation()
	message, ok := conv.Submit(question)
	if !ok {
		return "", errors.New("question is empty")
	}
	answer, err := svc.Chat(ctx, message, gate.Credential())
	turn := conv.Resolve(answer, err)
	if err != nil {
		logger.Error("Chat request failed", zap.Error(err))
		return turn.Content, errors.New("chat request failed")
	}
	return turn.Content, nil
}
