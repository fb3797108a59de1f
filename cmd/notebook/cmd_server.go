package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"notebook/internal/stubserver"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stubAddr string

// healthCmd checks the backend
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c := newClient()
		status, err := c.Health(ctx)
		if err != nil {
			return fmt.Errorf("backend %s: %w", c.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.BaseURL(), status)
		return nil
	},
}

// stubCmd serves the in-memory backend for local development
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stub backend",
	Long: `Serves /api/upload_pdf, /api/pdf_chat and /api/health from memory.
Answers echo the question and name the uploaded document; no model is called.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", ":8000", "Listen address")
}

func runStub(cmd *cobra.Command, args []string) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              stubAddr,
		Handler:           stubserver.New().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Stub backend listening", zap.String("addr", stubAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Stub backend stopped")
	return nil
}
