package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the JSON API:

  GET  /                   service info
  GET  /health             health check
  POST /api/upload         multipart field "file"
  POST /api/ask            {"document_id", "question"}
  POST /api/extract        {"document_id"}
  GET  /api/documents      list documents
  GET  /api/documents/:id  document details

The listen address defaults to the server.addr setting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	server := currentSettings().Server
	if addr == "" {
		addr = server.Addr
	}

	if err := loadServices(cmd); err != nil {
		return err
	}

	srv, err := httpapi.NewServer(&httpapi.Ports{
		Document:   documentService,
		Ask:        askService,
		Extraction: extractionService,
	}, httpapi.Config{
		Name:           "docintel",
		Version:        version,
		MaxUploadBytes: int64(server.MaxUploadMB) << 20,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
	return srv.Run(cmd.Context(), addr)
}

// currentSettings returns the stored settings, or defaults when unavailable.
func currentSettings() domain.AppSettings {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s != nil {
			return *s
		}
	}
	return domain.DefaultAppSettings()
}
