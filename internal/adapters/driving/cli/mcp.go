package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Tools: upload_document, ask_document, extract_shipment, list_documents.
Resources: docintel://documents and docintel://documents/{documentId}.

Examples:
  # Stdio mode (default)
  docintel mcp

  # HTTP mode (for MCP Inspector, remote access)
  docintel mcp --http :8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docintel": {
        "command": "/path/to/docintel",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	if err := loadServices(cmd); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Document:   documentService,
		Ask:        askService,
		Extraction: extractionService,
	})
	if err != nil {
		return err
	}

	if addr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
