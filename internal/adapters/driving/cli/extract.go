package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract [document-id]",
	Short: "Extract a structured shipment record",
	Long: `Extracts the shipment fields of a document: shipment id, shipper,
consignee, pickup and delivery times, equipment type, mode, rate, currency,
weight and carrier name. Fields that are not present are shown as "-".`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if extractionService == nil {
		return fmt.Errorf("extract: %w", domain.ErrLLMUnavailable)
	}

	result, err := extractionService.Extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}

	cmd.Printf("Shipment record for %s\n\n", result.DocumentID)
	for _, field := range domain.ShipmentFields {
		value, ok := result.Data.Get(field)
		if !ok {
			value = style(cmd, dimStyle, "-")
		}
		cmd.Printf("  %-18s %s\n", field+":", value)
	}
	cmd.Println()
	cmd.Printf("%d of %d fields found\n", result.Data.Found(), len(domain.ShipmentFields))
	cmd.Println(style(cmd, confidenceStyle(result.Confidence),
		fmt.Sprintf("%s confidence %.0f%%", confidenceBadge(result.Confidence), result.Confidence*100)))
	return nil
}
