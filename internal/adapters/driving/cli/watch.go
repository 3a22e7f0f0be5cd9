package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/watch"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest documents dropped into a directory",
	Long: `Watches a directory and uploads PDF, DOCX and TXT files once writes to them
have been quiet for the debounce period. A file is ingested again only when
its content changes. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchExisting bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := watch.New(args[0], documentService, watch.Config{
		Debounce:       watchDebounce,
		IngestExisting: watchExisting,
		OnIngest: func(path string, result *domain.UploadResult, err error) {
			if err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", style(cmd, badStyle, "✗"), path, err)
				return
			}
			fmt.Fprintf(out, "%s %s → %s (%d chunks)\n",
				style(cmd, goodStyle, "✓"), path, result.DocumentID, result.ChunkCount)
		},
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
