package postprocessors

import (
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// DefaultPipeline builds the ingestion pipeline for the chunking settings.
func DefaultPipeline(settings domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(settings.PipelineConfig())
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
//   - separators ([]string): Split preference order
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if seps := getStringsFromConfig(cfg, "separators"); len(seps) > 0 {
			opts = append(opts, chunker.WithSeparators(seps...))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getStringsFromConfig(cfg map[string]any, key string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
