// Package postprocessors turns normalised document text into indexed chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// ErrNoProcessors is returned when a pipeline has nothing to run.
var ErrNoProcessors = errors.New("pipeline has no processors")

// Pipeline chains PostProcessors and runs them in order.
// The final chunk sequence never contains empty chunks and positions are
// renumbered to match sequence order, since search results refer to chunks
// by position.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the document through all processors in order.
// The first processor receives nil chunks and should create them.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(p.processors) == 0 {
		return nil, ErrNoProcessors
	}

	var chunks []domain.Chunk
	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		c.Position = len(out)
		c.DocumentID = doc.ID
		out = append(out, c)
	}
	return out, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
