// Package docx extracts paragraph text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoDocumentPart is returned when the archive has no word/document.xml.
var ErrNoDocumentPart = errors.New("docx: missing word/document.xml")

// maxPartSize caps the decompressed size of word/document.xml.
const maxPartSize = 64 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Normalise returns the non-blank body paragraphs joined by a blank line.
func (n *Normaliser) Normalise(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	content, err := readDocumentPart(reader)
	if err != nil {
		return "", err
	}

	paragraphs, err := parseDocumentXML(content)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// readDocumentPart reads word/document.xml from the archive.
func readDocumentPart(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("read document part: %w", err)
		}
		return content, nil
	}
	return nil, ErrNoDocumentPart
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML returns the text of each non-blank body paragraph.
func parseDocumentXML(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var out []string
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range para.Runs {
			for range r.Tabs {
				b.WriteByte('\t')
			}
			for _, text := range r.Text {
				b.WriteString(text.Content)
			}
		}
		if text := b.String(); strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	return out, nil
}
