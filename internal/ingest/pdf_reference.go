// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"cmp"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/tags"

	"github.com/ledongthuc/pdf"
)

// defaultFontSize is assumed for glyphs that report no size
const defaultFontSize = 12

// word is a run of glyphs on one text row with no significant gap between them
type word struct {
	text     string
	x, y     float64
	width    float64
	fontSize float64
}

// LoadReferencePDF reads the text layer of a vector PDF export and returns
// every word that classifies as an equipment tag as a text reference
// entity. Coordinates are PDF user-space points of the page the word is on,
// with the layer named after the page.
func LoadReferencePDF(path string) ([]entity.ReferenceEntity, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%w: reference drawing %s is not a PDF", faults.ErrUnsupportedInput, filepath.Base(path))
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var refs []entity.ReferenceEntity
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		p := r.Page(pageNum)
		if p.V.IsNull() {
			continue
		}

		glyphs, err := pageGlyphs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read text of page %d: %w", pageNum, err)
		}

		layer := fmt.Sprintf("PAGE-%d", pageNum)
		for _, row := range groupRows(glyphs) {
			for _, w := range splitWords(row) {
				n := tags.NormalizeTag(w.text)
				if !n.Valid {
					continue
				}
				refs = append(refs, entity.ReferenceEntity{
					ID:    fmt.Sprintf("pdf-p%d-%04d", pageNum, len(refs)+1),
					Name:  w.text,
					Kind:  entity.KindText,
					Layer: layer,
					Geometry: entity.Geometry{
						X:      w.x,
						Y:      w.y,
						Width:  w.width,
						Height: w.fontSize,
					},
					Tag: n.Normalized,
				})
			}
		}
	}
	return refs, nil
}

// pageGlyphs returns the positioned glyphs of a page. The content stream
// interpreter panics on malformed operators.
func pageGlyphs(p pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()
	return p.Content().Text, nil
}

// groupRows splits glyphs into text rows, top of the page first. Glyphs
// whose baselines lie within half a font size of the row's first glyph
// share the row.
func groupRows(glyphs []pdf.Text) [][]pdf.Text {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b pdf.Text) int {
		return cmp.Compare(b.Y, a.Y)
	})

	var (
		rows    [][]pdf.Text
		current []pdf.Text
		rowY    float64
	)
	for _, g := range sorted {
		fontSize := g.FontSize
		if fontSize <= 0 {
			fontSize = defaultFontSize
		}
		if len(current) > 0 && math.Abs(rowY-g.Y) > fontSize*0.5 {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			rowY = g.Y
		}
		current = append(current, g)
	}
	return append(rows, current)
}

// splitWords rebuilds words from the glyphs of one row. A gap wider than a
// fifth of the font size, or a blank glyph, ends a word.
func splitWords(glyphs []pdf.Text) []word {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b pdf.Text) int {
		return cmp.Compare(a.X, b.X)
	})

	var (
		words   []word
		current *word
		buf     strings.Builder
		end     float64
	)
	flush := func() {
		if current != nil && buf.Len() > 0 {
			current.text = buf.String()
			words = append(words, *current)
		}
		current = nil
		buf.Reset()
	}

	for _, g := range sorted {
		fontSize := g.FontSize
		if fontSize <= 0 {
			fontSize = defaultFontSize
		}
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if current != nil && g.X-end > fontSize*0.2 {
			flush()
		}
		if current == nil {
			current = &word{x: g.X, y: g.Y, fontSize: fontSize}
		}
		buf.WriteString(g.S)
		end = g.X + g.W
		current.width = end - current.x
		current.fontSize = max(current.fontSize, fontSize)
	}
	flush()

	// a glyph string may itself carry spaces
	var out []word
	for _, w := range words {
		out = append(out, splitRun(w)...)
	}
	return out
}

// splitRun splits a word whose text holds blanks into its parts, spreading
// the run's width evenly over its runes
func splitRun(w word) []word {
	runes := []rune(w.text)
	if !slices.ContainsFunc(runes, unicode.IsSpace) {
		return []word{w}
	}
	advance := w.width / float64(len(runes))

	var parts []word
	start := -1
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && !unicode.IsSpace(runes[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			parts = append(parts, word{
				text:     string(runes[start:i]),
				x:        w.x + float64(start)*advance,
				y:        w.y,
				width:    float64(i-start) * advance,
				fontSize: w.fontSize,
			})
			start = -1
		}
	}
	return parts
}
