// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG for DecodeConfig
	"io"
	"os"
	"path/filepath"
	"strings"

	"drawcheck/internal/entity"
	"drawcheck/internal/faults"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ProbeDrawing reads the drawing metadata of a vector PDF export or a
// scanned raster drawing. Fields the file does not carry stay empty.
func ProbeDrawing(path string) (entity.DrawingMetadata, error) {
	md := entity.DrawingMetadata{FileName: filepath.Base(path)}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return md, probePDF(path, &md)
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return md, probeImage(path, &md)
	default:
		return md, fmt.Errorf("%w: drawing %s must be a PDF, JPEG or TIFF file", faults.ErrUnsupportedInput, md.FileName)
	}
}

func probePDF(path string, md *entity.DrawingMetadata) error {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: PDF validation failed: %w", faults.ErrUnsupportedInput, err)
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}
	md.PageCount = ctx.PageCount
	md.Producer = strings.TrimSpace(ctx.Producer)
	md.Units = "pt"

	dims, err := api.PageDimsFile(path)
	if err != nil {
		return fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) > 0 {
		md.PageWidth = dims[0].Width
		md.PageHeight = dims[0].Height
	}
	return nil
}

// imageFields lists the EXIF fields a raster drawing is described by
var imageFields = []exif.FieldName{
	exif.Software,
	exif.PixelXDimension,
	exif.PixelYDimension,
	exif.ImageWidth,
	exif.ImageLength,
	exif.XResolution,
	exif.ResolutionUnit,
}

// exifCollector gathers the fields in imageFields while walking the tags
type exifCollector struct {
	values map[exif.FieldName]*tiff.Tag
}

func (c *exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	for _, f := range imageFields {
		if f == name {
			c.values[name] = tag
			break
		}
	}
	return nil
}

// intField returns the first integer value of a collected field
func (c *exifCollector) intField(names ...exif.FieldName) int {
	for _, name := range names {
		tag, ok := c.values[name]
		if !ok {
			continue
		}
		if v, err := tag.Int(0); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func probeImage(path string, md *entity.DrawingMetadata) error {
	f, err := os.Open(path) // #nosec G304 - drawing path comes from the command line
	if err != nil {
		return fmt.Errorf("failed to open drawing: %w", err)
	}
	defer f.Close()

	md.PageCount = 1
	md.Units = "px"

	collector := &exifCollector{values: make(map[exif.FieldName]*tiff.Tag)}
	if x, err := exif.Decode(f); err == nil {
		if err := x.Walk(collector); err != nil {
			return fmt.Errorf("failed to walk EXIF tags: %w", err)
		}
		if software, ok := collector.values[exif.Software]; ok {
			if s, err := software.StringVal(); err == nil {
				md.Producer = strings.TrimSpace(s)
			}
		}
		md.PageWidth = float64(collector.intField(exif.PixelXDimension, exif.ImageWidth))
		md.PageHeight = float64(collector.intField(exif.PixelYDimension, exif.ImageLength))
		if res, ok := collector.values[exif.XResolution]; ok && collector.intField(exif.ResolutionUnit) == 2 {
			if num, den, err := res.Rat2(0); err == nil && den > 0 {
				md.Scale = fmt.Sprintf("%d dpi", num/den)
			}
		}
	}

	// scans without EXIF still carry their pixel size in the image header
	if md.PageWidth == 0 || md.PageHeight == 0 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind drawing: %w", err)
		}
		if cfg, _, err := image.DecodeConfig(f); err == nil {
			md.PageWidth = float64(cfg.Width)
			md.PageHeight = float64(cfg.Height)
		}
	}
	return nil
}
