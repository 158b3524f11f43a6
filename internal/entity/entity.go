// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

// EntityKind is the drawing primitive a reference entity was taken from
type EntityKind string

const (
	KindBlock     EntityKind = "block"
	KindText      EntityKind = "text"
	KindAttribute EntityKind = "attribute"
)

// SymbolType is the semantic class assigned to a detected symbol
type SymbolType string

const (
	SymbolPump       SymbolType = "pump"
	SymbolValve      SymbolType = "valve"
	SymbolVessel     SymbolType = "vessel"
	SymbolInstrument SymbolType = "instrument"
	SymbolEquipment  SymbolType = "equipment"
	SymbolFitting    SymbolType = "fitting"
)

// SymbolTypes lists every known symbol type in a stable order
var SymbolTypes = []SymbolType{
	SymbolPump, SymbolValve, SymbolVessel, SymbolInstrument, SymbolEquipment, SymbolFitting,
}

// ReferenceEntity is an authoritative element taken from the drawing itself.
// It is produced by the drawing parser and is never modified during a run.
type ReferenceEntity struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Kind     EntityKind `json:"kind" yaml:"kind" jsonschema:"enum=block,enum=text,enum=attribute"`
	Layer    string     `json:"layer" yaml:"layer"`
	Geometry Geometry   `json:"geometry" yaml:"geometry"`
	Tag      string     `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// DetectedSymbol is a symbol found by the computer-vision collaborator
type DetectedSymbol struct {
	ID         string     `json:"id" yaml:"id"`
	Type       SymbolType `json:"type" yaml:"type" jsonschema:"enum=pump,enum=valve,enum=vessel,enum=instrument,enum=equipment,enum=fitting"`
	Confidence float64    `json:"confidence" yaml:"confidence" jsonschema:"minimum=0,maximum=1"`
	Geometry   Geometry   `json:"geometry" yaml:"geometry"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
	Scale      float64    `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ExtractedTag is a text item read by the OCR collaborator
type ExtractedTag struct {
	ID              string    `json:"id" yaml:"id"`
	Text            string    `json:"text" yaml:"text"`
	Confidence      float64   `json:"confidence" yaml:"confidence" jsonschema:"minimum=0,maximum=1"`
	Geometry        Geometry  `json:"geometry" yaml:"geometry"`
	Source          string    `json:"source,omitempty" yaml:"source,omitempty"`
	Scale           float64   `json:"scale,omitempty" yaml:"scale,omitempty"`
	CharConfidences []float64 `json:"char_confidences,omitempty" yaml:"char_confidences,omitempty"`
}

// MeanCharConfidence returns the mean per-character confidence and whether
// any per-character confidences were supplied
func (t ExtractedTag) MeanCharConfidence() (float64, bool) {
	if len(t.CharConfidences) == 0 {
		return 0, false
	}
	var sum float64
	for _, c := range t.CharConfidences {
		sum += c
	}
	return sum / float64(len(t.CharConfidences)), true
}

// DrawingMetadata describes the drawing the entities came from
type DrawingMetadata struct {
	FileName   string   `json:"file_name" yaml:"file_name"`
	Scale      string   `json:"scale,omitempty" yaml:"scale,omitempty"`
	Units      string   `json:"units,omitempty" yaml:"units,omitempty"`
	Layers     []string `json:"layers,omitempty" yaml:"layers,omitempty"`
	PageCount  int      `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	PageWidth  float64  `json:"page_width,omitempty" yaml:"page_width,omitempty"`
	PageHeight float64  `json:"page_height,omitempty" yaml:"page_height,omitempty"`
	Producer   string   `json:"producer,omitempty" yaml:"producer,omitempty"`
}

// ValidationInput bundles everything one validation run consumes
type ValidationInput struct {
	JobID      string            `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	Drawing    DrawingMetadata   `json:"drawing" yaml:"drawing"`
	References []ReferenceEntity `json:"references" yaml:"references"`
	Symbols    []DetectedSymbol  `json:"symbols" yaml:"symbols"`
	Tags       []ExtractedTag    `json:"tags" yaml:"tags"`
}

// EntityCount returns the total number of entities in the input
func (in ValidationInput) EntityCount() int {
	return len(in.References) + len(in.Symbols) + len(in.Tags)
}

// NormalizeScale maps an unknown (zero or negative) acquisition scale to 1.0
func NormalizeScale(scale float64) float64 {
	if scale <= 0 {
		return 1.0
	}
	return scale
}
