// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"fmt"
	"math"
)

// Geometry is an axis-aligned bounding box in drawing units.
// X and Y locate the box origin; Rotation is informational only.
type Geometry struct {
	X        float64  `json:"x" yaml:"x"`
	Y        float64  `json:"y" yaml:"y"`
	Width    float64  `json:"width" yaml:"width"`
	Height   float64  `json:"height" yaml:"height"`
	Rotation *float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Point is a location in drawing units
type Point struct {
	X float64
	Y float64
}

// Center returns the center of the bounding box
func (g Geometry) Center() Point {
	return Point{X: g.X + g.Width/2, Y: g.Y + g.Height/2}
}

// Distance returns the center-to-center Euclidean distance between two boxes
func Distance(a, b Geometry) float64 {
	ca, cb := a.Center(), b.Center()
	return math.Hypot(ca.X-cb.X, ca.Y-cb.Y)
}

// Check reports why the geometry is unusable, or nil when it is valid
func (g Geometry) Check() error {
	names := [...]string{"x", "y", "width", "height"}
	for i, v := range [...]float64{g.X, g.Y, g.Width, g.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number", names[i])
		}
	}
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("negative size %gx%g", g.Width, g.Height)
	}
	if g.Rotation != nil && (math.IsNaN(*g.Rotation) || math.IsInf(*g.Rotation, 0)) {
		return fmt.Errorf("rotation is not a finite number")
	}
	return nil
}
