// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Correction rule names reported by NormalizeWithCorrections, in the order
// they are listed.
const (
	CorrectionUnicodeFold = "unicode_fold"
	CorrectionWhitespace  = "whitespace"
	CorrectionDash        = "dash"
	CorrectionUppercase   = "uppercase"
	CorrectionOToZero     = "o_to_0"
	CorrectionIToOne      = "i_to_1"
	CorrectionPipeToOne   = "pipe_to_1"
	CorrectionSToFive     = "s_to_5"
	CorrectionZToTwo      = "z_to_2"
)

var correctionOrder = []string{
	CorrectionUnicodeFold,
	CorrectionWhitespace,
	CorrectionDash,
	CorrectionUppercase,
	CorrectionOToZero,
	CorrectionIToOne,
	CorrectionPipeToOne,
	CorrectionSToFive,
	CorrectionZToTwo,
}

// maxPasses bounds the outer fixpoint loop. Every pass either leaves the
// string unchanged or turns letters into digits, so real tags settle in two.
const maxPasses = 8

// dashReplacer maps every dash-like rune OCR produces onto a plain hyphen
var dashReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"_", "-",
)

// Normalize canonicalizes a raw tag string. It is idempotent.
func Normalize(raw string) string {
	normalized, _ := NormalizeWithCorrections(raw)
	return normalized
}

// NormalizeWithCorrections canonicalizes a raw tag string and returns the
// names of the correction rules that changed it.
func NormalizeWithCorrections(raw string) (string, []string) {
	fired := make(map[string]bool)
	current := raw
	for pass := 0; pass < maxPasses; pass++ {
		next := normalizePass(current, fired)
		if next == current {
			break
		}
		current = next
	}

	var corrections []string
	for _, name := range correctionOrder {
		if fired[name] {
			corrections = append(corrections, name)
		}
	}
	return current, corrections
}

func normalizePass(s string, fired map[string]bool) string {
	s = apply(s, CorrectionUnicodeFold, fired, func(v string) string {
		return width.Fold.String(norm.NFKC.String(v))
	})
	s = apply(s, CorrectionDash, fired, dashReplacer.Replace)
	s = apply(s, CorrectionWhitespace, fired, collapseWhitespace)
	s = apply(s, CorrectionUppercase, fired, strings.ToUpper)
	return fixDigitConfusions(s, fired)
}

func apply(s, name string, fired map[string]bool, fn func(string) string) string {
	out := fn(s)
	if out != s {
		fired[name] = true
	}
	return out
}

// collapseWhitespace trims, removes whitespace around hyphens and collapses
// any other whitespace run to a single space
func collapseWhitespace(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " -", "-")
	return strings.ReplaceAll(s, "- ", "-")
}

// fixDigitConfusions applies the contextual OCR fixes until no rune can
// change. A rune only ever turns into a digit, and each rule only asks whether
// a neighbor is a digit, so a fix can enable fixes of its two neighbors and
// nothing else. The worklist settles in linear time.
func fixDigitConfusions(s string, fired map[string]bool) string {
	runes := []rune(s)
	pending := make([]int, len(runes))
	for i := range runes {
		pending[i] = len(runes) - 1 - i
	}

	for len(pending) > 0 {
		i := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		digit, rule := confusedDigit(runes, i)
		if rule == "" {
			continue
		}
		runes[i] = digit
		fired[rule] = true
		if i > 0 {
			pending = append(pending, i-1)
		}
		if i+1 < len(runes) {
			pending = append(pending, i+1)
		}
	}
	return string(runes)
}

// confusedDigit returns the digit the rune at i stands for in its current
// context and the correction rule that says so, or an empty rule
func confusedDigit(runes []rune, i int) (rune, string) {
	prev, after := neighbor(runes, i-1), neighbor(runes, i+1)
	nearDigit := isDigit(prev) || isDigit(after)
	numeric := isDigit(after) && (isDigit(prev) || prev == '-')

	switch r := runes[i]; {
	case r == 'O' && nearDigit:
		return '0', CorrectionOToZero
	case r == 'I' && nearDigit:
		return '1', CorrectionIToOne
	case r == '|':
		return '1', CorrectionPipeToOne
	case r == 'S' && numeric:
		return '5', CorrectionSToFive
	case r == 'Z' && numeric:
		return '2', CorrectionZToTwo
	default:
		return 0, ""
	}
}

func neighbor(runes []rune, i int) rune {
	if i < 0 || i >= len(runes) {
		return 0
	}
	return runes[i]
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}
