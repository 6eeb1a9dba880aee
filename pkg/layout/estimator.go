package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gigslides/pkg/gig"
)

// HeightEstimator predicts the rendered pixel height of one gig panel.
// Implementations must return a non-negative height.
type HeightEstimator interface {
	EstimateHeight(g gig.Record) int
}

// EstimatorFunc adapts a plain function to HeightEstimator
type EstimatorFunc func(g gig.Record) int

func (f EstimatorFunc) EstimateHeight(g gig.Record) int { return f(g) }

// Style holds the constants of the analytic model
type Style struct {
	CharsPerLine int
	BaseHeight   int
	LineHeight   int
	Padding      int
}

// DefaultStyle returns the constants tuned for the 540px slide
func DefaultStyle() Style {
	return Style{
		CharsPerLine: 35,
		BaseHeight:   64,
		LineHeight:   24,
		Padding:      8,
	}
}

// AnalyticEstimator computes height from the title's character count only
type AnalyticEstimator struct {
	style Style
}

// NewAnalyticEstimator binds a style. A non-positive CharsPerLine falls back to the default.
func NewAnalyticEstimator(style Style) *AnalyticEstimator {
	if style.CharsPerLine <= 0 {
		style.CharsPerLine = DefaultStyle().CharsPerLine
	}
	return &AnalyticEstimator{style: style}
}

// NameLines returns how many lines the title wraps to, never less than one
func (a *AnalyticEstimator) NameLines(name string) int {
	n := utf8.RuneCountInString(name)
	lines := (n + a.style.CharsPerLine - 1) / a.style.CharsPerLine
	if lines < 1 {
		lines = 1
	}
	return lines
}

// EstimateHeight implements HeightEstimator
func (a *AnalyticEstimator) EstimateHeight(g gig.Record) int {
	h := a.style.BaseHeight + (a.NameLines(g.Name)-1)*a.style.LineHeight + a.style.Padding
	if h < 0 {
		return 0
	}
	return h
}

// Strategy selects a height estimator implementation
type Strategy string

const (
	StrategyAnalytic Strategy = "analytic"
	// StrategyDOM measures the laid-out panel on a font surface
	StrategyDOM Strategy = "dom"
)

// ParseStrategy accepts "analytic", "dom" or its alias "measured"
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "analytic":
		return StrategyAnalytic, nil
	case "dom", "measured":
		return StrategyDOM, nil
	default:
		return "", fmt.Errorf("unknown estimator strategy %q", s)
	}
}

// NewEstimator builds the estimator for a strategy. The DOM strategy needs a surface.
func NewEstimator(strategy Strategy, style Style, surface Surface) (HeightEstimator, error) {
	switch strategy {
	case StrategyAnalytic:
		return NewAnalyticEstimator(style), nil
	case StrategyDOM:
		if surface == nil {
			return nil, fmt.Errorf("estimator %q requires a render surface", strategy)
		}
		return NewMeasuringEstimator(surface), nil
	default:
		return nil, fmt.Errorf("unknown estimator strategy %q", strategy)
	}
}
