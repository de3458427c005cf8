// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data and configuration types shared between the
// ordination-engine CLI and the internal stage packages.
// See docs/ARCHITECTURE § Shared Types.
package types

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod reports an unrecognized method, transform, distance,
// or score-kind selector.
var ErrUnsupportedMethod = errors.New("unsupported method")

// Method selects the ordination technique.
type Method string

const (
	MethodPCA  Method = "pca"
	MethodCA   Method = "ca"
	MethodNMDS Method = "nmds"
)

// ParseMethod validates a method selector from a flag or config value.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodPCA, MethodCA, MethodNMDS:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: method %q (use pca, ca, or nmds)", ErrUnsupportedMethod, s)
}

// Transform selects the standardization applied to a community table before
// ordination. The choice is configuration, never hard-coded: the literature
// offers heuristics (square-root or Wisconsin for NMDS) but no fixed rule.
type Transform string

const (
	TransformNone      Transform = "none"
	TransformSqrt      Transform = "sqrt"
	TransformTotal     Transform = "total"
	TransformHellinger Transform = "hellinger"
	TransformWisconsin Transform = "wisconsin"
)

// ParseTransform validates a transform selector.
func ParseTransform(s string) (Transform, error) {
	if s == "" {
		return TransformNone, nil
	}
	switch Transform(s) {
	case TransformNone, TransformSqrt, TransformTotal, TransformHellinger, TransformWisconsin:
		return Transform(s), nil
	}
	return "", fmt.Errorf("%w: transform %q (use none, sqrt, total, hellinger, or wisconsin)", ErrUnsupportedMethod, s)
}

// Distance selects the pairwise dissimilarity measure used by NMDS.
type Distance string

const (
	DistanceBray      Distance = "bray"
	DistanceJaccard   Distance = "jaccard"
	DistanceEuclidean Distance = "euclidean"
	DistanceManhattan Distance = "manhattan"
	DistanceGower     Distance = "gower"
)

// ParseDistance validates a distance selector.
func ParseDistance(s string) (Distance, error) {
	if s == "" {
		return DistanceBray, nil
	}
	switch Distance(s) {
	case DistanceBray, DistanceJaccard, DistanceEuclidean, DistanceManhattan, DistanceGower:
		return Distance(s), nil
	}
	return "", fmt.Errorf("%w: distance %q (use bray, jaccard, euclidean, manhattan, or gower)", ErrUnsupportedMethod, s)
}

// ScoreKind selects which entity's coordinates to extract from a result.
type ScoreKind string

const (
	ScoreSites   ScoreKind = "sites"
	ScoreSpecies ScoreKind = "species"
)

// ParseScoreKind validates a score-kind selector.
func ParseScoreKind(s string) (ScoreKind, error) {
	switch ScoreKind(s) {
	case ScoreSites, ScoreSpecies:
		return ScoreKind(s), nil
	}
	return "", fmt.Errorf("%w: score kind %q (use sites or species)", ErrUnsupportedMethod, s)
}
