// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"pca", MethodPCA, false},
		{"ca", MethodCA, false},
		{"nmds", MethodNMDS, false},
		{"", "", true},
		{"PCA", "", true},
		{"dca", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedMethod) {
					t.Fatalf("ParseMethod(%q) err = %v, want ErrUnsupportedMethod", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTransformDefaults(t *testing.T) {
	got, err := ParseTransform("")
	if err != nil {
		t.Fatalf("ParseTransform(\"\") err = %v", err)
	}
	if got != TransformNone {
		t.Errorf("ParseTransform(\"\") = %q, want none", got)
	}

	if _, err := ParseTransform("zscore"); !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("ParseTransform(zscore) err = %v, want ErrUnsupportedMethod", err)
	}
}

func TestParseDistanceDefaults(t *testing.T) {
	got, err := ParseDistance("")
	if err != nil {
		t.Fatalf("ParseDistance(\"\") err = %v", err)
	}
	if got != DistanceBray {
		t.Errorf("ParseDistance(\"\") = %q, want bray", got)
	}

	if _, err := ParseDistance("chebyshev"); !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("ParseDistance(chebyshev) err = %v, want ErrUnsupportedMethod", err)
	}
}

func TestAxisName(t *testing.T) {
	tests := []struct {
		method Method
		axis   int
		want   string
	}{
		{MethodPCA, 1, "PC1"},
		{MethodCA, 2, "CA2"},
		{MethodNMDS, 1, "NMDS1"},
	}
	for _, tt := range tests {
		r := Result{Method: tt.method}
		if got := r.AxisName(tt.axis); got != tt.want {
			t.Errorf("AxisName(%d) for %s = %q, want %q", tt.axis, tt.method, got, tt.want)
		}
	}
}
