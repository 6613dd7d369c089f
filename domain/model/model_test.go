package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gobest/domain/core"
)

func TestBuildOneGroup_Hyperparameters(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	m, err := BuildOneGroup(data, 0)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}

	// Population standard deviation of 1..5 is sqrt(2).
	wantSD := math.Sqrt(2)
	h := m.Priors()

	if math.Abs(h.MeanLoc-3) > 1e-12 {
		t.Errorf("MeanLoc = %g, want 3", h.MeanLoc)
	}
	if math.Abs(h.MeanScale-wantSD*1000) > 1e-9 {
		t.Errorf("MeanScale = %g, want %g", h.MeanScale, wantSD*1000)
	}
	if math.Abs(h.SigmaLow-wantSD/1000) > 1e-12 {
		t.Errorf("SigmaLow = %g, want %g", h.SigmaLow, wantSD/1000)
	}
	if math.Abs(h.SigmaHigh-wantSD*1000) > 1e-9 {
		t.Errorf("SigmaHigh = %g, want %g", h.SigmaHigh, wantSD*1000)
	}
	if h.NuMin != 2.5 || h.NuMean != 30 {
		t.Errorf("nu hyperparameters = (%g, %g), want (2.5, 30)", h.NuMin, h.NuMean)
	}
}

func TestBuildOneGroup_Deterministic(t *testing.T) {
	data := []float64{12.5, 14.1, 11.8, 13.3, 12.9, 15.0}
	m1, err := BuildOneGroup(data, 13)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	m2, err := BuildOneGroup(data, 13)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if m1.Priors() != m2.Priors() {
		t.Errorf("hyperparameters differ between identical builds: %+v vs %+v", m1.Priors(), m2.Priors())
	}
}

func TestBuildOneGroup_InputValidation(t *testing.T) {
	if _, err := BuildOneGroup([]float64{1}, 0); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("single point: got %v, want ErrInsufficientData", err)
	}
	if _, err := BuildOneGroup(nil, 0); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("nil data: got %v, want ErrInsufficientData", err)
	}
	if _, err := BuildOneGroup([]float64{1, math.NaN(), 3}, 0); !errors.Is(err, core.ErrNonFinite) {
		t.Errorf("NaN data: got %v, want ErrNonFinite", err)
	}
	if _, err := BuildOneGroup([]float64{1, math.Inf(1)}, 0); !errors.Is(err, core.ErrNonFinite) {
		t.Errorf("Inf data: got %v, want ErrNonFinite", err)
	}
	if _, err := BuildOneGroup([]float64{5, 5, 5}, 0); !errors.Is(err, core.ErrZeroVariance) {
		t.Errorf("constant data: got %v, want ErrZeroVariance", err)
	}
}

func TestBuildTwoGroup_InputValidation(t *testing.T) {
	good := []float64{1, 2, 3}
	if _, err := BuildTwoGroup([]float64{1}, good); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("short group 1: got %v, want ErrInsufficientData", err)
	}
	if _, err := BuildTwoGroup(good, []float64{math.NaN(), 1}); !errors.Is(err, core.ErrNonFinite) {
		t.Errorf("NaN group 2: got %v, want ErrNonFinite", err)
	}
}

func TestObservedData(t *testing.T) {
	y1 := []float64{1, 2, 3}
	y2 := []float64{4, 5, 6, 7}

	one, err := BuildOneGroup(y1, 0)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}
	got, err := one.ObservedData(1)
	if err != nil {
		t.Fatalf("ObservedData(1) failed: %v", err)
	}
	if !equalFloats(got, y1) {
		t.Errorf("ObservedData(1) = %v, want %v", got, y1)
	}
	if _, err := one.ObservedData(2); !errors.Is(err, core.ErrInvalidGroupID) {
		t.Errorf("ObservedData(2) on one-group: got %v, want ErrInvalidGroupID", err)
	}

	two, err := BuildTwoGroup(y1, y2)
	if err != nil {
		t.Fatalf("BuildTwoGroup failed: %v", err)
	}
	got1, _ := two.ObservedData(1)
	got2, _ := two.ObservedData(2)
	if !equalFloats(got1, y1) || !equalFloats(got2, y2) {
		t.Errorf("two-group observed data mismatch: %v / %v", got1, got2)
	}
	if _, err := two.ObservedData(3); !errors.Is(err, core.ErrInvalidGroupID) {
		t.Errorf("ObservedData(3): got %v, want ErrInvalidGroupID", err)
	}
	if _, err := two.ObservedData(0); !errors.Is(err, core.ErrInvalidGroupID) {
		t.Errorf("ObservedData(0): got %v, want ErrInvalidGroupID", err)
	}
}

func TestObservedData_CopyIsIndependent(t *testing.T) {
	y := []float64{1, 2, 3}
	m, err := BuildOneGroup(y, 0)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}
	got, _ := m.ObservedData(1)
	got[0] = 99
	again, _ := m.ObservedData(1)
	if again[0] != 1 {
		t.Error("mutating the returned slice changed the model's data")
	}
}

func TestGraph_VariableNames(t *testing.T) {
	one, err := BuildOneGroup([]float64{1, 2, 3, 4}, 0)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}
	wantOne := []string{VarEffectSize, VarLogSigma, VarMean, VarNormality, VarSD, VarSigma}
	if names := one.Graph().VariableNames(); !equalStrings(names, wantOne) {
		t.Errorf("one-group variables = %v, want %v", names, wantOne)
	}

	two, err := BuildTwoGroup([]float64{1, 2, 3, 4}, []float64{2, 3, 4, 5})
	if err != nil {
		t.Fatalf("BuildTwoGroup failed: %v", err)
	}
	names := two.Graph().VariableNames()
	for _, want := range []string{
		VarGroup1Mean, VarGroup2Mean, VarGroup1Sigma, VarGroup2Sigma,
		VarGroup1SD, VarGroup2SD, VarNormality, VarDiffOfMeans,
		VarDiffOfSDs, VarEffectSize,
	} {
		if !containsString(names, want) {
			t.Errorf("two-group variables missing %q (got %v)", want, names)
		}
	}
}

func TestGraph_LogPosteriorFiniteAtInit(t *testing.T) {
	one, err := BuildOneGroup([]float64{10, 11, 9, 12, 10.5}, 0)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}
	if lp := one.Graph().LogPosterior(one.Graph().InitialPoint()); math.IsInf(lp, 0) || math.IsNaN(lp) {
		t.Errorf("one-group log posterior at init = %g, want finite", lp)
	}

	two, err := BuildTwoGroup([]float64{10, 11, 9}, []float64{12, 13, 11})
	if err != nil {
		t.Fatalf("BuildTwoGroup failed: %v", err)
	}
	if lp := two.Graph().LogPosterior(two.Graph().InitialPoint()); math.IsInf(lp, 0) || math.IsNaN(lp) {
		t.Errorf("two-group log posterior at init = %g, want finite", lp)
	}
}

func TestGraph_DeterministicTransforms(t *testing.T) {
	m, err := BuildTwoGroup([]float64{1, 2, 3, 4}, []float64{2, 3, 4, 5})
	if err != nil {
		t.Fatalf("BuildTwoGroup failed: %v", err)
	}

	p := m.Graph().InitialPoint()
	p[VarGroup1Mean] = 3
	p[VarGroup2Mean] = 1
	p[VarGroup1LogSigma] = 0 // sigma 1
	p[VarGroup2LogSigma] = 0
	p[VarNormality] = 30

	derived := m.Graph().EvalDeterministic(p)
	if got := derived[VarDiffOfMeans]; got != 2 {
		t.Errorf("difference of means = %g, want 2", got)
	}
	wantSD := math.Sqrt(30.0 / 28.0)
	if got := derived[VarGroup1SD]; math.Abs(got-wantSD) > 1e-12 {
		t.Errorf("group 1 SD = %g, want %g", got, wantSD)
	}
	wantEffect := 2 / wantSD
	if got := derived[VarEffectSize]; math.Abs(got-wantEffect) > 1e-12 {
		t.Errorf("effect size = %g, want %g", got, wantEffect)
	}
}

func TestModel_Metadata(t *testing.T) {
	one, err := BuildOneGroup([]float64{1, 2, 3}, 1.5)
	if err != nil {
		t.Fatalf("BuildOneGroup failed: %v", err)
	}
	if one.Version() != "v2" {
		t.Errorf("Version = %q, want v2", one.Version())
	}
	if one.Kind() != KindOneGroup || one.NumGroups() != 1 {
		t.Errorf("unexpected kind/groups: %v / %d", one.Kind(), one.NumGroups())
	}
	if one.ReferenceValue() != 1.5 {
		t.Errorf("ReferenceValue = %g, want 1.5", one.ReferenceValue())
	}
	if s := one.String(); !strings.Contains(s, "Normal(") || !strings.Contains(s, "Exponential(") {
		t.Errorf("String() missing prior description: %q", s)
	}

	two, err := BuildTwoGroup([]float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatalf("BuildTwoGroup failed: %v", err)
	}
	if two.Kind() != KindTwoGroup || two.NumGroups() != 2 {
		t.Errorf("unexpected kind/groups: %v / %d", two.Kind(), two.NumGroups())
	}
	if s := two.String(); !strings.Contains(s, "mu1") || !strings.Contains(s, "y2 ~ t(") {
		t.Errorf("String() missing two-group description: %q", s)
	}
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
