package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/rollout"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return st
}

func testResult() *rollout.Result {
	return &rollout.Result{
		States: []*positional.State{
			{Q: []float64{0.8}, QD: []float64{0.0}},
			{Q: []float64{0.75}, QD: []float64{-0.4}},
			{Q: []float64{0.6}, QD: []float64{-0.9}},
		},
		Actions: [][]float64{{0.0}, {0.1}},
		Times:   []float64{0.0, 0.05, 0.1},
		Metrics: map[string]float64{
			"energy":    14.715,
			"stability": 1.0,
		},
		StepsTaken: 100,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	id, err := st.SaveRun(ctx, "pendulum", 0.001, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero run id")
	}

	run, err := st.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if run.Scene != "pendulum" {
		t.Errorf("expected scene 'pendulum', got '%s'", run.Scene)
	}
	if run.Timestep != 0.001 {
		t.Errorf("expected timestep 0.001, got %f", run.Timestep)
	}
	if run.Steps != 100 {
		t.Errorf("expected 100 steps, got %d", run.Steps)
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected non-zero created time")
	}
	if run.Metrics["energy"] != 14.715 {
		t.Errorf("expected energy 14.715, got %f", run.Metrics["energy"])
	}
	if run.Metrics["stability"] != 1.0 {
		t.Errorf("expected stability 1.0, got %f", run.Metrics["stability"])
	}
}

func TestStoreSamplesRoundTrip(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	res := testResult()

	id, err := st.SaveRun(ctx, "pendulum", 0.001, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	samples, err := st.Samples(ctx, id)
	if err != nil {
		t.Fatalf("samples failed: %v", err)
	}

	if len(samples) != len(res.States) {
		t.Fatalf("expected %d samples, got %d", len(res.States), len(samples))
	}

	for i := 0; i < len(samples); i++ {
		if samples[i].T != res.Times[i] {
			t.Errorf("sample %d: expected time %f, got %f", i, res.Times[i], samples[i].T)
		}
		if len(samples[i].Q) != 1 || samples[i].Q[0] != res.States[i].Q[0] {
			t.Errorf("sample %d: expected q %v, got %v", i, res.States[i].Q, samples[i].Q)
		}
		if len(samples[i].QD) != 1 || samples[i].QD[0] != res.States[i].QD[0] {
			t.Errorf("sample %d: expected qd %v, got %v", i, res.States[i].QD, samples[i].QD)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.SaveRun(ctx, "pendulum", 0.001, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.SaveRun(ctx, "slider", 0.001, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scene != "pendulum" || runs[1].Scene != "slider" {
		t.Errorf("expected scenes [pendulum slider], got [%s %s]", runs[0].Scene, runs[1].Scene)
	}
}

func TestStoreDelete(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	id, err := st.SaveRun(ctx, "pendulum", 0.001, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := st.DeleteRun(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := st.GetRun(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	samples, err := st.Samples(ctx, id)
	if err != nil {
		t.Fatalf("samples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected cascade to remove samples, got %d", len(samples))
	}

	if err := st.DeleteRun(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	st := openStore(t)

	if _, err := st.GetRun(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsEmptyResult(t *testing.T) {
	st := openStore(t)

	if _, err := st.SaveRun(context.Background(), "pendulum", 0.001, &rollout.Result{}); err == nil {
		t.Error("expected error for result with no samples")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for blank path")
	}
}
