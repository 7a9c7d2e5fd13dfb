package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Steps: []sim.StepStats{
			{Step: 1, Time: 0.01, Proxies: 4, Moved: 4, Reinserted: 4, Candidates: 3, Contacts: 1, Height: 2, Duration: 1500 * time.Nanosecond},
			{Step: 2, Time: 0.02, Proxies: 4, Moved: 1, Reinserted: 1, Candidates: 1, Contacts: 1, Height: 2, Duration: 900 * time.Nanosecond},
		},
		StepsTaken: 2,
		Metrics: map[string]float64{
			"precision": 0.5,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	result := sampleResult()

	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "gas_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Scene != "gas" || meta.Seed != 42 || meta.Steps != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Tree != cfg.Tree {
		t.Errorf("tree options lost: %+v", meta.Tree)
	}
	if meta.Metrics["precision"] != 0.5 {
		t.Errorf("expected precision 0.5, got %f", meta.Metrics["precision"])
	}

	steps, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatalf("load steps failed: %v", err)
	}
	if diff := cmp.Diff(result.Steps, steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	first, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("run ids collide")
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "steps.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSteps("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReadStepsCSVRejectsGarbage(t *testing.T) {
	in := strings.Join(stepsHeader, ",") + "\n1,0.01,x,0,0,0,0,0,0\n"
	if _, err := ReadStepsCSV(strings.NewReader(in)); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, config.DefaultConfig(), sampleResult()); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Scene string `json:"scene"`
		Steps int    `json:"steps"`
		Log   []struct {
			Candidates int `json:"candidates"`
		} `json:"log"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Scene != "gas" || got.Steps != 2 || len(got.Log) != 2 || got.Log[0].Candidates != 3 {
		t.Errorf("unexpected export %+v", got)
	}
}
