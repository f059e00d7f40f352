package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Snapshots: []sim.Snapshot{
			{Frame: 0, Time: 0, Particles: []dynamo.Particle{
				dynamo.NewParticle(dynamo.V(1, 2), dynamo.V(0, 0)),
				dynamo.NewParticle(dynamo.V(3.25, 4), dynamo.V(-1, 0.1)),
			}},
			{Frame: 5, Time: 0.12, Particles: []dynamo.Particle{
				dynamo.NewParticle(dynamo.V(1.000001, 2.5), dynamo.V(0.3, 1.0/3.0)),
				dynamo.NewParticle(dynamo.V(3, 4.75), dynamo.V(-1, 0)),
			}},
		},
		Metrics:   map[string]float64{"kinetic_energy": 1.5},
		FramesRun: 5,
		Elapsed:   1500 * time.Microsecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	result := testResult()

	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Index != "quadtree" {
		t.Errorf("expected index 'quadtree', got '%s'", meta.Index)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if meta.Frames != 5 || meta.Snapshots != 2 || meta.ElapsedMS != 1.5 {
		t.Errorf("unexpected counts: %+v", meta)
	}

	snaps, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	for i, want := range result.Snapshots {
		got := snaps[i]
		if got.Frame != want.Frame || got.Time != want.Time {
			t.Errorf("snapshot %d: got frame %d t=%v", i, got.Frame, got.Time)
		}
		if len(got.Particles) != len(want.Particles) {
			t.Fatalf("snapshot %d: expected %d particles, got %d", i, len(want.Particles), len(got.Particles))
		}
		for j := range want.Particles {
			if got.Particles[j] != want.Particles[j] {
				t.Errorf("snapshot %d particle %d: got %v, want %v", i, j, got.Particles[j], want.Particles[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if runs, err := st.List(); err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", runs, err)
	}

	cfg := config.DefaultConfig()
	first, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Index = "grid"
	second, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatal(err)
	}
	os.MkdirAll(filepath.Join(st.baseDir, "not-a-run"), 0755)

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadFrames("nope"); err == nil {
		t.Error("expected error for missing frames")
	}
}

func TestLoadFramesMalformed(t *testing.T) {
	st := New(t.TempDir())
	dir := filepath.Join(st.baseDir, "bad")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, framesFile), []byte("frame,time,id,x,y,vx,vy\n0,0,0,1,x,0,0\n"), 0644)

	if _, err := st.LoadFrames("bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	if err := ExportJSON(&buf, cfg, testResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Index != cfg.Index || len(data.Frames) != 2 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Frames[0].Positions[1] != [2]float64{3.25, 4} {
		t.Errorf("position: got %v", data.Frames[0].Positions[1])
	}
	if data.Frames[1].Velocity[0] != [2]float64{0.3, 1.0 / 3.0} {
		t.Errorf("velocity: got %v", data.Frames[1].Velocity[0])
	}
}

func TestRunMetadataConfig(t *testing.T) {
	meta := RunMetadata{
		Index:      "hilbert",
		Integrator: "euler",
		Seed:       7,
		Width:      300,
		Height:     200,
		Particles:  40,
		Step:       0.01,
		SubSteps:   2,
		Frames:     12,
	}
	cfg := meta.Config()
	if cfg.Index != "hilbert" || cfg.Integrator != "euler" || cfg.Seed != 7 {
		t.Errorf("names not restored: %+v", cfg)
	}
	if cfg.Width != 300 || cfg.Height != 200 || cfg.Particles != 40 || cfg.Frames != 12 || cfg.SubSteps != 2 {
		t.Errorf("sizes not restored: %+v", cfg)
	}
	if cfg.Physics.Step != 0.01 || cfg.Physics.Radius != config.DefaultPhysics().Radius {
		t.Errorf("physics = %+v", cfg.Physics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("restored config invalid: %v", err)
	}
}
