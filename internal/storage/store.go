package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{"frame", "time", "id", "x", "y", "vx", "vy"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Index      string             `json:"index"`
	Integrator string             `json:"integrator"`
	Seed       int64              `json:"seed"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Particles  int                `json:"particles"`
	Step       float64            `json:"step"`
	SubSteps   int                `json:"sub_steps"`
	Frames     int                `json:"frames"`
	Snapshots  int                `json:"snapshots"`
	ElapsedMS  float64            `json:"elapsed_ms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Config rebuilds the parts of the run configuration the metadata keeps.
// Physics coefficients other than the step are left at their defaults.
func (m *RunMetadata) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Index = m.Index
	cfg.Integrator = m.Integrator
	cfg.Seed = m.Seed
	cfg.Width, cfg.Height = m.Width, m.Height
	cfg.Particles = m.Particles
	cfg.Physics.Step = m.Step
	cfg.SubSteps = m.SubSteps
	cfg.Frames = m.Frames
	return cfg
}

// Save writes the run's metadata and every recorded snapshot under a new
// run directory and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Index, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Index:      cfg.Index,
		Integrator: cfg.Integrator,
		Seed:       cfg.Seed,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Particles:  cfg.Particles,
		Step:       cfg.Physics.Step,
		SubSteps:   cfg.SubSteps,
		Frames:     result.FramesRun,
		Snapshots:  len(result.Snapshots),
		ElapsedMS:  float64(result.Elapsed.Microseconds()) / 1000,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Snapshots); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, snaps []sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}

	row := make([]string, len(framesHeader))
	for _, snap := range snaps {
		row[0] = strconv.Itoa(snap.Frame)
		row[1] = formatFloat(snap.Time)
		for id, p := range snap.Particles {
			row[2] = strconv.Itoa(id)
			row[3] = formatFloat(p.Position.X)
			row[4] = formatFloat(p.Position.Y)
			row[5] = formatFloat(p.Velocity.X)
			row[6] = formatFloat(p.Velocity.Y)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads the recorded snapshots of a run in file order.
func (s *Store) LoadFrames(runID string) ([]sim.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(framesHeader)
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("run %s: header: %w", runID, err)
	}

	snaps := make([]sim.Snapshot, 0)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}

		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("run %s line %d: frame: %w", runID, line, err)
		}
		var vals [5]float64
		for i, field := range []string{rec[1], rec[3], rec[4], rec[5], rec[6]} {
			if vals[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, line, err)
			}
		}

		if n := len(snaps); n == 0 || snaps[n-1].Frame != frame {
			snaps = append(snaps, sim.Snapshot{Frame: frame, Time: vals[0]})
		}
		last := &snaps[len(snaps)-1]
		last.Particles = append(last.Particles, dynamo.NewParticle(dynamo.V(vals[1], vals[2]), dynamo.V(vals[3], vals[4])))
	}
	return snaps, nil
}
