package sim

import (
	"time"

	"github.com/san-kum/sphindex/internal/dynamo"
)

type Config struct {
	// Frames is the number of frames to run.
	Frames int
	// SubSteps is the number of world sub-steps per frame.
	SubSteps int
	// RecordEvery keeps a snapshot every n frames. Zero disables recording.
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Frames:        300,
		SubSteps:      4,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Snapshot is a recorded frame.
type Snapshot struct {
	Frame     int
	Time      float64
	Particles []dynamo.Particle
}

type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	FramesRun  int
	SubSteps   int
	Neighbors  int
	Dropped    int
	Elapsed    time.Duration
	FinalState []dynamo.Particle
}

// StepsPerSecond reports sub-step throughput.
func (r *Result) StepsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.SubSteps) / r.Elapsed.Seconds()
}
