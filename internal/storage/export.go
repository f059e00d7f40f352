package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/sim"
)

type ExportFrame struct {
	Frame     int          `json:"frame"`
	Time      float64      `json:"time"`
	Positions [][2]float64 `json:"positions"`
	Velocity  [][2]float64 `json:"velocities"`
}

type ExportData struct {
	Index      string             `json:"index"`
	Integrator string             `json:"integrator"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Step       float64            `json:"step"`
	SubSteps   int                `json:"sub_steps"`
	Frames     []ExportFrame      `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes the run's recorded snapshots and metrics as indented
// JSON.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		Index:      cfg.Index,
		Integrator: cfg.Integrator,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Step:       cfg.Physics.Step,
		SubSteps:   cfg.SubSteps,
		Frames:     make([]ExportFrame, len(result.Snapshots)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.Snapshots {
		data.Frames[i] = ExportFrame{
			Frame:     s.Frame,
			Time:      s.Time,
			Positions: pairs(s.Particles, func(p dynamo.Particle) dynamo.Vec2 { return p.Position }),
			Velocity:  pairs(s.Particles, func(p dynamo.Particle) dynamo.Vec2 { return p.Velocity }),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func pairs(ps []dynamo.Particle, get func(dynamo.Particle) dynamo.Vec2) [][2]float64 {
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		v := get(p)
		out[i] = [2]float64{v.X, v.Y}
	}
	return out
}
