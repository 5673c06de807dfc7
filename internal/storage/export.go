package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

type ExportData struct {
	Config      config.Config      `json:"config"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Times       []float64          `json:"times"`
	Positions   [][]float64        `json:"positions"`
	Metrics     map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run's recorded positions and metrics as one JSON
// document.
func ExportJSON(w io.Writer, cfg *config.Config, result *dynamo.Result) error {
	data := ExportData{
		Config:      *cfg,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Times:       result.Times,
		Positions:   make([][]float64, len(result.States)),
		Metrics:     result.Metrics,
	}

	for i, s := range result.States {
		pos, _ := s.Half()
		data.Positions[i] = pos
	}

	return encodeIndented(w, data)
}

// ExportRun writes a stored run in the layout ExportJSON uses.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	return encodeIndented(w, ExportData{
		Config:      meta.Config,
		Steps:       meta.Steps,
		EnergyDrift: meta.EnergyDrift,
		Times:       times,
		Positions:   states,
		Metrics:     meta.Metrics,
	})
}

// Mesh is a renderer-ready snapshot: interleaved [px,py,pz,nx,ny,nz]
// vertices and a triangle list.
type Mesh struct {
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Time     float64   `json:"time"`
	Stride   int       `json:"stride"`
	Vertices []float32 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
}

func NewMesh(sim *cloth.Simulation) Mesh {
	p := sim.Params()
	return Mesh{
		Rows:     p.Rows,
		Cols:     p.Cols,
		Time:     sim.Time(),
		Stride:   6,
		Vertices: sim.Frame().VertexBuffer(),
		Indices:  cloth.TriangleIndices(p.Rows, p.Cols),
	}
}

func ExportMesh(w io.Writer, mesh Mesh) error {
	return encodeIndented(w, mesh)
}

func encodeIndented(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
