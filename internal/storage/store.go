package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

var ErrMalformedRun = errors.New("storage: malformed run data")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Config      config.Config      `json:"config"`
	Steps       int                `json:"steps"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Errors      []string           `json:"errors,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and positions.csv under a fresh run directory.
// Only positions are kept; each CSV row is a recorded frame.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("cloth_%dx%d_%d", cfg.Grid.Rows, cfg.Grid.Cols, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Config:      *cfg,
		Steps:       result.StepsTaken,
		Frames:      len(result.States),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, "positions.csv"), result); err != nil {
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

func writePositions(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.States) > 0 {
		n := len(result.States[0]) / 6
		header := make([]string, 0, 1+3*n)
		header = append(header, "time")
		for i := 0; i < n; i++ {
			header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i, x := range result.States {
			pos, _ := x.Half()
			row := make([]string, 0, 1+len(pos))
			row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
			for _, val := range pos {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the recorded flat position rows and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "positions.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRun, i, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %d col %d: %v", ErrMalformedRun, i, j, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// LoadFrames is LoadStates with each row regrouped into particle positions.
func (s *Store) LoadFrames(runID string) ([][]mgl64.Vec3, []float64, error) {
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	frames := make([][]mgl64.Vec3, len(states))
	for i, row := range states {
		if len(row)%3 != 0 {
			return nil, nil, fmt.Errorf("%w: row %d has %d values", ErrMalformedRun, i+1, len(row))
		}
		frame := make([]mgl64.Vec3, len(row)/3)
		for p := range frame {
			frame[p] = mgl64.Vec3{row[3*p], row[3*p+1], row[3*p+2]}
		}
		frames[i] = frame
	}
	return frames, times, nil
}
