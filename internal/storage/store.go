package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/san-kum/broadphase/internal/tree"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var stepsHeader = []string{"step", "time", "proxies", "moved", "reinserted", "candidates", "contacts", "height", "duration_ns"}

// Store keeps one directory per run holding its metadata and step log.
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
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Bodies      int                `json:"bodies"`
	Restitution float64            `json:"restitution"`
	Tree        tree.Options       `json:"tree"`
	MaxPairs    int                `json:"max_pairs"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	Metrics     map[string]float64 `json:"metrics"`
}

func newMetadata(cfg *config.Config, result *sim.Result) RunMetadata {
	return RunMetadata{
		Scene:       cfg.Scene,
		Integrator:  cfg.Integrator,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Steps:       result.StepsTaken,
		Bodies:      cfg.Bodies,
		Restitution: cfg.Restitution,
		Tree:        cfg.Tree,
		MaxPairs:    cfg.MaxPairs,
		Elapsed:     result.Elapsed,
		Metrics:     result.Metrics,
	}
}

// Save writes a run and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	meta := newMetadata(cfg, result)
	meta.ID = fmt.Sprintf("%s_%s", cfg.Scene, uuid.New().String())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, stepsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStepsCSV(csvFile, result.Steps); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSteps(runID string) ([]sim.StepStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadStepsCSV(file)
}

// WriteStepsCSV writes one row per step under a fixed header.
func WriteStepsCSV(out io.Writer, steps []sim.StepStats) error {
	w := csv.NewWriter(out)
	if err := w.Write(stepsHeader); err != nil {
		return err
	}
	for _, st := range steps {
		row := []string{
			strconv.Itoa(st.Step),
			strconv.FormatFloat(st.Time, 'f', 6, 64),
			strconv.Itoa(st.Proxies),
			strconv.Itoa(st.Moved),
			strconv.Itoa(st.Reinserted),
			strconv.Itoa(st.Candidates),
			strconv.Itoa(st.Contacts),
			strconv.Itoa(st.Height),
			strconv.FormatInt(st.Duration.Nanoseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ReadStepsCSV(in io.Reader) ([]sim.StepStats, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(stepsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.StepStats{}, nil
	}

	steps := make([]sim.StepStats, 0, len(records)-1)
	for i, rec := range records[1:] {
		var st sim.StepStats
		ints := make([]int, 0, 7)
		for _, j := range []int{0, 2, 3, 4, 5, 6, 7} {
			v, err := strconv.Atoi(rec[j])
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i+1, stepsHeader[j], err)
			}
			ints = append(ints, v)
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: time: %w", i+1, err)
		}
		ns, err := strconv.ParseInt(rec[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: duration: %w", i+1, err)
		}

		st.Step, st.Time = ints[0], t
		st.Proxies, st.Moved, st.Reinserted = ints[1], ints[2], ints[3]
		st.Candidates, st.Contacts, st.Height = ints[4], ints[5], ints[6]
		st.Duration = time.Duration(ns)
		steps = append(steps, st)
	}
	return steps, nil
}
