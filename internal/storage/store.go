// Package storage persists tracking runs. Each run gets a directory
// with a metadata.json and a turns.csv of per-turn beam statistics,
// and a sqlite index keeps the run catalog queryable.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/beamkit/beamkit/internal/monitor"
)

type Store struct {
	baseDir string
	db      *sql.DB
}

// Open creates the data directory if needed and opens the run index.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, "index.db"))
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			lattice           TEXT,
			timestamp         TIMESTAMP,
			energy            DOUBLE,
			species           TEXT,
			turns             BIGINT,
			particles         BIGINT,
			survivors         BIGINT,
			seed              BIGINT
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type RunMeta struct {
	ID        string    `json:"id"`
	Lattice   string    `json:"lattice"`
	Timestamp time.Time `json:"timestamp"`
	Energy    float64   `json:"energy"`
	Species   string    `json:"species"`
	Turns     int       `json:"turns"`
	Particles int       `json:"particles"`
	Survivors int       `json:"survivors"`
	Seed      uint64    `json:"seed"`
}

// SaveRun writes the run directory and registers the run in the index.
// The generated run ID is returned. Timestamp and ID fields of meta are
// filled in here.
func (s *Store) SaveRun(meta RunMeta, stats *monitor.BeamStats, loss *monitor.LossMonitor) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "turns.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, collectTurns(stats, loss)); err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, lattice, timestamp, energy, species, turns, particles, survivors, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Lattice, meta.Timestamp, meta.Energy, meta.Species,
		meta.Turns, meta.Particles, meta.Survivors, int64(meta.Seed),
	)
	if err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns the run catalog, newest first.
func (s *Store) List() ([]RunMeta, error) {
	rows, err := s.db.Query(
		`SELECT id, lattice, timestamp, energy, species, turns, particles, survivors, seed
		 FROM runs ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var meta RunMeta
		var seed int64
		if err := rows.Scan(
			&meta.ID, &meta.Lattice, &meta.Timestamp, &meta.Energy, &meta.Species,
			&meta.Turns, &meta.Particles, &meta.Survivors, &seed,
		); err != nil {
			return nil, err
		}
		meta.Seed = uint64(seed)
		runs = append(runs, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Load reads the metadata of a stored run.
func (s *Store) Load(runID string) (*RunMeta, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTurns reads the per-turn series of a stored run.
func (s *Store) LoadTurns(runID string) (*TurnData, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "turns.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// TurnData holds the per-turn series of one run.
type TurnData struct {
	Turn  []int
	Alive []int
	MeanX []float64
	MeanY []float64
	StdX  []float64
	StdY  []float64
	EmitX []float64
	EmitY []float64
}

func (d *TurnData) Len() int {
	return len(d.Turn)
}

func collectTurns(stats *monitor.BeamStats, loss *monitor.LossMonitor) *TurnData {
	n := 0
	if stats != nil {
		n = stats.Turns()
	}
	if loss != nil && len(loss.Alive) > n {
		n = len(loss.Alive)
	}

	td := &TurnData{
		Turn:  make([]int, n),
		Alive: make([]int, n),
		MeanX: make([]float64, n),
		MeanY: make([]float64, n),
		StdX:  make([]float64, n),
		StdY:  make([]float64, n),
		EmitX: make([]float64, n),
		EmitY: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		td.Turn[i] = i + 1
		if loss != nil && i < len(loss.Alive) {
			td.Alive[i] = loss.Alive[i]
		}
		if stats != nil && i < stats.Turns() {
			td.MeanX[i] = stats.MeanX[i]
			td.MeanY[i] = stats.MeanY[i]
			td.StdX[i] = stats.StdX[i]
			td.StdY[i] = stats.StdY[i]
			td.EmitX[i] = stats.EmitX[i]
			td.EmitY[i] = stats.EmitY[i]
		}
	}

	return td
}

// Select returns the named series of the run, for plotting.
func (d *TurnData) Select(series string) ([]float64, error) {
	switch series {
	case "alive":
		vals := make([]float64, len(d.Alive))
		for i, a := range d.Alive {
			vals[i] = float64(a)
		}
		return vals, nil
	case "mean_x":
		return d.MeanX, nil
	case "mean_y":
		return d.MeanY, nil
	case "std_x":
		return d.StdX, nil
	case "std_y":
		return d.StdY, nil
	case "emit_x":
		return d.EmitX, nil
	case "emit_y":
		return d.EmitY, nil
	}
	return nil, fmt.Errorf("storage: unknown series %q", series)
}
