package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

var turnsHeader = []string{
	"turn", "alive", "mean_x", "mean_y", "std_x", "std_y", "emit_x", "emit_y",
}

// WriteCSV writes the per-turn series as CSV, one row per turn.
func WriteCSV(w io.Writer, td *TurnData) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(turnsHeader); err != nil {
		return err
	}

	for i := 0; i < td.Len(); i++ {
		row := []string{
			strconv.Itoa(td.Turn[i]),
			strconv.Itoa(td.Alive[i]),
			strconv.FormatFloat(td.MeanX[i], 'g', -1, 64),
			strconv.FormatFloat(td.MeanY[i], 'g', -1, 64),
			strconv.FormatFloat(td.StdX[i], 'g', -1, 64),
			strconv.FormatFloat(td.StdY[i], 'g', -1, 64),
			strconv.FormatFloat(td.EmitX[i], 'g', -1, 64),
			strconv.FormatFloat(td.EmitY[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a per-turn series written by WriteCSV. Malformed rows
// are skipped.
func ReadCSV(r io.Reader) (*TurnData, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	td := &TurnData{}
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(turnsHeader) {
			continue
		}

		turn, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		alive, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}

		vals := make([]float64, 6)
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(rec[2+j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		td.Turn = append(td.Turn, turn)
		td.Alive = append(td.Alive, alive)
		td.MeanX = append(td.MeanX, vals[0])
		td.MeanY = append(td.MeanY, vals[1])
		td.StdX = append(td.StdX, vals[2])
		td.StdY = append(td.StdY, vals[3])
		td.EmitX = append(td.EmitX, vals[4])
		td.EmitY = append(td.EmitY, vals[5])
	}

	return td, nil
}

type exportDoc struct {
	Meta  RunMeta   `json:"meta"`
	Turn  []int     `json:"turn"`
	Alive []int     `json:"alive"`
	MeanX []float64 `json:"mean_x"`
	MeanY []float64 `json:"mean_y"`
	StdX  []float64 `json:"std_x"`
	StdY  []float64 `json:"std_y"`
	EmitX []float64 `json:"emit_x"`
	EmitY []float64 `json:"emit_y"`
}

// ExportJSON writes the run metadata and per-turn series as one
// indented JSON document.
func ExportJSON(w io.Writer, meta *RunMeta, td *TurnData) error {
	doc := exportDoc{
		Meta:  *meta,
		Turn:  td.Turn,
		Alive: td.Alive,
		MeanX: td.MeanX,
		MeanY: td.MeanY,
		StdX:  td.StdX,
		StdY:  td.StdY,
		EmitX: td.EmitX,
		EmitY: td.EmitY,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
