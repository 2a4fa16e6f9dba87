package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/rigidsim/internal/rollout"
)

// ExportData is the portable JSON form of one run.
type ExportData struct {
	Scene    string             `json:"scene"`
	Timestep float64            `json:"timestep"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Q        [][]float64        `json:"q"`
	QD       [][]float64        `json:"qd"`
	Actions  [][]float64        `json:"actions,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes the sampled trajectory as indented JSON.
func ExportJSON(w io.Writer, scene string, timestep float64, res *rollout.Result) error {
	data := ExportData{
		Scene:    scene,
		Timestep: timestep,
		Steps:    res.StepsTaken,
		Times:    res.Times,
		Metrics:  res.Metrics,
		Actions:  res.Actions,
	}
	for _, st := range res.States {
		data.Q = append(data.Q, st.Q)
		data.QD = append(data.QD, st.QD)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes the sampled trajectory as one row per sample with time,
// position and velocity columns.
func ExportCSV(w io.Writer, res *rollout.Result) error {
	if len(res.States) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)

	header := []string{"time"}
	for i := range res.States[0].Q {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	for i := range res.States[0].QD {
		header = append(header, fmt.Sprintf("qd%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range res.States {
		row := []string{strconv.FormatFloat(res.Times[i], 'f', 6, 64)}
		for _, v := range res.States[i].Q {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range res.States[i].QD {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
