package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/broadphase/internal/config"
	"github.com/san-kum/broadphase/internal/sim"
)

type ExportData struct {
	RunMetadata
	Log []sim.StepStats `json:"log"`
}

func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		RunMetadata: newMetadata(cfg, result),
		Log:         result.Steps,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, cfg, result)
}
