package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/linserv/actions-dashboard/internal/model"
)

// WriteJSON writes the machine-readable snapshot to <outDir>/dashboard.json.
func WriteJSON(outDir string, snap *model.Snapshot) (string, error) {
	path := filepath.Join(outDir, "dashboard.json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", err
	}
	return path, nil
}
