// Package report writes the end-of-run summary: a machine-readable JSON file
// and a short Markdown digest. Chart and PDF rendering are out of scope; the
// files here are plain derived reads of the final model state.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/social"
)

// Summary is the final snapshot of a completed run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Steps      uint64        `json:"total_steps"`
	Final      model.Metrics `json:"final_metrics"`
	Households int           `json:"households"`
	Sheltered  int           `json:"sheltered_households"`
	Evacuating int           `json:"evacuating_households"`
	Shelters   int           `json:"shelters"`
	Rivers     int           `json:"rivers"`
	Sectors    int           `json:"economic_agents"`
}

// Build assembles the summary from the final model state.
func Build(runID string, mdl *model.Model) Summary {
	sheltered, evacuating := 0, 0
	for _, h := range mdl.Households {
		switch h.Status {
		case social.StatusSheltered:
			sheltered++
		case social.StatusEvacuating:
			evacuating++
		}
	}
	return Summary{
		RunID:      runID,
		Steps:      mdl.CurrentStep(),
		Final:      mdl.Snapshot(),
		Households: len(mdl.Households),
		Sheltered:  sheltered,
		Evacuating: evacuating,
		Shelters:   len(mdl.ShelterSet),
		Rivers:     len(mdl.Rivers),
		Sectors:    len(mdl.Sectors),
	}
}

// Write stores summary_<runID>.json and summary_<runID>.md under dir.
func Write(dir string, s Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(dir, fmt.Sprintf("summary_%s.json", s.RunID))
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		return fmt.Errorf("write summary json: %w", err)
	}

	mdPath := filepath.Join(dir, fmt.Sprintf("summary_%s.md", s.RunID))
	if err := os.WriteFile(mdPath, []byte(markdown(s)), 0o644); err != nil {
		return fmt.Errorf("write summary markdown: %w", err)
	}
	return nil
}

func markdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Flood Simulation Run %s\n\n", s.RunID)
	fmt.Fprintf(&b, "%s steps simulated across %d rivers, %d households, %d shelters, and %d economic sectors.\n\n",
		humanize.Comma(int64(s.Steps)), s.Rivers, s.Households, s.Shelters, s.Sectors)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Average flood level | %.2f m |\n", s.Final.AverageFloodLevel)
	fmt.Fprintf(&b, "| Total uninsured damage | %s |\n", humanize.CommafWithDigits(s.Final.TotalDamage, 0))
	fmt.Fprintf(&b, "| Evacuation rate | %.1f%% |\n", s.Final.EvacuationRate*100)
	fmt.Fprintf(&b, "| Shelter occupancy | %.1f%% |\n", s.Final.ShelterOccupancyRate*100)
	fmt.Fprintf(&b, "| Households sheltered | %d |\n", s.Sheltered)
	fmt.Fprintf(&b, "| Households still evacuating | %d |\n", s.Evacuating)
	return b.String()
}
