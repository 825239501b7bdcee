package collect

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/sim"
)

// StateLog writes one JSON line per step with every agent's current state,
// zstd-compressed. The resulting file replays the whole run for offline
// analysis without the database.
type StateLog struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewStateLog creates the log file at dir/agent_states_<runID>.jsonl.zst.
func NewStateLog(dir, runID string) (*StateLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("agent_states_%s.jsonl.zst", runID))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &StateLog{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

type stateLine struct {
	Step   uint64                `json:"step"`
	Agents map[string]agentState `json:"agents"`
}

type agentState struct {
	Kind     string       `json:"kind"`
	Position grid.Point   `json:"position"`
	State    sim.Snapshot `json:"state"`
}

// WriteStep appends the state of every agent after the given step.
func (l *StateLog) WriteStep(step uint64, mdl *model.Model) error {
	line := stateLine{Step: step, Agents: make(map[string]agentState)}
	for _, r := range mdl.Rivers {
		line.Agents[r.ID] = agentState{Kind: "river", Position: r.Pos, State: r.History().Latest()}
	}
	for _, h := range mdl.Households {
		line.Agents[h.ID] = agentState{Kind: "household", Position: h.Pos, State: h.History().Latest()}
	}
	for _, s := range mdl.ShelterSet {
		line.Agents[s.ID] = agentState{Kind: "shelter", Position: s.Pos, State: s.History().Latest()}
	}
	for _, a := range mdl.Sectors {
		line.Agents[a.ID] = agentState{Kind: "economic", Position: a.Pos, State: a.History().Latest()}
	}

	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// Close flushes and closes the compressed stream.
func (l *StateLog) Close() error {
	if err := l.w.Flush(); err != nil {
		return err
	}
	if err := l.enc.Close(); err != nil {
		return err
	}
	return l.f.Close()
}
