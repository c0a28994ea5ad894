package scanner

import (
	"encoding/json"
	"fmt"
	"strings"

	"gamedex/internal/catalog"
)

// progressMarker prefixes protocol lines on the scanner's stdout. The
// JSON payload follows immediately, without a separating space.
const progressMarker = "PROGRESS:"

// Sentinel phase labels the scanner emits at the edges of a run.
const (
	PhaseInitializing = "initializing"
	PhaseCompleted    = "completed"
)

// sentinelPhases maps the scanner's native labels to canonical phases.
var sentinelPhases = map[string]string{
	"Initialisation": PhaseInitializing,
	"Terminé":        PhaseCompleted,
}

// ProgressUnit is one parsed protocol line.
type ProgressUnit struct {
	Type     string `json:"type"`
	Platform string `json:"platform"`
	// Percentage is 0-100 but not guaranteed monotonic by the scanner.
	Percentage int `json:"percentage"`
	// GamesFound is the scanner's cumulative count. Advisory only; the
	// merger's own count is authoritative.
	GamesFound int             `json:"games_found"`
	Games      []catalog.Entry `json:"games"`
}

// Phase canonicalizes the unit's platform label.
func (u ProgressUnit) Phase() string {
	if phase, ok := sentinelPhases[u.Platform]; ok {
		return phase
	}
	return u.Platform
}

// parseProgressLine recognizes and decodes a protocol line. The second
// return value reports whether the line carried the marker at all; the
// error is non-nil only for a marked line with an undecodable payload.
func parseProgressLine(line string) (ProgressUnit, bool, error) {
	if !strings.HasPrefix(line, progressMarker) {
		return ProgressUnit{}, false, nil
	}
	payload := line[len(progressMarker):]

	var unit ProgressUnit
	if err := json.Unmarshal([]byte(payload), &unit); err != nil {
		return ProgressUnit{}, true, fmt.Errorf("decode progress payload: %w", err)
	}
	if unit.Percentage < 0 {
		unit.Percentage = 0
	}
	if unit.Percentage > 100 {
		unit.Percentage = 100
	}
	return unit, true, nil
}
