package scanner

import (
	"os"

	"gamedex/internal/config"
)

// Invocation is one concrete way to launch the scanner.
type Invocation struct {
	Label  string
	Binary string
	Args   []string
}

// Candidate resolves the environment to an optional invocation. The
// supervisor evaluates candidates in order with early exit, so the
// list stays test-injectable and free of hardcoded OS paths.
type Candidate func() (Invocation, bool)

// BinaryCandidate probes an ordered list of prebuilt executable
// locations; the first existing path wins. It resolves to nothing when
// no path exists.
func BinaryCandidate(paths []string) Candidate {
	return func() (Invocation, bool) {
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			return Invocation{Label: "binary:" + path, Binary: path}, true
		}
		return Invocation{}, false
	}
}

// ScriptCandidate runs the fallback scanner script under the given
// runtime. It resolves only when the script file exists; whether the
// runtime itself is present surfaces later as a spawn failure, which
// the supervisor treats like any other candidate failure.
func ScriptCandidate(runtime, script string) Candidate {
	return func() (Invocation, bool) {
		if runtime == "" || script == "" {
			return Invocation{}, false
		}
		info, err := os.Stat(script)
		if err != nil || info.IsDir() {
			return Invocation{}, false
		}
		return Invocation{Label: "script:" + runtime, Binary: runtime, Args: []string{script}}, true
	}
}

// CandidatesFromConfig builds the default fallback chain: the prebuilt
// binary first, then the script under each runtime in order.
func CandidatesFromConfig(cfg config.Scanner) []Candidate {
	candidates := make([]Candidate, 0, 1+len(cfg.Runtimes))
	if len(cfg.BinaryPaths) > 0 {
		candidates = append(candidates, BinaryCandidate(cfg.BinaryPaths))
	}
	for _, runtime := range cfg.Runtimes {
		candidates = append(candidates, ScriptCandidate(runtime, cfg.ScriptPath))
	}
	return candidates
}
