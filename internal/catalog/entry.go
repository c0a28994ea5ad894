package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Entry is one discovered installed game. The JSON shape matches both
// the scanner wire records and the persisted catalog file.
type Entry struct {
	// Identity is the storefront-scoped application id. Empty for games
	// found as bare executables.
	Identity string `json:"appid,omitempty"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
	// Executable is the filesystem launch path, when the scanner found one.
	Executable string `json:"executable,omitempty"`
}

// Key returns a stable identifier for library state and artwork caching.
// Entries without a storefront identity fall back to the lowercased name.
func (e Entry) Key() string {
	id := strings.TrimSpace(e.Identity)
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(e.Name))
	}
	return e.Platform + "/" + id
}

// ErrNoLaunchTarget reports an entry with neither a storefront protocol
// nor an executable path.
var ErrNoLaunchTarget = errors.New("entry has no launch target")

// storeProtocols maps canonical platform tags to launcher URL templates.
// Platforms absent here launch through the executable path.
var storeProtocols = map[string]string{
	PlatformSteam: "steam://rungameid/%s",
	PlatformEpic:  "com.epicgames.launcher://apps/%s?action=launch&silent=true",
	PlatformGOG:   "goggalaxy://openGameView/%s",
	PlatformUbi:   "uplay://launch/%s/0",
	PlatformEA:    "origin2://game/launch?offerIds=%s",
	PlatformBnet:  "battlenet://%s",
}

// LaunchTarget resolves the entry to either a storefront protocol URL or
// an executable path. Resolution happens at launch time, never at
// ingestion time, so entries merged before a launcher was installed
// still resolve correctly later.
func (e Entry) LaunchTarget() (string, error) {
	id := strings.TrimSpace(e.Identity)
	if id != "" {
		if template, ok := storeProtocols[e.Platform]; ok {
			return fmt.Sprintf(template, id), nil
		}
	}
	if exe := strings.TrimSpace(e.Executable); exe != "" {
		return exe, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrNoLaunchTarget, e.Name, e.Platform)
}
