package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical platform tags emitted by the scanner.
const (
	PlatformSteam       = "steam"
	PlatformEpic        = "epic"
	PlatformRiot        = "riot"
	PlatformStarCitizen = "starcitizen"
	PlatformEA          = "ea"
	PlatformUbi         = "ubi"
	PlatformBnet        = "bnet"
	PlatformRockstar    = "rockstar"
	PlatformGOG         = "gog"
	PlatformMStore      = "mstore"
)

// platformAliases maps the labels various scanner generations and
// persisted catalogs have used to the canonical tag.
var platformAliases = map[string]string{
	"steam":                PlatformSteam,
	"epic":                 PlatformEpic,
	"epicgames":            PlatformEpic,
	"epic games store":     PlatformEpic,
	"riot":                 PlatformRiot,
	"riot games":           PlatformRiot,
	"starcitizen":          PlatformStarCitizen,
	"star citizen":         PlatformStarCitizen,
	"cloud imperium games": PlatformStarCitizen,
	"ea":                   PlatformEA,
	"origin":               PlatformEA,
	"electronic arts":      PlatformEA,
	"ubi":                  PlatformUbi,
	"uplay":                PlatformUbi,
	"ubisoft":              PlatformUbi,
	"ubisoft connect":      PlatformUbi,
	"bnet":                 PlatformBnet,
	"battlenet":            PlatformBnet,
	"battle.net":           PlatformBnet,
	"blizzard":             PlatformBnet,
	"rockstar":             PlatformRockstar,
	"rockstar games":       PlatformRockstar,
	"gog":                  PlatformGOG,
	"gog galaxy":           PlatformGOG,
	"mstore":               PlatformMStore,
	"msstore":              PlatformMStore,
	"microsoft store":      PlatformMStore,
	"xbox":                 PlatformMStore,
}

var platformDisplayNames = map[string]string{
	PlatformSteam:       "Steam",
	PlatformEpic:        "Epic Games Store",
	PlatformRiot:        "Riot Games",
	PlatformStarCitizen: "Cloud Imperium Games",
	PlatformEA:          "Electronic Arts",
	PlatformUbi:         "Ubisoft Connect",
	PlatformBnet:        "Battle.net",
	PlatformRockstar:    "Rockstar Games",
	PlatformGOG:         "GOG Galaxy",
	PlatformMStore:      "Microsoft Store",
}

var titleCaser = cases.Title(language.Und)

// NormalizePlatform maps known aliases to the canonical tag. Unknown
// values pass through unchanged so future scanner platforms survive a
// round trip without data loss.
func NormalizePlatform(platform string) string {
	trimmed := strings.TrimSpace(platform)
	if canonical, ok := platformAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// PlatformDisplayName renders a platform tag for presentation.
func PlatformDisplayName(platform string) string {
	if name, ok := platformDisplayNames[platform]; ok {
		return name
	}
	if platform == "" {
		return "Unknown"
	}
	return titleCaser.String(platform)
}
