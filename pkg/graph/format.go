package graph

import "fmt"

// FormatDuration renders seconds for display: "N/A" when zero or negative,
// "45s" under a minute, otherwise "4m 5s".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "N/A"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatNodeDuration is FormatDuration for an optional duration.
func FormatNodeDuration(n *Node) string {
	return FormatDuration(n.Seconds())
}

// PlatformMeta is the display metadata for a CI/CD platform.
type PlatformMeta struct {
	Platform Platform `json:"platform"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
}

var platforms = map[Platform]PlatformMeta{
	PlatformJenkins: {PlatformJenkins, "Jenkins", "server", "#335061"},
	PlatformGitHub:  {PlatformGitHub, "GitHub Actions", "github", "#2088FF"},
	PlatformGitLab:  {PlatformGitLab, "GitLab CI/CD", "git-branch", "#FC6D26"},
	PlatformAzure:   {PlatformAzure, "Azure DevOps", "cloud", "#0078D7"},
	PlatformCircle:  {PlatformCircle, "CircleCI", "circle", "#343434"},
}

// Platforms lists the supported platforms in catalogue order.
var Platforms = []Platform{PlatformJenkins, PlatformGitHub, PlatformGitLab, PlatformAzure, PlatformCircle}

// PlatformInfo returns the display metadata for p.
func PlatformInfo(p Platform) (PlatformMeta, bool) {
	m, ok := platforms[p]
	return m, ok
}

// PlatformCatalogue returns metadata for every platform in catalogue order.
func PlatformCatalogue() []PlatformMeta {
	out := make([]PlatformMeta, 0, len(Platforms))
	for _, p := range Platforms {
		out = append(out, platforms[p])
	}
	return out
}

// StatusClass returns the CSS class used by the web page for s.
// Unrecognized statuses get the unknown class.
func StatusClass(s Status) string {
	if !s.Valid() {
		s = StatusUnknown
	}
	return "pipeline-status-" + string(s)
}

// StatusColor is the fill colour used for s in rendered graphs.
func StatusColor(s Status) string {
	switch s {
	case StatusSuccess:
		return "#2E7D32"
	case StatusWarning:
		return "#F9A825"
	case StatusError:
		return "#C62828"
	case StatusRunning:
		return "#1565C0"
	case StatusPending:
		return "#757575"
	default:
		return "#9E9E9E"
	}
}
