// Package version exposes the git metadata embedded at build time.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > commit.txt"
//go:generate sh -c "printf %s $(git rev-parse --abbrev-ref HEAD) > branch.txt"
//go:generate sh -c "printf %s $(git describe --tags --abbrev=0 2>/dev/null || echo none) > tag.txt"
//go:generate sh -c "git diff-index --quiet HEAD -- && echo clean > dirty.txt || echo dirty > dirty.txt"

//go:embed commit.txt
var commit string

//go:embed branch.txt
var branch string

//go:embed tag.txt
var tag string

//go:embed dirty.txt
var dirty string

const unknown = "unknown"

// GitInfo is the build metadata of the binary.
type GitInfo struct {
	Commit string `json:"commit"`
	Branch string `json:"branch"`
	Tag    string `json:"tag"`
	Dirty  bool   `json:"dirty"`
}

var info = newGitInfo(commit, branch, tag, dirty, readBuildSettings())

// newGitInfo combines the embedded files with the vcs settings stamped by the go tool.
// The go tool settings only fill in what go generate did not record.
func newGitInfo(commit, branch, tag, dirty string, settings map[string]string) GitInfo {
	gi := GitInfo{
		Commit: strings.TrimSpace(commit),
		Branch: strings.TrimSpace(branch),
		Tag:    strings.TrimSpace(tag),
		Dirty:  strings.TrimSpace(dirty) == "dirty",
	}
	if gi.Commit == "" || gi.Commit == unknown {
		if revision, ok := settings["vcs.revision"]; ok {
			gi.Commit = revision
			gi.Dirty = settings["vcs.modified"] == "true"
		} else {
			gi.Commit = unknown
		}
	}
	if gi.Branch == "" {
		gi.Branch = unknown
	}
	if gi.Tag == "" {
		gi.Tag = "none"
	}
	return gi
}

func readBuildSettings() map[string]string {
	settings := make(map[string]string)
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

// GetGitInfo returns a copy of the git metadata.
func GetGitInfo() GitInfo {
	return info
}
