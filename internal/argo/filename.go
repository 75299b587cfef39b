package argo

import (
	"path"
	"strings"
)

// ParseProfileFilename derives the platform id and cycle number from an
// archive-relative profile path such as
// "aoml/13857/profiles/R13857_001.nc". The base name is
// <mode><platform>_<cycle>[D].nc where mode is R (realtime) or D (delayed)
// with optional B/S/M prefixes for bio and synthetic files. Returns empty
// strings when the name does not follow the convention.
func ParseProfileFilename(file string) (platform, cycle string) {
	base := path.Base(file)
	base = strings.TrimSuffix(base, ".nc")

	under := strings.IndexByte(base, '_')
	if under <= 0 || under == len(base)-1 {
		return "", ""
	}

	platform = strings.TrimLeft(base[:under], "BSMRD")
	cycle = strings.TrimSuffix(base[under+1:], "D")
	if platform == "" || cycle == "" {
		return "", ""
	}
	return platform, cycle
}
