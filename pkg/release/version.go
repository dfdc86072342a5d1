// Package release implements the version bump, commit, tag, push sequence.
package release

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Bump keywords accepted in place of an explicit version
const (
	BumpPatch = "patch"
	BumpMinor = "minor"
	BumpMajor = "major"
)

// ResolveVersion turns the release argument into a concrete version. The
// argument is either an explicit semantic version or a bump keyword applied
// to the manifest's current version.
func ResolveVersion(current, arg string) (string, error) {
	switch arg {
	case BumpPatch, BumpMinor, BumpMajor:
		cur, err := semver.StrictNewVersion(current)
		if err != nil {
			return "", fmt.Errorf("current version %q is not semantic, cannot apply %q bump: %w", current, arg, err)
		}

		var next semver.Version
		switch arg {
		case BumpPatch:
			next = cur.IncPatch()
		case BumpMinor:
			next = cur.IncMinor()
		case BumpMajor:
			next = cur.IncMajor()
		}
		return next.String(), nil

	default:
		v, err := semver.StrictNewVersion(arg)
		if err != nil {
			return "", fmt.Errorf("invalid version %q (want X.Y.Z or patch/minor/major): %w", arg, err)
		}
		if current != "" {
			if cur, curErr := semver.StrictNewVersion(current); curErr == nil && !v.GreaterThan(cur) {
				return "", fmt.Errorf("version %s is not greater than current version %s", v, cur)
			}
		}
		return v.String(), nil
	}
}
