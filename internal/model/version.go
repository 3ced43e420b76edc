// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is the closed set of namespace version forms. Concrete types are
// Unversioned, SemanticVersion, and ReleaseVersion.
type Version interface {
	String() string
	version()
}

// Unversioned marks a namespace declared without an @version clause.
type Unversioned struct{}

func (Unversioned) String() string { return "" }
func (Unversioned) version()       {}

// SemanticVersion is a full major.minor.patch version triple.
type SemanticVersion struct {
	Major uint64
	Minor uint64
	Patch uint64
}

func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v SemanticVersion) version() {}

// Semver converts the version into the semver library representation for
// callers that need comparison or constraint matching.
func (v SemanticVersion) Semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, "", "")
}

// ReleaseVersion is a version triple with a pre-release tag, such as
// 1.3.5-pre.
type ReleaseVersion struct {
	SemanticVersion
	Release string
}

func (v ReleaseVersion) String() string {
	return fmt.Sprintf("%s-%s", v.SemanticVersion.String(), v.Release)
}

func (v ReleaseVersion) version() {}

func (v ReleaseVersion) Semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, v.Release, "")
}

// Compare orders two versions by semver precedence, so 1.10.0 sorts after
// 1.2.0 and a release tag sorts before its base version. An Unversioned
// value sorts before any explicit version.
func Compare(a Version, b Version) int {
	av, aok := a.(interface{ Semver() *semver.Version })
	bv, bok := b.(interface{ Semver() *semver.Version })
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return av.Semver().Compare(bv.Semver())
}

// ParseVersion parses the text form of a namespace version. An empty string
// parses as Unversioned. The numeric part must be a full major.minor.patch
// triple and the optional release tag is limited to letters, digits, and
// hyphens.
func ParseVersion(text string) (Version, error) {
	if text == "" {
		return Unversioned{}, nil
	}
	numbers := text
	release := ""
	hasRelease := false
	if idx := strings.IndexByte(text, '-'); idx >= 0 {
		numbers = text[:idx]
		release = text[idx+1:]
		hasRelease = true
	}
	parts := strings.Split(numbers, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("version %q must have major, minor, and patch components", text)
	}
	triple := [3]uint64{}
	for x, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("version %q has a non-numeric component %q", text, part)
		}
		triple[x] = n
	}
	sv := SemanticVersion{Major: triple[0], Minor: triple[1], Patch: triple[2]}
	if !hasRelease {
		return sv, nil
	}
	if release == "" {
		return nil, fmt.Errorf("version %q has an empty release tag", text)
	}
	for _, r := range release {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return nil, fmt.Errorf("version %q has an invalid release tag character %q", text, r)
		}
	}
	return ReleaseVersion{SemanticVersion: sv, Release: release}, nil
}
