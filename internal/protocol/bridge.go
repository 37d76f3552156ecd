package protocol

import (
	"strings"

	"golang.org/x/mod/semver"
)

// MinBridgeVersion is the oldest bridge script this server speaks to. A
// stale bridge (cached from a previous deploy) gets a reload command.
const MinBridgeVersion = "v1.0.0"

func BridgeVersionOK(v string) bool {
	nv, ok := normalizeSemver(v)
	if !ok {
		return false
	}
	return semver.Compare(nv, MinBridgeVersion) >= 0
}

func normalizeSemver(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}
