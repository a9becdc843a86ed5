package entities

import (
	"fmt"
	"strings"
)

// ProviderType identifies an SCM backend. It is the key of the provider registry
// and the `<type>` segment of an `scm:<type><delimiter>...` connection URL.
type ProviderType string

const (
	ProviderCVS       ProviderType = "cvs"
	ProviderSVN       ProviderType = "svn"
	ProviderGit       ProviderType = "git"
	ProviderGoGit     ProviderType = "gogit"
	ProviderHg        ProviderType = "hg"
	ProviderBazaar    ProviderType = "bazaar"
	ProviderPerforce  ProviderType = "perforce"
	ProviderClearCase ProviderType = "clearcase"
	ProviderStarteam  ProviderType = "starteam"
	ProviderAccuRev   ProviderType = "accurev"
	ProviderVSS       ProviderType = "vss"
	ProviderJazz      ProviderType = "jazz"
	ProviderIntegrity ProviderType = "integrity"
	ProviderSynergy   ProviderType = "synergy"
	ProviderTFS       ProviderType = "tfs"
	ProviderLocal     ProviderType = "local"
)

// AllProviderTypes returns every known backend identifier in a stable order.
func AllProviderTypes() []ProviderType {
	return []ProviderType{
		ProviderCVS, ProviderSVN, ProviderGit, ProviderGoGit, ProviderHg, ProviderBazaar,
		ProviderPerforce, ProviderClearCase, ProviderStarteam, ProviderAccuRev, ProviderVSS,
		ProviderJazz, ProviderIntegrity, ProviderSynergy, ProviderTFS, ProviderLocal,
	}
}

// String returns the string representation of ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// IsValid returns true if the ProviderType is a known backend.
func (p ProviderType) IsValid() bool {
	for _, known := range AllProviderTypes() {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProviderType converts a user supplied name (case-insensitive) into a ProviderType.
func ParseProviderType(name string) (ProviderType, error) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}
