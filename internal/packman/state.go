// Package packman owns the on-device lifecycle of language packs:
// download, integrity verification, atomic install, uninstall, and the
// installed-pack registry the lookup engine reads through.
package packman

import (
	"errors"
	"fmt"
)

// State is a pack's position in the acquisition lifecycle.
type State string

const (
	StateAbsent      State = "absent"
	StateDownloading State = "downloading"
	StateDownloaded  State = "downloaded"
	StateVerified    State = "verified"
	StateInstalled   State = "installed"
	StateFailed      State = "failed"
)

// Status is the observable state of one pack.
type Status struct {
	PackID string
	State  State
	// Progress is the download fraction in [0,1] while downloading.
	Progress float64
	// Reason is retained when State is StateFailed.
	Reason string
}

// IntegrityError indicates the downloaded artifact does not match the
// digest the registry promised. The local artifact is deleted when it
// occurs and the pack transitions to failed; a retry downloads from
// scratch.
type IntegrityError struct {
	PackID string
	Want   string
	Got    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("pack %s failed integrity check: want digest %s, got %s", e.PackID, e.Want, e.Got)
}

// IsIntegrityError reports whether err is an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// ErrUnknownPack is returned for pack ids absent from the registry.
var ErrUnknownPack = errors.New("pack id not present in registry")
