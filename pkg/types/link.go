package types

import (
	"fmt"
)

// LinkKind says why a link was planned.
type LinkKind string

const (
	// LinkDir is a whole-directory link from the dirlinks list.
	LinkDir LinkKind = "dir"
	// LinkFile is a single mirrored file from the source tree.
	LinkFile LinkKind = "file"
	// LinkExtra is an explicitly configured source/target pair.
	LinkExtra LinkKind = "extra"
)

// Link is one planned symlink: Target will point at Source.
type Link struct {
	Kind   LinkKind `json:"kind"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	// Rel is the path relative to the source root, empty for extra links
	// whose source lives outside it.
	Rel string `json:"rel,omitempty"`
}

func (l Link) String() string {
	return fmt.Sprintf("%s -> %s", l.Target, l.Source)
}

// ExtraLink is a configured symlink that does not follow the mirrored
// tree convention.
type ExtraLink struct {
	Source string `koanf:"source" toml:"source" json:"source"`
	Target string `koanf:"target" toml:"target" json:"target"`
}

// Existing describes what was found at a destination before linking.
type Existing string

const (
	ExistingNone    Existing = "none"
	ExistingSymlink Existing = "symlink"
	ExistingFile    Existing = "file"
	ExistingDir     Existing = "dir"
)

// Action is the record of one applied (or, in dry-run, planned) link.
type Action struct {
	Link     Link     `json:"link"`
	Replaced Existing `json:"replaced"`
	// PreviousTarget is the old symlink destination when Replaced is
	// ExistingSymlink.
	PreviousTarget string `json:"previous_target,omitempty"`
	DryRun         bool   `json:"dry_run,omitempty"`
}

// State classifies a destination against its planned link.
type State string

const (
	StateLinked      State = "linked"
	StateMissing     State = "missing"
	StateWrongTarget State = "wrong-target"
	StateConflict    State = "conflict"
)

// LinkStatus pairs a planned link with the state of its destination.
type LinkStatus struct {
	Link    Link   `json:"link"`
	State   State  `json:"state"`
	Current string `json:"current,omitempty"`
}
