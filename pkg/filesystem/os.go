package filesystem

import (
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/spf13/afero"
)

// NewOS creates the filesystem dotlink runs against outside of tests
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}
