package schema

import (
	"embed"
	"io/fs"
	"os"
)

// bundled is the schema JSON bundle compiled into the binary. An operator
// can still point Config.Schema.OverridePath at a directory on disk to
// override it without a rebuild; see LoadDefault.
//
//go:embed data/*.json
var bundled embed.FS

// LoadDefault loads the schema bundle embedded in the binary.
func LoadDefault() (*Store, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadFromConfig loads the schema bundle from overridePath on disk when
// non-empty, falling back to the embedded bundle otherwise. This is how
// Config.Schema.OverridePath lets an operator swap in a corrected address
// table without a rebuild.
func LoadFromConfig(overridePath string) (*Store, error) {
	if overridePath == "" {
		return LoadDefault()
	}
	return Load(os.DirFS(overridePath))
}
