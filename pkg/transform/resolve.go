package transform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/recast-io/recast/pkg/recerrors"
)

// Resolve locates a transform specification and returns its text. A bare
// name (no path separator, no extension) resolves to <dir>/<name>.yaml;
// anything else is treated as a literal path. A missing spec either way
// is a transform_not_found error, fatal at startup.
func Resolve(nameOrPath, dir string) ([]byte, error) {
	path := nameOrPath
	if !strings.ContainsAny(nameOrPath, `/\`) && filepath.Ext(nameOrPath) == "" {
		path = filepath.Join(dir, nameOrPath+".yaml")
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return nil, recerrors.Wrap(err, recerrors.ErrorTypeTransformNotFound,
			"transform specification not found").
			WithDetail("transform", nameOrPath).
			WithDetail("path", path)
	}
	return data, nil
}
