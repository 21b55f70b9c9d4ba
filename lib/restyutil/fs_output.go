package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput stores each dumped exchange in `<dir>/<message id>`.
type FilesystemOutput struct {
	dir string
}

// NewFilesystemOutput empties `dir` so that dumps of the previous run do not
// mix with the current one.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	if err := os.RemoveAll(dir); err != nil {
		return FilesystemOutput{}, fmt.Errorf("clear dump directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FilesystemOutput{}, fmt.Errorf("create dump directory: %w", err)
	}
	return FilesystemOutput{dir: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.dir, id)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		slog.Warn("write http dump", "path", path, "err", err)
	}
}
