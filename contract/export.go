package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/warp/safe-harbor-engine/generic"
)

// Exporter persists a finished document. No format contract beyond plain
// text.
type Exporter interface {
	Export(ctx context.Context, filename, text string) error
}

// Filename is the download name for a contract generated at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("safe-harbor-contract-%d.txt", now.UnixMilli())
}

// DirExporter writes documents into a directory, creating it on first use.
type DirExporter struct {
	Dir string
}

func NewDirExporter(dir string) *DirExporter {
	return &DirExporter{Dir: dir}
}

// Export writes text to Dir/filename. Path components in filename are
// dropped so a caller can't write outside Dir.
func (e *DirExporter) Export(ctx context.Context, filename, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", generic.ErrExportFailed, e.Dir, err)
	}
	path := filepath.Join(e.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", generic.ErrExportFailed, path, err)
	}
	return nil
}

var _ Exporter = (*DirExporter)(nil)
