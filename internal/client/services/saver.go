package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/filex"
)

// DirSaver writes exports into a directory, created on first use. Existing
// files are never overwritten.
type DirSaver struct {
	Dir string
}

var _ FileSaver = DirSaver{}

func (s DirSaver) Save(ctx context.Context, name string, r io.Reader) (models.ExportFile, error) {
	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return models.ExportFile{}, err
	}

	f, err := filex.CreateUnique(dir, name)
	if err != nil {
		return models.ExportFile{}, err
	}

	n, err := io.Copy(f, ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return models.ExportFile{}, fmt.Errorf("write %s: %w", f.Name(), err)
	}

	return models.ExportFile{Name: filepath.Base(f.Name()), Path: f.Name(), Bytes: n}, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
