package driver

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"scarlet/internal/debuginfo"
	"scarlet/internal/diag"
	"scarlet/internal/ir"
)

// DecompileScript raises every body of a container.
func (d *Driver) DecompileScript(s *ScriptFile) (map[string]*ir.Block, *diag.Bag) {
	maxDiag := d.opts.MaxDiagnostics
	if maxDiag == 0 {
		maxDiag = 100
	}
	bag := diag.NewBag(maxDiag)
	out := make(map[string]*ir.Block, len(s.Subs))
	for _, name := range s.SubNames() {
		block, b := d.DecompileBody(name, s.Subs[name])
		out[name] = block
		bag.Merge(b)
	}
	bag.Sort()
	return out, bag
}

// RecompileScript round-trips a container through the structurer and the
// flattener. The debug records of every body come back with it.
func (d *Driver) RecompileScript(s *ScriptFile) (*ScriptFile, []*debuginfo.Func, *diag.Bag) {
	maxDiag := d.opts.MaxDiagnostics
	if maxDiag == 0 {
		maxDiag = 100
	}
	bag := diag.NewBag(maxDiag)
	out := &ScriptFile{
		Game:     s.Game,
		Language: s.Language,
		Subs:     make(map[string][]InstrRecord, len(s.Subs)),
	}
	var funcs []*debuginfo.Func
	for _, name := range s.SubNames() {
		block, dbag := d.DecompileBody(name, s.Subs[name])
		bag.Merge(dbag)
		records, fn, cbag := d.CompileBody(name, block)
		bag.Merge(cbag)
		out.Subs[name] = records
		if fn != nil {
			funcs = append(funcs, fn)
		}
	}
	bag.Sort()
	return out, funcs, bag
}

// FileResult is the outcome of one file in a batch run.
type FileResult struct {
	Path string
	Bag  *diag.Bag
}

// ForEachScript runs fn over many script files in parallel, collecting
// per-file diagnostics. The first hard error (I/O, malformed container)
// cancels the batch.
func ForEachScript(ctx context.Context, paths []string, fn func(ctx context.Context, path string, s *ScriptFile) (*diag.Bag, error)) ([]FileResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var mu sync.Mutex
	results := make([]FileResult, 0, len(paths))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			s, err := ReadScript(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			bag, err := fn(ctx, path, s)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			results = append(results, FileResult{Path: path, Bag: bag})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
