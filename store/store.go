// Package store persists the top-level environment to disk: one file
// per identifier in a directory, no schema, no indices. A request only
// ever touches the subset of files its static analysis says it reads
// or writes.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/parser"
	"github.com/willmcpherson2/drd/printer"
)

// Store is a directory of flat files, one per bound identifier.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir, creating the directory if it does
// not already exist.
func New(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Store{}, fmt.Errorf("store: create directory %s: %w", dir, err)
	}
	return Store{Dir: dir}, nil
}

// Names lists the identifiers currently persisted in the store: every
// directory entry that is not a directory and whose name is a valid DRD
// identifier. Entries that aren't valid identifiers are silently
// ignored rather than rejected, since a store directory may collect
// incidental files (editor swap files, ".gitkeep", and the like).
func (s Store) Names() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("store: read directory %s: %w", s.Dir, err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !exp.IsIdent(entry.Name()) {
			continue
		}
		names[entry.Name()] = struct{}{}
	}
	return names, nil
}

// Load reads and parses every name in names concurrently, returning an
// environment mapping each name to its parsed value. A positive
// concurrency bounds the number of files read at once the way a sqldef
// schema fetch bounds its per-table queries (errgroup.Group with
// SetLimit); 0 reads every file at once, with no bound.
func (s Store) Load(ctx context.Context, names map[string]struct{}, concurrency int) (exp.Env, error) {
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}

	values, err := concurrentMap(ctx, keys, concurrency, func(name string) (exp.Exp, error) {
		return s.loadOne(name)
	})
	if err != nil {
		return nil, err
	}

	env := make(exp.Env, len(keys))
	for i, name := range keys {
		env[name] = values[i]
	}
	return env, nil
}

func (s Store) loadOne(name string) (exp.Exp, error) {
	path := filepath.Join(s.Dir, name)
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	e, err := parser.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", name, err)
	}
	return e, nil
}

// Save persists every (name, value) pair in env under writes, printing
// each value through the printer the same way the parser would accept
// it back.
func (s Store) Save(ctx context.Context, env exp.Env, writes map[string]struct{}) error {
	keys := make([]string, 0, len(writes))
	for name := range writes {
		if _, ok := env[name]; ok {
			keys = append(keys, name)
		}
	}

	_, err := concurrentMap(ctx, keys, 0, func(name string) (struct{}, error) {
		return struct{}{}, s.saveOne(name, env[name])
	})
	return err
}

func (s Store) saveOne(name string, value exp.Exp) error {
	path := filepath.Join(s.Dir, name)
	text := printer.Print(value)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}

// concurrentMap applies f to every input concurrently, bounded to
// concurrency goroutines (0 means unbounded), and returns outputs in
// the same order as inputs. It aborts on the first error.
func concurrentMap[Tin, Tout any](ctx context.Context, inputs []Tin, concurrency int, f func(Tin) (Tout, error)) ([]Tout, error) {
	outputs := make([]Tout, len(inputs))
	eg, _ := errgroup.WithContext(ctx)
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}

	for i := range inputs {
		i := i
		eg.Go(func() error {
			out, err := f(inputs[i])
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
