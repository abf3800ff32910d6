package io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/transform"
)

const (
	FlattenedFile  = "flattened.json"
	AggregatedFile = "aggregated.json"
)

// maxWriters bounds the number of graph files written at once.
const maxWriters = 4

// LayerFile returns the file name of the graph of layer k.
func LayerFile(k int) string { return fmt.Sprintf("layer_%d.json", k) }

// WriteCollection writes every graph of c as a JSON file of dir, creating
// dir if needed.
func WriteCollection(ctx context.Context, c *mln.Collection, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriter, err, "Export failure", "The directory %s cannot be created.", dir)
	}
	files := map[string]*graph.Graph{}
	if c.Flattened != nil {
		files[FlattenedFile] = c.Flattened
	}
	if c.Aggregated != nil {
		files[AggregatedFile] = c.Aggregated
	}
	for i, k := range c.LayerIDs() {
		files[LayerFile(k)] = c.Layers[i]
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWriters)
	for name, gr := range files {
		g.Go(func() error {
			if err := errors.CheckContext(ctx); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if err := graph.WriteGraphFile(gr, path); err != nil {
				return errors.Wrap(errors.ErrCodeWriter, err, "Export failure", "The graph %q cannot be written to %s.", gr.Name(), path)
			}
			return nil
		})
	}
	return g.Wait()
}

// ReadCollection reads the flattened graph written by [WriteCollection]
// in dir and derives its collection.
func ReadCollection(dir string) (*mln.Collection, error) {
	return ImportGraphFile(filepath.Join(dir, FlattenedFile))
}

// ImportGraphFile reads a graph JSON file and imports it as a flattened
// network.
func ImportGraphFile(path string) (*mln.Collection, error) {
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Import failure", "The graph %s cannot be read.", path)
	}
	return transform.ImportFlattened(g)
}
