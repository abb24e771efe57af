package serial

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Result summarizes an import.
type Result struct {
	// Contents counts the records that carried content.
	Contents int
	// Nodes counts the nodes created; existing nodes are reused.
	Nodes int
	// Ops counts the pending operations run after the tree was built.
	Ops int
}

// Importer reads a document into the subtree below a base node.
type Importer struct {
	cupboard    types.Cupboard
	serializers Serializers
	logger      *zap.Logger
}

// NewImporter returns an importer writing to cupboard.
func NewImporter(cupboard types.Cupboard, serializers Serializers, opts ...Option) *Importer {
	o := buildOptions(opts)
	return &Importer{cupboard: cupboard, serializers: serializers, logger: o.logger}
}

// importRun is the state of one Import call.
type importRun struct {
	ctx     DeserializeContext
	pending []PendingOp
	created []*types.Node
	result  Result
}

// Import creates the nodes and contents of the document read from r below
// base, in document order, and then runs the pending operations in the
// order they were collected. A node that already exists at a record's path
// is reused and its content updated.
//
// On failure the nodes created by this call are removed again. Content
// updated in existing nodes keeps its new field values.
func (im *Importer) Import(r io.Reader, base *types.Node) (Result, error) {
	var doc Document
	if err := decodeDocument(r, &doc); err != nil {
		return Result{}, err
	}

	run := &importRun{ctx: DeserializeContext{Base: base, Logger: im.logger}}
	if err := im.build(run, base, doc.Contents); err != nil {
		im.rollback(run)
		return Result{}, err
	}
	for _, op := range run.pending {
		if err := op.Run(im.cupboard); err != nil {
			im.rollback(run)
			return Result{}, err
		}
		run.result.Ops++
	}

	im.logger.Info("imported subtree",
		zap.String("base", displayPath(base.Path)),
		zap.Int("contents", run.result.Contents),
		zap.Int("nodes", run.result.Nodes),
		zap.Int("ops", run.result.Ops))
	return run.result, nil
}

func (im *Importer) build(run *importRun, parent *types.Node, records []*Record) error {
	for _, rec := range records {
		node, err := im.place(run, parent, rec)
		if err != nil {
			return err
		}
		if err := im.build(run, node, rec.Children); err != nil {
			return err
		}
	}
	return nil
}

// place materializes one record below parent and returns its node.
func (im *Importer) place(run *importRun, parent *types.Node, rec *Record) (*types.Node, error) {
	if rec.Slug == "" {
		return nil, fmt.Errorf("record below %q without slug: %w", displayPath(parent.Path), ErrMalformedRecord)
	}

	path := tree.Join(parent.Path, rec.Slug)
	node, err := tree.Lookup(im.cupboard, path)
	switch {
	case errors.Is(err, types.ErrNotFound):
		node, err = tree.AddChild(im.cupboard, parent, rec.Slug)
		if err != nil {
			return nil, err
		}
		run.created = append(run.created, node)
		run.result.Nodes++
	case err != nil:
		return nil, err
	}

	if rec.Type == "" {
		return node, nil
	}

	ser, err := im.serializers.SerializerFor(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", path, err)
	}

	c := &types.Content{ContentType: rec.Type}
	if node.ContentID != "" {
		c, err = node.Content(im.cupboard)
		if err != nil {
			return nil, err
		}
		if c.ContentType != rec.Type {
			return nil, fmt.Errorf("record %q of type %s replaces %s: %w",
				path, rec.Type, c.ContentType, types.ErrInvalidType)
		}
	}

	ops, err := ser.Deserialize(run.ctx, rec, c)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", path, err)
	}
	if err := tree.Attach(im.cupboard, node, c); err != nil {
		return nil, fmt.Errorf("record %q: %w", path, err)
	}
	for i := range ops {
		if ops[i].OwnerID == "" {
			ops[i].OwnerID = c.ContentID
		}
	}
	run.pending = append(run.pending, ops...)
	run.result.Contents++
	return node, nil
}

func decodeDocument(r io.Reader, doc *Document) error {
	if err := xml.NewDecoder(r).Decode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return nil
}

// rollback removes the nodes created by run. Deleting a node removes its
// subtree, so only the topmost created nodes matter; removing a node that
// is already gone is not an error.
func (im *Importer) rollback(run *importRun) {
	nodes, err := im.cupboard.GetTable(types.TableNodes)
	if err != nil {
		return
	}
	for _, n := range run.created {
		if err := nodes.Delete(n.NodeID); err != nil && !errors.Is(err, types.ErrNotFound) {
			im.logger.Warn("import rollback failed",
				zap.String("path", n.Path),
				zap.Error(err))
		}
	}
}
