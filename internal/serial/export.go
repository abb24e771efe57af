package serial

import (
	"encoding/xml"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/categories/pkg/types"
)

// Option configures an Exporter or Importer.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for export and import progress.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Exporter writes the subtree below a base node as a document.
type Exporter struct {
	cupboard    types.Cupboard
	serializers Serializers
	logger      *zap.Logger
}

// NewExporter returns an exporter reading from cupboard.
func NewExporter(cupboard types.Cupboard, serializers Serializers, opts ...Option) *Exporter {
	o := buildOptions(opts)
	return &Exporter{cupboard: cupboard, serializers: serializers, logger: o.logger}
}

// Export writes every node below base to w. The base node itself is not
// written; references to it are emitted as "/".
func (ex *Exporter) Export(w io.Writer, base *types.Node) error {
	doc, err := ex.Document(base)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Document builds the document for the subtree below base.
func (ex *Exporter) Document(base *types.Node) (*Document, error) {
	ctx := SerializeContext{Cupboard: ex.cupboard, Base: base, Logger: ex.logger}
	children, err := base.Children(ex.cupboard)
	if err != nil {
		return nil, err
	}
	doc := &Document{Version: FormatVersion, Base: displayPath(base.Path)}
	count := 0
	for _, child := range children {
		rec, err := ex.record(ctx, child, &count)
		if err != nil {
			return nil, err
		}
		doc.Contents = append(doc.Contents, rec)
	}
	ex.logger.Info("exported subtree",
		zap.String("base", doc.Base),
		zap.Int("records", count))
	return doc, nil
}

func (ex *Exporter) record(ctx SerializeContext, node *types.Node, count *int) (*Record, error) {
	rec := &Record{}
	if node.ContentID != "" {
		c, err := node.Content(ex.cupboard)
		if err != nil {
			return nil, fmt.Errorf("loading content at %q: %w", node.Path, err)
		}
		ser, err := ex.serializers.SerializerFor(c.ContentType)
		if err != nil {
			return nil, fmt.Errorf("serializing %q: %w", node.Path, err)
		}
		rec, err = ser.Serialize(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("serializing %q: %w", node.Path, err)
		}
		rec.Type = c.ContentType
	}
	rec.Slug = node.Slug
	*count++

	children, err := node.Children(ex.cupboard)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childRec, err := ex.record(ctx, child, count)
		if err != nil {
			return nil, err
		}
		rec.Children = append(rec.Children, childRec)
	}
	return rec, nil
}

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
