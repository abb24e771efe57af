package serial

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Serializer converts content of one type to and from records.
type Serializer interface {
	// Serialize returns the record for c. The exporter fills in the slug
	// and children.
	Serialize(ctx SerializeContext, c *types.Content) (*Record, error)

	// Deserialize copies rec into c and returns the relation writes that
	// must wait until the whole import tree exists. c is not stored yet;
	// the importer sets OwnerID on the returned operations once it is.
	Deserialize(ctx DeserializeContext, rec *Record, c *types.Content) ([]PendingOp, error)
}

// Serializers looks up the serializer for a content type.
type Serializers interface {
	SerializerFor(typeName string) (Serializer, error)
}

// SerializeContext carries the export state serializers need.
type SerializeContext struct {
	Cupboard types.Cupboard
	// Base is the node the export is relative to.
	Base   *types.Node
	Logger *zap.Logger
}

// Refs returns the base relative path of each content item. Items that are
// not placed in the tree cannot be addressed and are skipped. Items outside
// the exported subtree are skipped too: any path written for them would
// resolve below the import base.
func (ctx SerializeContext) Refs(items []*types.Content) ([]string, error) {
	logger := ctx.logger()
	refs := make([]string, 0, len(items))
	for _, item := range items {
		node, err := item.Node(ctx.Cupboard)
		if errors.Is(err, types.ErrNoNode) {
			logger.Warn("skipping reference to content outside the tree",
				zap.String("content_id", item.ContentID),
				zap.String("title", item.Title))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("locating %s: %w", item.ContentID, err)
		}
		ref, inside := tree.Relative(ctx.Base, node)
		if !inside {
			logger.Warn("skipping reference outside the exported subtree",
				zap.String("path", ref),
				zap.String("base", displayPath(ctx.Base.Path)))
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (ctx SerializeContext) logger() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

// DeserializeContext carries the import state serializers need.
type DeserializeContext struct {
	// Base is the node references are resolved against.
	Base   *types.Node
	Logger *zap.Logger
}

// ApplyFunc writes one relation for the stored owner and the resolved
// targets.
type ApplyFunc func(cupboard types.Cupboard, ownerID string, targets []*types.Content) error

// PendingOp is a relation write deferred until the import tree exists, so
// that references to nodes later in the document resolve.
type PendingOp struct {
	// Relation names the relation written, e.g. "items".
	Relation string
	// OwnerID is the content ID of the instance that owns the relation.
	OwnerID string
	// Refs are base relative references to the targets.
	Refs []string
	// Base is the node Refs are resolved against.
	Base  *types.Node
	Apply ApplyFunc
}

// Run resolves the references and applies the relation write. A reference
// to a missing node fails with types.ErrNotFound.
func (op PendingOp) Run(cupboard types.Cupboard) error {
	if op.OwnerID == "" {
		return fmt.Errorf("%s: %w", op.Relation, types.ErrInvalidID)
	}
	targets := make([]*types.Content, 0, len(op.Refs))
	for _, ref := range op.Refs {
		c, err := tree.ContentAt(cupboard, op.Base, ref)
		if err != nil {
			return fmt.Errorf("resolving %s reference %q: %w", op.Relation, ref, err)
		}
		targets = append(targets, c)
	}
	return op.Apply(cupboard, op.OwnerID, targets)
}

// BaseSerializer handles the fields every content type carries.
type BaseSerializer struct{}

// Field names written by BaseSerializer.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldState       = "state"
)

// Serialize writes title, description, and state.
func (BaseSerializer) Serialize(_ SerializeContext, c *types.Content) (*Record, error) {
	rec := &Record{Type: c.ContentType}
	rec.SetField(FieldTitle, c.Title)
	rec.SetField(FieldDescription, c.Description)
	rec.SetField(FieldState, c.State)
	return rec, nil
}

// Deserialize reads the fields present in rec. Missing fields leave c
// unchanged.
func (BaseSerializer) Deserialize(_ DeserializeContext, rec *Record, c *types.Content) ([]PendingOp, error) {
	if v, ok := rec.Field(FieldTitle); ok {
		c.Title = v
	}
	if v, ok := rec.Field(FieldDescription); ok {
		c.Description = v
	}
	if v, ok := rec.Field(FieldState); ok && v != "" {
		c.State = v
	}
	return nil, nil
}

// Compose returns a serializer that runs primary and then each extra. The
// extras contribute blocks and pending operations; their fields are merged
// into the primary record.
func Compose(primary Serializer, extras ...Serializer) Serializer {
	return composite{primary: primary, extras: extras}
}

type composite struct {
	primary Serializer
	extras  []Serializer
}

func (s composite) Serialize(ctx SerializeContext, c *types.Content) (*Record, error) {
	rec, err := s.primary.Serialize(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, extra := range s.extras {
		part, err := extra.Serialize(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, f := range part.Fields {
			rec.SetField(f.Name, f.Value)
		}
		rec.Extra = append(rec.Extra, part.Extra...)
	}
	return rec, nil
}

func (s composite) Deserialize(ctx DeserializeContext, rec *Record, c *types.Content) ([]PendingOp, error) {
	ops, err := s.primary.Deserialize(ctx, rec, c)
	if err != nil {
		return nil, err
	}
	for _, extra := range s.extras {
		more, err := extra.Deserialize(ctx, rec, c)
		if err != nil {
			return nil, err
		}
		ops = append(ops, more...)
	}
	return ops, nil
}
