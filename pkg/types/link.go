package types

import "time"

// Link type constants.
const (
	LinkTypeCategorizes = "categorizes" // category → content item membership
)

var validLinkTypes = map[string]bool{
	LinkTypeCategorizes: true,
}

// ValidLinkType reports whether lt is a recognized link type.
func ValidLinkType(lt string) bool {
	return validLinkTypes[lt]
}

// Link represents a directed edge in the entity graph.
type Link struct {
	// LinkID is a UUID v7, generated on creation.
	LinkID string `json:"link_id"`

	// LinkType is the relationship type.
	LinkType string `json:"link_type"`

	// FromID is the source entity ID.
	FromID string `json:"from_id"`

	// ToID is the target entity ID.
	ToID string `json:"to_id"`

	// CreatedAt is the timestamp of creation.
	CreatedAt time.Time `json:"created_at"`
}
