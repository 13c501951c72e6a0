package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// VisibilityKind enumerates how widely a piece of content is shared.
type VisibilityKind string

const (
	// VisibilityPublic content is listed and viewable by anyone.
	VisibilityPublic VisibilityKind = "public"
	// VisibilityUnlisted content is viewable by anyone who has the link.
	VisibilityUnlisted VisibilityKind = "unlisted"
	// VisibilityPrivate content is viewable only by the owner and the
	// explicit allow list.
	VisibilityPrivate VisibilityKind = "private"
)

// Visibility controls who may view a paste or image. The owner always sees
// their own content regardless of kind.
type Visibility struct {
	Kind VisibilityKind `json:"kind"`
	// VisibleTo lists additional user ids allowed to view private content.
	VisibleTo []int64 `json:"visible_to,omitempty"`
}

// PublicVisibility is the default for new content.
func PublicVisibility() Visibility {
	return Visibility{Kind: VisibilityPublic}
}

// Valid reports whether the kind is one of the known values.
func (v Visibility) Valid() bool {
	switch v.Kind {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

// RequiresAuth reports whether viewing requires a resolved identity.
func (v Visibility) RequiresAuth() bool {
	return v.Kind == VisibilityPrivate
}

// VisibleToUser reports whether viewerID may view content owned by ownerID.
// viewerID 0 means anonymous.
func (v Visibility) VisibleToUser(ownerID, viewerID int64) bool {
	if viewerID != 0 && viewerID == ownerID {
		return true
	}
	switch v.Kind {
	case VisibilityPublic, VisibilityUnlisted:
		return true
	case VisibilityPrivate:
		if viewerID == 0 {
			return false
		}
		return slices.Contains(v.VisibleTo, viewerID)
	}
	return false
}

// Value implements driver.Valuer, storing the visibility as JSONB.
func (v Visibility) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *Visibility) Scan(src any) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("visibility: cannot scan %T", src)
	}
}
