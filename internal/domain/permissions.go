package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PastePermissions controls what a user may do with pastes.
type PastePermissions struct {
	Create     bool `json:"create"`
	Admin      bool `json:"admin"`
	ViewPublic bool `json:"view_public"`
}

// ImagePermissions controls what a user may do with images.
type ImagePermissions struct {
	Create     bool `json:"create"`
	Admin      bool `json:"admin"`
	ViewPublic bool `json:"view_public"`
}

// UserPermissions controls account-level actions.
type UserPermissions struct {
	EditUser        bool `json:"edit_user"`
	ViewProfile     bool `json:"view_profile"`
	CreateAuthToken bool `json:"create_auth_token"`
}

// Permissions is the full permission document carried on a user row and, for
// anonymous requests, supplied by the deployment configuration. Stored as
// JSONB.
type Permissions struct {
	Paste PastePermissions `json:"paste_permissions"`
	Image ImagePermissions `json:"image_permissions"`
	User  UserPermissions  `json:"user_permissions"`
	Admin bool             `json:"admin"`
}

// DefaultPermissions is what a freshly registered user gets.
func DefaultPermissions() Permissions {
	return Permissions{
		Paste: PastePermissions{Create: true, ViewPublic: true},
		Image: ImagePermissions{Create: true, ViewPublic: true},
		User:  UserPermissions{ViewProfile: true, CreateAuthToken: true},
	}
}

// AdminPermissions grants everything. The first registered user gets these.
func AdminPermissions() Permissions {
	return Permissions{
		Paste: PastePermissions{Create: true, Admin: true, ViewPublic: true},
		Image: ImagePermissions{Create: true, Admin: true, ViewPublic: true},
		User:  UserPermissions{EditUser: true, ViewProfile: true, CreateAuthToken: true},
		Admin: true,
	}
}

// AnonymousPermissions is the default permission set for unauthenticated
// requests: read-only access to public content.
func AnonymousPermissions() Permissions {
	return Permissions{
		Paste: PastePermissions{ViewPublic: true},
		Image: ImagePermissions{ViewPublic: true},
		User:  UserPermissions{ViewProfile: true},
	}
}

// IsPasteAdmin reports whether the holder may administer any paste.
func (p Permissions) IsPasteAdmin() bool {
	return p.Paste.Admin || p.Admin
}

// IsImageAdmin reports whether the holder may administer any image.
func (p Permissions) IsImageAdmin() bool {
	return p.Image.Admin || p.Admin
}

// Value implements driver.Valuer, storing the document as JSONB.
func (p Permissions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *Permissions) Scan(src any) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, p)
	case string:
		return json.Unmarshal([]byte(data), p)
	default:
		return fmt.Errorf("permissions: cannot scan %T", src)
	}
}
