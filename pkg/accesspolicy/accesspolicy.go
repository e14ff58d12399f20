package accesspolicy

import (
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
)

// package errors
var (
	ErrNoResourceID           = errors.New("resource id is empty")
	ErrInvalidOwner           = errors.New("owner id is empty")
	ErrAmbiguousAccessControl = errors.New("access control must be null for public or carry at least one list")
	ErrPolicyNotFound         = errors.New("resource policy not found")
	ErrPolicyAlreadyExists    = errors.New("resource policy already exists")
	ErrNothingChanged         = errors.New("nothing changed")
	ErrNilStore               = errors.New("policy store is nil")
	ErrNilDatabase            = errors.New("database connection is nil")
	ErrNilApplyFunc           = errors.New("apply function is nil")
)

// Capability is a single permission dimension on a resource
type Capability uint8

const (
	CapNone Capability = iota
	CapRead
	CapWrite
)

func (c Capability) String() string {
	switch c {
	case CapRead:
		return "read"
	case CapWrite:
		return "write"
	default:
		return "unrecognized capability"
	}
}

// ParseCapability maps a wire name onto a capability
// NOTE: unknown names map to CapNone which never grants anything
func ParseCapability(s string) Capability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return CapRead
	case "write":
		return CapWrite
	default:
		return CapNone
	}
}

// AccessList holds the user and group ids granted a single capability.
// Both lists are kept deduplicated in insertion order; an empty list
// grants nothing beyond the resource owner.
type AccessList struct {
	UserIDs  []string `json:"user_ids"`
	GroupIDs []string `json:"group_ids"`
}

// HasUser tests whether a given user id is explicitly listed
func (l *AccessList) HasUser(userID string) bool {
	if l == nil || userID == "" {
		return false
	}

	for _, id := range l.UserIDs {
		if id == userID {
			return true
		}
	}

	return false
}

// HasAnyGroup tests whether any of the given group ids is explicitly listed
func (l *AccessList) HasAnyGroup(groupIDs []string) bool {
	if l == nil || len(l.GroupIDs) == 0 {
		return false
	}

	for _, gid := range groupIDs {
		for _, id := range l.GroupIDs {
			if gid != "" && id == gid {
				return true
			}
		}
	}

	return false
}

func (l *AccessList) clone() *AccessList {
	if l == nil {
		return nil
	}

	c := &AccessList{
		UserIDs:  make([]string, len(l.UserIDs)),
		GroupIDs: make([]string, len(l.GroupIDs)),
	}

	copy(c.UserIDs, l.UserIDs)
	copy(c.GroupIDs, l.GroupIDs)

	return c
}

func (l *AccessList) normalized() *AccessList {
	if l == nil {
		return &AccessList{UserIDs: []string{}, GroupIDs: []string{}}
	}

	return &AccessList{
		UserIDs:  dedup(l.UserIDs),
		GroupIDs: dedup(l.GroupIDs),
	}
}

// dedup collapses duplicate and blank ids, preserving first occurrence order
func dedup(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// AccessControl carries the per-capability access lists of a resource.
// A nil *AccessControl means the resource is public: readable by every
// principal and writable by the owner alone.
type AccessControl struct {
	Read  *AccessList `json:"read,omitempty"`
	Write *AccessList `json:"write,omitempty"`
}

// List returns the access list matching a given capability
func (ac *AccessControl) List(c Capability) *AccessList {
	if ac == nil {
		return nil
	}

	switch c {
	case CapRead:
		return ac.Read
	case CapWrite:
		return ac.Write
	}

	return nil
}

func (ac *AccessControl) clone() *AccessControl {
	if ac == nil {
		return nil
	}

	return &AccessControl{
		Read:  ac.Read.clone(),
		Write: ac.Write.clone(),
	}
}

// ResourcePolicy binds a resource to its owner and access control.
// The owner implicitly holds both capabilities regardless of the
// access control contents, including nil.
type ResourcePolicy struct {
	ResourceID    string         `db:"resource_id" json:"resource_id" valid:"required"`
	OwnerID       string         `db:"owner_id" json:"owner_id" valid:"required"`
	AccessControl *AccessControl `db:"-" json:"access_control"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// NewResourcePolicy initializes a policy for a freshly created resource
// NOTE: new resources default to public for backward compatibility
func NewResourcePolicy(resourceID string, ownerID string) ResourcePolicy {
	return ResourcePolicy{
		ResourceID:    strings.TrimSpace(resourceID),
		OwnerID:       strings.TrimSpace(ownerID),
		AccessControl: nil,
	}
}

// Validate performs basic self-checks before the policy is persisted
func (p ResourcePolicy) Validate() error {
	if strings.TrimSpace(p.ResourceID) == "" {
		return ErrNoResourceID
	}

	if strings.TrimSpace(p.OwnerID) == "" {
		return ErrInvalidOwner
	}

	// a non-null access control with both lists omitted is ambiguous:
	// the caller must pass null explicitly to make a resource public
	if p.AccessControl != nil && p.AccessControl.Read == nil && p.AccessControl.Write == nil {
		return ErrAmbiguousAccessControl
	}

	return nil
}

// Normalize returns a canonical deep copy of the policy: all id lists
// deduplicated, and a missing capability list backfilled with an empty
// one (meaning that capability stays owner-only). Idempotent.
func (p ResourcePolicy) Normalize() ResourcePolicy {
	p.ResourceID = strings.TrimSpace(p.ResourceID)
	p.OwnerID = strings.TrimSpace(p.OwnerID)

	if p.AccessControl == nil {
		return p
	}

	p.AccessControl = &AccessControl{
		Read:  p.AccessControl.Read.normalized(),
		Write: p.AccessControl.Write.normalized(),
	}

	return p
}

// Clone returns a deep copy safe to hand across goroutines
func (p ResourcePolicy) Clone() ResourcePolicy {
	p.AccessControl = p.AccessControl.clone()
	return p
}

// IsPublic tests whether the policy grants read access to everyone
func (p ResourcePolicy) IsPublic() bool {
	return p.AccessControl == nil
}

// Hash produces a content key of the normalized policy, ignoring
// timestamps; used to detect no-op saves
func (p ResourcePolicy) Hash() uint64 {
	p = p.Normalize()

	var b strings.Builder

	b.WriteString(p.ResourceID)
	b.WriteByte(0x1f)
	b.WriteString(p.OwnerID)

	if p.AccessControl == nil {
		b.WriteString("\x1fpublic")
		return xxhash.Sum64String(b.String())
	}

	for _, l := range []*AccessList{p.AccessControl.Read, p.AccessControl.Write} {
		b.WriteByte(0x1e)

		for _, id := range l.UserIDs {
			b.WriteByte(0x1f)
			b.WriteString(id)
		}

		b.WriteByte(0x1d)

		for _, id := range l.GroupIDs {
			b.WriteByte(0x1f)
			b.WriteString(id)
		}
	}

	return xxhash.Sum64String(b.String())
}
