// Package access is the single place role-based visibility is decided.
// Every view and aggregate filters through here before any other
// computation, so no count can leak another doctor's records.
package access

import "github.com/botucare/clinic-backend/internal/clinical"

// Owned is any clinical record with an owning doctor.
type Owned interface {
	OwnerID() string
}

// CanSee reports whether the actor may read a record owned by ownerID.
func CanSee(actor clinical.Actor, ownerID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}

// Visible reduces a collection to the subset the actor may read: admins see
// everything, doctors only their own records.
func Visible[T Owned](items []T, actor clinical.Actor) []T {
	if actor.IsAdmin() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if CanSee(actor, item.OwnerID()) {
			out = append(out, item)
		}
	}
	return out
}

// QueryFilterFor maps the actor onto the gateway's doctor filter so reads
// are scoped at the persistence boundary as well: empty for admins, the
// actor's id otherwise.
func QueryFilterFor(actor clinical.Actor) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.ID
}
