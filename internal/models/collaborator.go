package models

import "time"

// InvitationStatus is the lifecycle state of a collaborator invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Collaborator is an invitation granting a teammate access to one claimed
// blog. Invitations are scoped strictly to their owning blog and are never
// listed outside it. Acceptance happens out of band and shows up on reload.
type Collaborator struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email,omitempty"`
	Status    InvitationStatus `json:"status"`
	InvitedAt time.Time        `json:"invited_at"`
}
