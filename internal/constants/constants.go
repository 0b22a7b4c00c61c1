package constants

// ContextKeyUserID is the key under which the authenticated user ID is stored
// in both the session and the gin context.
const ContextKeyUserID = "user_id"

// SessionCookieName names the session cookie issued on login.
const SessionCookieName = "marcahora_session"

const MinPasswordLength = 8

// Business limits mirrored from the organization rules.
const (
	// MaxOrganizationMembers caps active members per organization.
	MaxOrganizationMembers = 100
	// MaxUserOrganizations caps organizations a single user may own.
	MaxUserOrganizations = 10
)
