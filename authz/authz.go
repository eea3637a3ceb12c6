// Package authz answers access questions for a resolved identity.
//
// Access is the intersection of two independent authorities: the role
// permission matrix granted inside the organization, and the modules the
// organization's subscription plan has purchased. Neither authority alone
// grants access. Absence of data always denies.
package authz

import (
	access "github.com/fieldline/access-go"
)

// Reserved modules are platform infrastructure, not billable features.
// Org admins reach them regardless of plan gating.
const (
	ModuleOrganizations = "organizations"
	ModuleSystemUsers   = "systemUsers"
	ModuleSubscriptions = "subscriptions"
	ModuleSettings      = "settings"
)

var reservedModules = map[string]bool{
	ModuleOrganizations: true,
	ModuleSystemUsers:   true,
	ModuleSubscriptions: true,
	ModuleSettings:      true,
}

// HasPermission reports whether the identity's role grants the feature on
// the module. System roles and org admins hold blanket authority; anyone
// else needs an explicit grant in the permission matrix.
func HasPermission(id *access.Identity, module, feature string) bool {
	if id == nil {
		return false
	}
	if access.IsSystemRole(id.Role) {
		return true
	}
	if id.Role == access.RoleAdmin {
		return true
	}
	return id.Permissions[module][feature]
}

// IsPlanFeatureEnabled reports whether the organization's subscription
// plan includes the module, and the feature within it when feature is
// non-empty. System roles bypass plan gating entirely; org admins bypass
// it for reserved modules only.
//
// Organizations without a subscription record are judged by their own
// active flags instead. The subscription is always consulted first; the
// org flags are a fallback, not a peer source.
func IsPlanFeatureEnabled(id *access.Identity, module, feature string) bool {
	if id == nil {
		return false
	}
	if access.IsSystemRole(id.Role) {
		return true
	}
	if id.Role == access.RoleAdmin && reservedModules[module] {
		return true
	}

	sub := id.Subscription
	if sub == nil {
		// Legacy organization: no plan record to consult, the org's own
		// flags carry the activity signal and no module list restricts it.
		return orgFallbackActive(id)
	}
	if !sub.IsActive && !orgFallbackActive(id) {
		return false
	}
	if !sub.ModuleEnabled(module) {
		return false
	}
	if feature != "" {
		return sub.FeatureEnabled(module, feature)
	}
	return true
}

// HasAccess is the composite check gating UI elements and actions: plan
// entitlement AND role permission. System roles short-circuit to true. A
// purchased module without role permission denies, and a role permission
// without the purchased module denies.
func HasAccess(id *access.Identity, module, feature string) bool {
	if id == nil {
		return false
	}
	if access.IsSystemRole(id.Role) {
		return true
	}
	return IsPlanFeatureEnabled(id, module, feature) && HasPermission(id, module, feature)
}

// IsFeatureEnabled reports whether a module tab should render for an
// ordinary organizational actor. System roles are excluded: they navigate
// a different surface and never see org module tabs through this check.
func IsFeatureEnabled(id *access.Identity, module string) bool {
	if id == nil {
		return false
	}
	if access.IsSystemRole(id.Role) {
		return false
	}
	if id.Role == access.RoleAdmin && reservedModules[module] {
		return true
	}

	sub := id.Subscription
	if sub == nil {
		return orgFallbackActive(id)
	}
	if !sub.IsActive && !orgFallbackActive(id) {
		return false
	}
	return sub.ModuleEnabled(module)
}

// Can reports whether the role grants one of the four legacy actions
// (view, create, update, delete) on a module.
//
// Unlike every other check here, system roles are denied rather than
// granted: the legacy path never touches tenant resources with platform
// authority. Kept for callers that predate HasAccess.
//
// Deprecated: use HasAccess.
func Can(id *access.Identity, module, action string) bool {
	if id == nil {
		return false
	}
	if access.IsSystemRole(id.Role) {
		return false
	}
	if id.Role == access.RoleAdmin {
		return true
	}
	switch action {
	case "view", "create", "update", "delete":
		return id.Permissions[module][action]
	}
	return false
}

// orgFallbackActive is the activity signal for organizations judged by
// their own flags rather than a subscription record.
func orgFallbackActive(id *access.Identity) bool {
	org := id.Organization
	return org != nil && org.IsActive && org.IsSubscriptionActive
}
