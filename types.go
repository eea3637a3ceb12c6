package access

import "time"

// Role tags carried by an identity record. System roles operate across
// organizations; admin and user are scoped to a single organization.
const (
	RoleSystemAdmin     = "systemAdmin"
	RoleSystemDeveloper = "systemDeveloper"
	RoleAdmin           = "admin"
	RoleUser            = "user"
)

// IsSystemRole reports whether the role tag is a platform-operator role.
func IsSystemRole(role string) bool {
	return role == RoleSystemAdmin || role == RoleSystemDeveloper
}

// Identity is the resolved actor for the current session.
//
// An identity is replaced wholesale on every refresh and treated as
// immutable once committed to the session store. Permissions is always
// non-nil after normalization so lookups never need a nil guard.
type Identity struct {
	ID       string
	Name     string
	Email    string
	Role     string
	IsActive bool

	// UserName and DisplayName are legacy aliases for Name kept for
	// consumers that predate the profile field rename. They are set at
	// normalization time, never independently.
	UserName    string
	DisplayName string

	Organization *Organization
	Permissions  map[string]map[string]bool
	Subscription *Subscription
}

// Normalize produces the committed form of a backend profile: permissions
// map always non-nil, legacy display aliases attached. Every identity runs
// through here before it reaches the session store, whether it arrived via
// login or via resolution. The input is not mutated; committed identities
// are immutable.
func Normalize(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	out := *id
	if out.Permissions == nil {
		out.Permissions = make(map[string]map[string]bool)
	}
	out.UserName = out.Name
	out.DisplayName = out.Name
	return &out
}

// Organization is the tenant an identity belongs to. The two flags double
// as a fallback plan-activity signal for legacy organizations provisioned
// before subscription records existed.
type Organization struct {
	ID                   string
	Name                 string
	IsActive             bool
	IsSubscriptionActive bool
}

// Subscription is the plan purchased by an organization. Referenced by
// identities, owned by the organization.
type Subscription struct {
	Plan           string
	Tier           string
	MaxEmployees   int
	EnabledModules []string
	ModuleFeatures map[string]map[string]bool
	EndDate        time.Time
	IsActive       bool
}

// ModuleEnabled reports whether the plan includes the given module.
func (s *Subscription) ModuleEnabled(module string) bool {
	if s == nil {
		return false
	}
	for _, m := range s.EnabledModules {
		if m == module {
			return true
		}
	}
	return false
}

// FeatureEnabled reports whether the plan admits the given feature of a
// module. Per-feature data is optional: a plan without ModuleFeatures does
// not distinguish features, so the module-level grant stands and every
// feature passes. A present map that omits the feature denies.
func (s *Subscription) FeatureEnabled(module, feature string) bool {
	if s == nil {
		return false
	}
	if s.ModuleFeatures == nil {
		return true
	}
	return s.ModuleFeatures[module][feature]
}

// Credentials are submitted at login.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is the raw login response handed back to the caller. The
// normalized identity is committed to the session store separately.
type LoginResult struct {
	Identity  *Identity
	Token     string
	ExpiresAt time.Time

	// HasPortalAccess is false when the account authenticated correctly
	// but is not entitled to use the web console.
	HasPortalAccess bool
}

// StoredActions is the canonical persisted shape of a module's permission
// row: the four concrete actions only. The editor-side "all" flag is never
// persisted since it is always derivable.
type StoredActions struct {
	Add    bool `json:"add"`
	Update bool `json:"update"`
	View   bool `json:"view"`
	Delete bool `json:"delete"`
}

// StoredMatrix is a role's canonical permission matrix, keyed by the
// stable storage key of each module (not its display label).
type StoredMatrix map[string]StoredActions
