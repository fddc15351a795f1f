package enums

// UserRole is the system-wide role carried in access tokens.
type UserRole string

const (
	UserRoleVendor UserRole = "vendor"
	UserRoleAdmin  UserRole = "admin"
)

var userRoles = []UserRole{UserRoleVendor, UserRoleAdmin}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return member(userRoles, r) }

// ParseUserRole is exact-match; roles come from signed claims, not user input.
func ParseUserRole(value string) (UserRole, error) {
	return parse(userRoles, "user role", value, false)
}
