package auth

// UserType is the closed set of account types.
type UserType string

const (
	UserTypeStudent UserType = "STUDENT"
	UserTypeCampus  UserType = "CAMPUS"
	UserTypeCompany UserType = "COMPANY"
	UserTypeAdmin   UserType = "ADMIN"
)

// Role names seeded by the migrations. Exactly one role maps to each
// user type; adding a type means updating these tables AND seeding the
// new role row.
const (
	RoleStudent          = "STUDENT"
	RoleCampusAdmin      = "CAMPUS_ADMIN"
	RoleCompanyRecruiter = "COMPANY_RECRUITER"
	RoleSuperAdmin       = "SUPER_ADMIN"
)

// ParseUserType safely parses a string into a UserType.
func ParseUserType(s string) (UserType, bool) {
	t := UserType(s)
	return t, t.IsValidUserType()
}

// IsValidUserType checks membership in the closed type set.
func (t UserType) IsValidUserType() bool {
	switch t {
	case UserTypeStudent, UserTypeCampus, UserTypeCompany, UserTypeAdmin:
		return true
	default:
		return false
	}
}

// DefaultRoleName returns the role auto-assigned at registration and
// type changes.
func DefaultRoleName(t UserType) (string, bool) {
	switch t {
	case UserTypeStudent:
		return RoleStudent, true
	case UserTypeCampus:
		return RoleCampusAdmin, true
	case UserTypeCompany:
		return RoleCompanyRecruiter, true
	case UserTypeAdmin:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// RedirectService is a fixed routing hint derived purely from the type.
func RedirectService(t UserType) string {
	switch t {
	case UserTypeStudent:
		return "student-service"
	case UserTypeCampus:
		return "campus-service"
	case UserTypeCompany:
		return "company-service"
	case UserTypeAdmin:
		return "admin-service"
	default:
		return ""
	}
}

// AllUserTypes returns the closed type set.
func AllUserTypes() []UserType {
	return []UserType{
		UserTypeStudent,
		UserTypeCampus,
		UserTypeCompany,
		UserTypeAdmin,
	}
}
