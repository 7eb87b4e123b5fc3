package models

type UserType string

const (
	UserTypeCourt     UserType = "COURT"
	UserTypeProbation UserType = "PROBATION"
	UserTypePrison    UserType = "PRISON"
)

// User is the authenticated caller as asserted by the SSO proxy.
type User struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName,omitempty"`
	UserType    UserType `json:"userType"`
	Token       string   `json:"-"`
	IsAdmin     bool     `json:"isAdmin"`
}

// CanBook reports whether the user may use the booking wizards of the given type.
func (u *User) CanBook(t BookingType) bool {
	if u == nil {
		return false
	}
	switch t {
	case BookingTypeCourt:
		return u.UserType == UserTypeCourt
	case BookingTypeProbation:
		return u.UserType == UserTypeProbation
	default:
		return false
	}
}

// UserDetails is the manage-users view of the caller.
type UserDetails struct {
	Username         string `json:"username"`
	Name             string `json:"name"`
	ActiveCaseLoadID string `json:"activeCaseLoadId,omitempty"`
	AuthSource       string `json:"authSource,omitempty"`
}
