package models

// AnonymousName is shown in place of a removed author.
const AnonymousName = "Anonymous"

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleMod        Role = "Mod"
	RoleMember     Role = "Member"
	RoleBanned     Role = "Banned"
	RoleUnverified Role = "Unverified"
)

// DefaultRole is given to every new account.
const DefaultRole = RoleUnverified

// Roles lists every role in rank order.
var Roles = []Role{RoleAdmin, RoleMod, RoleMember, RoleBanned, RoleUnverified}

// Capabilities is what a role may do, regardless of ownership.
type Capabilities struct {
	Post              bool
	Comment           bool
	Reply             bool
	EditPosts         bool
	EditComments      bool
	EditSelf          bool
	AnonymisePosts    bool
	AnonymiseComments bool
	DeletePosts       bool
	DeleteComments    bool
	Admin             bool
}

var member = Capabilities{
	Post:              true,
	Comment:           true,
	Reply:             true,
	EditPosts:         true,
	EditComments:      true,
	EditSelf:          true,
	AnonymisePosts:    true,
	AnonymiseComments: true,
}

var capabilityTable = map[Role]Capabilities{
	RoleAdmin: func() Capabilities {
		c := member
		c.DeletePosts, c.DeleteComments, c.Admin = true, true, true
		return c
	}(),
	RoleMod: func() Capabilities {
		c := member
		c.DeletePosts, c.DeleteComments = true, true
		return c
	}(),
	RoleMember:     member,
	RoleBanned:     {},
	RoleUnverified: {},
}

// Capabilities returns the fixed capability set. Unknown roles get nothing.
func (r Role) Capabilities() Capabilities {
	return capabilityTable[r]
}

func (r Role) Valid() bool {
	_, ok := capabilityTable[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole maps a stored or submitted string to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Assignable reports whether an admin may set r through the admin form.
func (r Role) Assignable() bool {
	return r.Valid() && r != RoleAdmin && r != RoleUnverified
}
