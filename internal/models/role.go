package models

// Role is the coarse-grained account role. Roles are a closed set; the
// anonymous role exists only for unauthenticated principals and is
// never stored.
type Role string

const (
	RoleUser      Role = "user"
	RoleCreator   Role = "creator"
	RoleReviewer  Role = "reviewer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"

	RoleAnonymous Role = "Anonymous"
)

// Valid reports whether the role is one of the storable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleReviewer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Permission is a fine-grained capability codename.
type Permission string

const (
	PermAddUser       Permission = "users.add_user"
	PermChangeUser    Permission = "users.change_user"
	PermDeleteUser    Permission = "users.delete_user"
	PermViewUser      Permission = "users.view_user"
	PermAddProfile    Permission = "users.add_profile"
	PermChangeProfile Permission = "users.change_profile"
	PermDeleteProfile Permission = "users.delete_profile"
	PermViewProfile   Permission = "users.view_profile"
)

// rolePermissions is the static role-to-permission mapping. Granting is
// purely role-derived; there are no per-account permission rows.
var rolePermissions = map[Role][]Permission{
	RoleUser:     {PermViewUser, PermViewProfile, PermChangeProfile},
	RoleCreator:  {PermViewUser, PermViewProfile, PermChangeProfile},
	RoleReviewer: {PermViewUser, PermViewProfile},
	RoleModerator: {
		PermViewUser, PermChangeUser, PermDeleteUser,
		PermViewProfile, PermChangeProfile, PermDeleteProfile,
	},
	RoleAdmin: {
		PermAddUser, PermChangeUser, PermDeleteUser, PermViewUser,
		PermAddProfile, PermChangeProfile, PermDeleteProfile, PermViewProfile,
	},
}

// Grants reports whether the role carries the permission.
func (r Role) Grants(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
