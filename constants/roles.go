package constants

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)
