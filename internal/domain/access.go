package domain

import "slices"

// Permission names one back-office capability. Tokens carry the permissions
// of the account's role at issue time.
type Permission string

const (
	PermTakeOrders      Permission = "orders:write"
	PermViewMenu        Permission = "menu:read"
	PermManageMenu      Permission = "menu:write"
	PermViewInventory   Permission = "inventory:read"
	PermManageInventory Permission = "inventory:write"
	PermManageSuppliers Permission = "suppliers:write"
	PermViewConsumption Permission = "consumption:read"
	PermViewActivity    Permission = "activity:read"
	PermManageStaff     Permission = "staff:write"
)

var rolePermissions = map[string][]Permission{
	RoleStaff: {
		PermTakeOrders,
		PermViewMenu,
		PermViewInventory,
	},
	RoleAdmin: {
		PermTakeOrders,
		PermViewMenu,
		PermManageMenu,
		PermViewInventory,
		PermManageInventory,
		PermManageSuppliers,
		PermViewConsumption,
		PermViewActivity,
		PermManageStaff,
	},
}

// PermissionsFor returns a copy of the permissions granted to role. Unknown
// roles get none.
func PermissionsFor(role string) []Permission {
	return slices.Clone(rolePermissions[role])
}

// Can reports whether the actor holds p. An actor without an explicit
// permission set falls back to its role's defaults.
func (a Actor) Can(p Permission) bool {
	if a.Permissions != nil {
		return slices.Contains(a.Permissions, p)
	}
	return slices.Contains(rolePermissions[a.Role], p)
}
