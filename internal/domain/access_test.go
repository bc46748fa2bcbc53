package domain

import "testing"

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role string
		perm Permission
		want bool
	}{
		{RoleStaff, PermTakeOrders, true},
		{RoleStaff, PermViewMenu, true},
		{RoleStaff, PermManageMenu, false},
		{RoleStaff, PermManageSuppliers, false},
		{RoleStaff, PermViewConsumption, false},
		{RoleAdmin, PermManageStaff, true},
		{RoleAdmin, PermViewConsumption, true},
		{"cashier", PermTakeOrders, false},
	}
	for _, tc := range cases {
		if got := (Actor{Role: tc.role}).Can(tc.perm); got != tc.want {
			t.Errorf("%s can %s: got %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleStaff)
	perms[0] = PermManageStaff
	if (Actor{Role: RoleStaff}).Can(PermManageStaff) {
		t.Fatal("mutating the returned slice must not grant the role new permissions")
	}
}

func TestExplicitPermissionsOverrideRole(t *testing.T) {
	actor := Actor{Role: RoleAdmin, Permissions: []Permission{PermViewMenu}}
	if actor.Can(PermManageMenu) {
		t.Fatal("explicit permissions must replace the role defaults")
	}
	if !actor.Can(PermViewMenu) {
		t.Fatal("expected explicit permission to be honoured")
	}
}
