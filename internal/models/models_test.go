package models

import "testing"

func TestAdminAccountRoles(t *testing.T) {
	a := &AdminAccount{Roles: []string{"viewer", "super_admin"}}
	if !a.HasRole("super_admin") || a.HasRole("editor") {
		t.Errorf("HasRole mismatch for %v", a.Roles)
	}
}

func TestAdminAccountIPAllowed(t *testing.T) {
	open := &AdminAccount{}
	if !open.IPAllowed("10.0.0.1") {
		t.Error("empty allow list should accept any IP")
	}

	locked := &AdminAccount{AllowedIPs: []string{"127.0.0.1"}}
	if !locked.IPAllowed("127.0.0.1") || locked.IPAllowed("10.0.0.1") {
		t.Errorf("allow list %v not honoured", locked.AllowedIPs)
	}
}
