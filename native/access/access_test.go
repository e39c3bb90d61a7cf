package access

import (
	"errors"
	"testing"

	"yonledger/native/common"
)

func addr(fill byte) [20]byte {
	var out [20]byte
	for i := range out {
		out[i] = fill
	}
	return out
}

func TestControllerRequire(t *testing.T) {
	store := NewMemoryStore()
	ctrl := NewController(store, addr(0xEE), "vesting")
	initiator := addr(0x01)
	other := addr(0x02)

	if err := ctrl.Seed(RoleInitiator, initiator); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ctrl.Require(RoleInitiator, initiator); err != nil {
		t.Fatalf("expected initiator to pass: %v", err)
	}
	err := ctrl.Require(RoleInitiator, other)
	var authErr *common.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if authErr.Caller != other || authErr.Role != RoleInitiator || authErr.Module != "vesting" {
		t.Fatalf("unexpected authorization payload: %+v", authErr)
	}
}

func TestControllerScopesAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	first := NewController(store, addr(0xA1), "vesting")
	second := NewController(store, addr(0xA2), "vesting")
	holder := addr(0x05)

	if err := first.Seed(RoleActivator, holder); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ok, err := second.HasRole(RoleActivator, holder)
	if err != nil {
		t.Fatalf("has role: %v", err)
	}
	if ok {
		t.Fatalf("role leaked across scopes")
	}
}

func TestControllerGrantRevokeRenounce(t *testing.T) {
	store := NewMemoryStore()
	ctrl := NewController(store, addr(0xEE), "vesting")
	admin := addr(0x0A)
	member := addr(0x0B)

	if err := ctrl.Grant(admin, RoleInitiator, member); !common.IsAuthorization(err) {
		t.Fatalf("expected grant without admin to fail, got %v", err)
	}
	if err := ctrl.Seed(RoleAdmin, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := ctrl.Grant(admin, RoleInitiator, member); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := ctrl.Grant(admin, RoleInitiator, member); err != nil {
		t.Fatalf("duplicate grant should be a no-op: %v", err)
	}
	members, err := ctrl.Members(RoleInitiator)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0] != member {
		t.Fatalf("unexpected members: %v", members)
	}
	if err := ctrl.Renounce(member, RoleInitiator); err != nil {
		t.Fatalf("renounce: %v", err)
	}
	if ok, _ := ctrl.HasRole(RoleInitiator, member); ok {
		t.Fatalf("expected role to be renounced")
	}
	if err := ctrl.Grant(admin, RoleInitiator, member); err != nil {
		t.Fatalf("re-grant: %v", err)
	}
	if err := ctrl.Revoke(admin, RoleInitiator, member); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	members, _ = ctrl.Members(RoleInitiator)
	if len(members) != 0 {
		t.Fatalf("expected no initiators, got %v", members)
	}
}

func TestControllerRejectsZeroMember(t *testing.T) {
	ctrl := NewController(NewMemoryStore(), addr(0xEE), "staking")
	if err := ctrl.Seed(RoleRevoker, [20]byte{}); err == nil {
		t.Fatalf("expected zero member to be rejected")
	}
}

func TestRequireAny(t *testing.T) {
	ctrl := NewController(NewMemoryStore(), addr(0xEE), "vesting")
	activator := addr(0x03)
	if err := ctrl.Seed(RoleActivator, activator); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ctrl.RequireAny(activator, RoleInitiator, RoleActivator); err != nil {
		t.Fatalf("expected activator to pass: %v", err)
	}
	if err := ctrl.RequireAny(addr(0x04), RoleInitiator, RoleActivator); !common.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
