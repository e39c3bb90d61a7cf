package access

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"sync"

	"yonledger/native/common"
)

const (
	// RoleAdmin may grant and revoke every other role within its scope.
	RoleAdmin = "DEFAULT_ADMIN_ROLE"
	// RoleInitiator may register and remove vesting beneficiaries during setup.
	RoleInitiator = "INITIATOR_ROLE"
	// RoleActivator may switch a vesting ledger to live mode.
	RoleActivator = "ACTIVATOR_ROLE"
	// RoleRevoker may terminate a revocable single vesting.
	RoleRevoker = "REVOKER_ROLE"
)

var (
	errNilStore   = errors.New("access: store not configured")
	errEmptyRole  = errors.New("access: role must not be empty")
	errZeroMember = errors.New("access: member must not be the zero address")
)

// Store persists role membership per scope. A scope is the custody address of
// the engine instance owning the roles.
type Store interface {
	RoleMembers(scope [20]byte, role string) ([][20]byte, error)
	SetRoleMembers(scope [20]byte, role string, members [][20]byte) error
}

// Controller enforces role capabilities for a single engine instance.
type Controller struct {
	store  Store
	scope  [20]byte
	module string
}

// NewController binds a controller to the scope of one engine instance. The
// module name prefixes authorization errors.
func NewController(store Store, scope [20]byte, module string) *Controller {
	return &Controller{store: store, scope: scope, module: module}
}

func normalizeRole(role string) (string, error) {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return "", errEmptyRole
	}
	return trimmed, nil
}

func sortMembers(members [][20]byte) {
	sort.Slice(members, func(i, j int) bool {
		return bytes.Compare(members[i][:], members[j][:]) < 0
	})
}

// Members returns the sorted holders of role.
func (c *Controller) Members(role string) ([][20]byte, error) {
	if c == nil || c.store == nil {
		return nil, errNilStore
	}
	normalized, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}
	members, err := c.store.RoleMembers(c.scope, normalized)
	if err != nil {
		return nil, err
	}
	out := append([][20]byte(nil), members...)
	sortMembers(out)
	return out, nil
}

// HasRole reports whether who currently holds role.
func (c *Controller) HasRole(role string, who [20]byte) (bool, error) {
	members, err := c.Members(role)
	if err != nil {
		return false, err
	}
	for _, member := range members {
		if member == who {
			return true, nil
		}
	}
	return false, nil
}

// Require fails with an AuthorizationError unless caller holds role.
func (c *Controller) Require(role string, caller [20]byte) error {
	ok, err := c.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return &common.AuthorizationError{Module: c.module, Caller: caller, Role: role}
	}
	return nil
}

// RequireAny succeeds when caller holds at least one of roles. The reported
// role on failure is the first one listed.
func (c *Controller) RequireAny(caller [20]byte, roles ...string) error {
	for _, role := range roles {
		ok, err := c.HasRole(role, caller)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	required := ""
	if len(roles) > 0 {
		required = strings.Join(roles, "|")
	}
	return &common.AuthorizationError{Module: c.module, Caller: caller, Role: required}
}

// Seed assigns role to members without an authorization check. It is only
// meant for construction of a new engine instance.
func (c *Controller) Seed(role string, members ...[20]byte) error {
	for _, member := range members {
		if err := c.add(role, member); err != nil {
			return err
		}
	}
	return nil
}

// Grant assigns role to who. The caller must hold RoleAdmin.
func (c *Controller) Grant(caller [20]byte, role string, who [20]byte) error {
	if err := c.Require(RoleAdmin, caller); err != nil {
		return err
	}
	return c.add(role, who)
}

// Revoke removes role from who. The caller must hold RoleAdmin.
func (c *Controller) Revoke(caller [20]byte, role string, who [20]byte) error {
	if err := c.Require(RoleAdmin, caller); err != nil {
		return err
	}
	return c.remove(role, who)
}

// Renounce lets the caller drop one of its own roles.
func (c *Controller) Renounce(caller [20]byte, role string) error {
	return c.remove(role, caller)
}

func (c *Controller) add(role string, who [20]byte) error {
	if who == ([20]byte{}) {
		return errZeroMember
	}
	members, err := c.Members(role)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member == who {
			return nil
		}
	}
	members = append(members, who)
	sortMembers(members)
	return c.store.SetRoleMembers(c.scope, strings.TrimSpace(role), members)
}

func (c *Controller) remove(role string, who [20]byte) error {
	members, err := c.Members(role)
	if err != nil {
		return err
	}
	kept := members[:0]
	removed := false
	for _, member := range members {
		if member == who {
			removed = true
			continue
		}
		kept = append(kept, member)
	}
	if !removed {
		return nil
	}
	return c.store.SetRoleMembers(c.scope, strings.TrimSpace(role), kept)
}

// MemoryStore is an in-process Store used by tests and ephemeral engines.
type MemoryStore struct {
	mu    sync.RWMutex
	roles map[[20]byte]map[string][][20]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{roles: make(map[[20]byte]map[string][][20]byte)}
}

// RoleMembers implements Store.
func (m *MemoryStore) RoleMembers(scope [20]byte, role string) ([][20]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([][20]byte(nil), m.roles[scope][role]...), nil
}

// SetRoleMembers implements Store.
func (m *MemoryStore) SetRoleMembers(scope [20]byte, role string, members [][20]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[scope] == nil {
		m.roles[scope] = make(map[string][][20]byte)
	}
	if len(members) == 0 {
		delete(m.roles[scope], role)
		return nil
	}
	m.roles[scope][role] = append([][20]byte(nil), members...)
	return nil
}
