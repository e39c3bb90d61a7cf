package state

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

func roleKey(scope [20]byte, role string) []byte {
	return joinKey(rolePrefix, scope[:], []byte("/"), []byte(role))
}

// RoleMembers returns the holders of role within scope in sorted order.
func (m *Manager) RoleMembers(scope [20]byte, role string) ([][20]byte, error) {
	var members [][20]byte
	if _, err := m.KVGet(roleKey(scope, strings.TrimSpace(role)), &members); err != nil {
		return nil, err
	}
	if members == nil {
		return [][20]byte{}, nil
	}
	return members, nil
}

// SetRoleMembers replaces the holders of role within scope. The stored list
// is kept sorted for determinism; an empty list removes the entry.
func (m *Manager) SetRoleMembers(scope [20]byte, role string, members [][20]byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("role must not be empty")
	}
	if len(members) == 0 {
		return m.KVDelete(roleKey(scope, trimmed))
	}
	sorted := append([][20]byte(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i][:], sorted[j][:]) < 0 })
	return m.KVPut(roleKey(scope, trimmed), sorted)
}
