package graph

import (
	"net"
	"sync"

	"github.com/zonehound/zonehound/pkg/scope"
)

// Memory is an in-memory Store implementation. It is safe for
// concurrent use by multiple goroutines.
type Memory struct {
	scope *scope.Scope

	mutex     sync.RWMutex
	hostNames map[string]*HostName
	addresses map[string]*Address
	hostAddrs map[HostAddressEdge]struct{}
	aliases   map[AliasEdge]struct{}
}

// NewMemory creates an empty in-memory graph store scoped to the
// given domains.
func NewMemory(sc *scope.Scope) *Memory {
	return &Memory{
		scope:     sc,
		hostNames: make(map[string]*HostName),
		addresses: make(map[string]*Address),
		hostAddrs: make(map[HostAddressEdge]struct{}),
		aliases:   make(map[AliasEdge]struct{}),
	}
}

// GetOrCreateHostName returns the node for name, creating it on first
// reference. Names that are malformed or outside the in-scope domains
// are rejected with ok=false.
func (m *Memory) GetOrCreateHostName(name string) (*HostName, bool, error) {
	normalized, domain, ok := m.scope.ResolveHostName(name)
	if !ok {
		return nil, false, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if node, ok := m.hostNames[normalized]; ok {
		return node, true, nil
	}
	node := &HostName{Name: normalized, Domain: domain}
	m.hostNames[normalized] = node
	return node, true, nil
}

// GetOrCreateAddress returns the node for the address literal,
// creating it on first reference. Invalid literals are rejected with
// ok=false and never stored.
func (m *Memory) GetOrCreateAddress(literal string) (*Address, bool, error) {
	canonical, version, ok := CanonicalAddress(literal)
	if !ok {
		return nil, false, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if node, ok := m.addresses[canonical]; ok {
		return node, true, nil
	}
	node := &Address{IP: canonical, Version: version}
	m.addresses[canonical] = node
	return node, true, nil
}

// GetOrCreateHostAddressEdge records the relation, treating an
// already existing edge as success.
func (m *Memory) GetOrCreateHostAddressEdge(host *HostName, addr *Address, mapping MappingType) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.hostAddrs[HostAddressEdge{Host: host.Name, IP: addr.IP, Type: mapping}] = struct{}{}
	return nil
}

// GetOrCreateAliasEdge records the directed alias relation, treating
// an already existing edge as success.
func (m *Memory) GetOrCreateAliasEdge(source, target *HostName) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.aliases[AliasEdge{Source: source.Name, Target: target.Name}] = struct{}{}
	return nil
}

// IterateHostNames visits every host name node.
func (m *Memory) IterateHostNames(fn func(*HostName) error) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, node := range m.hostNames {
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

// IterateAddresses visits every address node.
func (m *Memory) IterateAddresses(fn func(*Address) error) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, node := range m.addresses {
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

// IterateHostAddressEdges visits every host-to-address edge.
func (m *Memory) IterateHostAddressEdges(fn func(*HostAddressEdge) error) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for edge := range m.hostAddrs {
		edge := edge
		if err := fn(&edge); err != nil {
			return err
		}
	}
	return nil
}

// IterateAliasEdges visits every alias edge.
func (m *Memory) IterateAliasEdges(fn func(*AliasEdge) error) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for edge := range m.aliases {
		edge := edge
		if err := fn(&edge); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

// CanonicalAddress parses an IP address literal and returns its
// canonical string form and version. ok is false for invalid
// literals.
func CanonicalAddress(literal string) (canonical string, version int, ok bool) {
	ip := net.ParseIP(literal)
	if ip == nil {
		return "", 0, false
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String(), 4, true
	}
	return ip.String(), 6, true
}
