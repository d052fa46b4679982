// Package graph holds the host/domain relationship graph built from
// zone transfer results: host name nodes, address nodes and the typed
// edges between them. All mutation is create-or-fetch, so merging the
// same records twice never produces duplicates.
package graph

// MappingType is the DNS relation an edge was derived from.
type MappingType string

const (
	MappingA     MappingType = "A"
	MappingAAAA  MappingType = "AAAA"
	MappingCNAME MappingType = "CNAME"
)

// HostName is a DNS name under one of the in-scope domains. Identity
// is the normalized name.
type HostName struct {
	// Name is the normalized host name (lowercase, no trailing dot).
	Name string
	// Domain is the in-scope domain the name belongs to.
	Domain string
}

// Address is an IPv4 or IPv6 address. Identity is the canonical
// string form.
type Address struct {
	// IP is the canonical address string.
	IP string
	// Version is 4 or 6.
	Version int
}

// HostAddressEdge records that a host name resolves to an address.
// The relation is many-to-many.
type HostAddressEdge struct {
	Host string
	IP   string
	Type MappingType
}

// AliasEdge records a directed CNAME relation: Source is the alias,
// Target the canonical name.
type AliasEdge struct {
	Source string
	Target string
}

// Store is a graph store with create-or-fetch semantics. The boolean
// returns signal rejection of invalid or out-of-scope input, which is
// expected with untrusted zone content and is not an error. Errors are
// reserved for persistence failures and must be propagated by callers.
type Store interface {
	// GetOrCreateHostName validates and normalizes name against the
	// in-scope domains and returns its node, creating it if needed.
	// ok is false when the name is rejected.
	GetOrCreateHostName(name string) (node *HostName, ok bool, err error)
	// GetOrCreateAddress canonicalizes the address literal and returns
	// its node, creating it if needed. ok is false when the literal is
	// not a valid IP address.
	GetOrCreateAddress(literal string) (node *Address, ok bool, err error)
	// GetOrCreateHostAddressEdge records a host-to-address relation.
	// Both nodes must already exist in the store.
	GetOrCreateHostAddressEdge(host *HostName, addr *Address, mapping MappingType) error
	// GetOrCreateAliasEdge records a directed alias relation between
	// two existing host name nodes.
	GetOrCreateAliasEdge(source, target *HostName) error

	// IterateHostNames visits every host name node. Iteration stops at
	// the first error, which is returned.
	IterateHostNames(fn func(*HostName) error) error
	// IterateAddresses visits every address node.
	IterateAddresses(fn func(*Address) error) error
	// IterateHostAddressEdges visits every host-to-address edge.
	IterateHostAddressEdges(fn func(*HostAddressEdge) error) error
	// IterateAliasEdges visits every alias edge.
	IterateAliasEdges(fn func(*AliasEdge) error) error

	// Close releases any resources held by the store.
	Close() error
}
