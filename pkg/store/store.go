// Package store implements a LevelDB backed graph store so that
// results survive across runs and repeated merges of the same zone
// output stay idempotent at the database level.
package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/scope"
)

const (
	prefixHostName  = "hn:"
	prefixAddress   = "ip:"
	prefixHostAddr  = "ha:"
	prefixAliasEdge = "al:"

	fieldSeparator = "|"
)

// Store is a LevelDB backed implementation of graph.Store.
type Store struct {
	db    *leveldb.DB
	scope *scope.Scope
}

// compile time interface check
var _ graph.Store = (*Store)(nil)

// Open opens (or creates) the graph database at dbPath.
func Open(dbPath string, sc *scope.Scope) (*Store, error) {
	db, err := leveldb.OpenFile(dbPath, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("could not open graph database: %w", err)
	}
	return &Store{db: db, scope: sc}, nil
}

// GetOrCreateHostName validates name against the in-scope domains and
// stores it on first reference. ok is false when the name is rejected.
func (s *Store) GetOrCreateHostName(name string) (*graph.HostName, bool, error) {
	normalized, domain, ok := s.scope.ResolveHostName(name)
	if !ok {
		return nil, false, nil
	}

	node := &graph.HostName{Name: normalized, Domain: domain}
	key := []byte(prefixHostName + normalized)
	if exists, err := s.db.Has(key, nil); err != nil {
		return nil, false, err
	} else if exists {
		return node, true, nil
	}
	if err := s.db.Put(key, []byte(domain), nil); err != nil {
		return nil, false, err
	}
	return node, true, nil
}

// GetOrCreateAddress canonicalizes the literal and stores it on first
// reference. ok is false for invalid literals.
func (s *Store) GetOrCreateAddress(literal string) (*graph.Address, bool, error) {
	canonical, version, ok := graph.CanonicalAddress(literal)
	if !ok {
		return nil, false, nil
	}

	node := &graph.Address{IP: canonical, Version: version}
	key := []byte(prefixAddress + canonical)
	if exists, err := s.db.Has(key, nil); err != nil {
		return nil, false, err
	} else if exists {
		return node, true, nil
	}
	if err := s.db.Put(key, []byte(strconv.Itoa(version)), nil); err != nil {
		return nil, false, err
	}
	return node, true, nil
}

// GetOrCreateHostAddressEdge records the relation. Re-putting an
// existing key is a no-op for the graph, so the merge is idempotent.
func (s *Store) GetOrCreateHostAddressEdge(host *graph.HostName, addr *graph.Address, mapping graph.MappingType) error {
	key := prefixHostAddr + strings.Join([]string{host.Name, addr.IP, string(mapping)}, fieldSeparator)
	return s.db.Put([]byte(key), nil, nil)
}

// GetOrCreateAliasEdge records the directed alias relation.
func (s *Store) GetOrCreateAliasEdge(source, target *graph.HostName) error {
	key := prefixAliasEdge + strings.Join([]string{source.Name, target.Name}, fieldSeparator)
	return s.db.Put([]byte(key), nil, nil)
}

// IterateHostNames visits every stored host name node.
func (s *Store) IterateHostNames(fn func(*graph.HostName) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixHostName)), nil)
	defer iter.Release()

	for iter.Next() {
		node := &graph.HostName{
			Name:   strings.TrimPrefix(string(iter.Key()), prefixHostName),
			Domain: string(iter.Value()),
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return iter.Error()
}

// IterateAddresses visits every stored address node.
func (s *Store) IterateAddresses(fn func(*graph.Address) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixAddress)), nil)
	defer iter.Release()

	for iter.Next() {
		version, err := strconv.Atoi(string(iter.Value()))
		if err != nil {
			return fmt.Errorf("corrupt address version for %s: %w", iter.Key(), err)
		}
		node := &graph.Address{
			IP:      strings.TrimPrefix(string(iter.Key()), prefixAddress),
			Version: version,
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return iter.Error()
}

// IterateHostAddressEdges visits every stored host-to-address edge.
func (s *Store) IterateHostAddressEdges(fn func(*graph.HostAddressEdge) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixHostAddr)), nil)
	defer iter.Release()

	for iter.Next() {
		fields := strings.Split(strings.TrimPrefix(string(iter.Key()), prefixHostAddr), fieldSeparator)
		if len(fields) != 3 {
			return fmt.Errorf("corrupt host-address edge key: %s", iter.Key())
		}
		edge := &graph.HostAddressEdge{Host: fields[0], IP: fields[1], Type: graph.MappingType(fields[2])}
		if err := fn(edge); err != nil {
			return err
		}
	}
	return iter.Error()
}

// IterateAliasEdges visits every stored alias edge.
func (s *Store) IterateAliasEdges(fn func(*graph.AliasEdge) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixAliasEdge)), nil)
	defer iter.Release()

	for iter.Next() {
		fields := strings.Split(strings.TrimPrefix(string(iter.Key()), prefixAliasEdge), fieldSeparator)
		if len(fields) != 2 {
			return fmt.Errorf("corrupt alias edge key: %s", iter.Key())
		}
		edge := &graph.AliasEdge{Source: fields[0], Target: fields[1]}
		if err := fn(edge); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
