package axfr

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zonehound/zonehound/internal/history"
	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/scope"
)

// sampleZone is a realistic `host -t axfr` capture including tool
// chatter, a refused transfer notice and multi-line SOA content.
const sampleZone = `Trying "megacorpone.com"
;; ->>HEADER<<- opcode: QUERY, status: NOERROR, id: 48320
;; flags: qr aa; QUERY: 1, ANSWER: 9, AUTHORITY: 0, ADDITIONAL: 0

;; QUESTION SECTION:
;megacorpone.com.               IN      AXFR

;; ANSWER SECTION:
megacorpone.com.        3600    IN      SOA     ns1.megacorpone.com. admin.megacorpone.com. 202406180 28800 7200 2419200 300
megacorpone.com.        3600    IN      NS      ns1.megacorpone.com.
megacorpone.com.        3600    IN      MX      10 mail.megacorpone.com.
megacorpone.com.        3600    IN      TXT     "Try Harder"
www.megacorpone.com.    3600    IN      A       10.0.0.5
www.megacorpone.com.    3600    IN      A       10.0.0.6
mail.megacorpone.com.   3600    IN      A       10.0.0.25
intranet.megacorpone.com. 3600  IN      CNAME   www.megacorpone.com.
ipv6.megacorpone.com.   3600    IN      AAAA    2001:db8::25

Received 282 bytes from 10.0.0.53#53 in 12 ms
`

type graphSnapshot struct {
	hosts     []string
	addresses []string
	hostAddrs []graph.HostAddressEdge
	aliases   []graph.AliasEdge
}

func newTestProcessor(t *testing.T) (*Processor, *graph.Memory) {
	t.Helper()
	sc, err := scope.New([]string{"megacorpone.com"})
	require.NoError(t, err)
	store := graph.NewMemory(sc)
	return NewProcessor(store, sc), store
}

func newExecution(t *testing.T) *history.Execution {
	t.Helper()
	execution, created := history.NewLog().GetOrCreate([]string{"host", "-t", "axfr", "megacorpone.com"})
	require.True(t, created)
	return execution
}

func snapshot(t *testing.T, store graph.Store) graphSnapshot {
	t.Helper()
	var snap graphSnapshot
	require.NoError(t, store.IterateHostNames(func(node *graph.HostName) error {
		snap.hosts = append(snap.hosts, node.Name)
		return nil
	}))
	require.NoError(t, store.IterateAddresses(func(node *graph.Address) error {
		snap.addresses = append(snap.addresses, node.IP)
		return nil
	}))
	require.NoError(t, store.IterateHostAddressEdges(func(edge *graph.HostAddressEdge) error {
		snap.hostAddrs = append(snap.hostAddrs, *edge)
		return nil
	}))
	require.NoError(t, store.IterateAliasEdges(func(edge *graph.AliasEdge) error {
		snap.aliases = append(snap.aliases, *edge)
		return nil
	}))
	sort.Strings(snap.hosts)
	sort.Strings(snap.addresses)
	sort.Slice(snap.hostAddrs, func(i, j int) bool {
		a, b := snap.hostAddrs[i], snap.hostAddrs[j]
		return a.Host+a.IP+string(a.Type) < b.Host+b.IP+string(b.Type)
	})
	sort.Slice(snap.aliases, func(i, j int) bool {
		return snap.aliases[i].Source < snap.aliases[j].Source
	})
	return snap
}

func TestProcessSampleZone(t *testing.T) {
	processor, store := newTestProcessor(t)
	execution := newExecution(t)

	require.NoError(t, processor.Process(execution, strings.NewReader(sampleZone)))
	require.True(t, execution.Hidden(), "raw zone output must be flagged as hidden")

	snap := snapshot(t, store)
	require.Equal(t, []string{
		"admin.megacorpone.com",
		"intranet.megacorpone.com",
		"ipv6.megacorpone.com",
		"mail.megacorpone.com",
		"megacorpone.com",
		"ns1.megacorpone.com",
		"www.megacorpone.com",
	}, snap.hosts)
	require.Equal(t, []string{"10.0.0.25", "10.0.0.5", "10.0.0.6", "2001:db8::25"}, snap.addresses)
	require.Equal(t, []graph.HostAddressEdge{
		{Host: "ipv6.megacorpone.com", IP: "2001:db8::25", Type: graph.MappingAAAA},
		{Host: "mail.megacorpone.com", IP: "10.0.0.25", Type: graph.MappingA},
		{Host: "www.megacorpone.com", IP: "10.0.0.5", Type: graph.MappingA},
		{Host: "www.megacorpone.com", IP: "10.0.0.6", Type: graph.MappingA},
	}, snap.hostAddrs)
	require.Equal(t, []graph.AliasEdge{
		{Source: "intranet.megacorpone.com", Target: "www.megacorpone.com"},
	}, snap.aliases)
}

func TestProcessIdempotent(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Process(newExecution(t), strings.NewReader(sampleZone)))
	once := snapshot(t, store)

	require.NoError(t, processor.Process(newExecution(t), strings.NewReader(sampleZone)))
	twice := snapshot(t, store)

	require.Equal(t, once, twice, "merging the same output twice must not create duplicates")
}

func TestProcessOrderIndependent(t *testing.T) {
	processor, store := newTestProcessor(t)
	require.NoError(t, processor.Process(newExecution(t), strings.NewReader(sampleZone)))
	expected := snapshot(t, store)

	lines := strings.Split(strings.TrimRight(sampleZone, "\n"), "\n")
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		rng.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })

		permutedProcessor, permutedStore := newTestProcessor(t)
		require.NoError(t, permutedProcessor.Process(newExecution(t), strings.NewReader(strings.Join(lines, "\n"))))
		require.Equal(t, expected, snapshot(t, permutedStore), "line order must not change the final graph")
	}
}

func TestMergeGarbageLineNoMutation(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("garbage line with no structure"))

	snap := snapshot(t, store)
	require.Empty(t, snap.hosts)
	require.Empty(t, snap.addresses)
	require.Empty(t, snap.hostAddrs)
	require.Empty(t, snap.aliases)
}

func TestMergeInvalidAddressKeepsOwner(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("www.megacorpone.com. 3600 IN A 10.0.0.999"))

	snap := snapshot(t, store)
	require.Equal(t, []string{"www.megacorpone.com"}, snap.hosts, "owner must survive invalid content")
	require.Empty(t, snap.addresses)
	require.Empty(t, snap.hostAddrs)
}

func TestMergeAddressTypeMismatch(t *testing.T) {
	processor, store := newTestProcessor(t)

	// v6 literal in an A record and v4 literal in an AAAA record are
	// both rejected
	require.NoError(t, processor.Merge("www.megacorpone.com. 3600 IN A 2001:db8::1"))
	require.NoError(t, processor.Merge("www.megacorpone.com. 3600 IN AAAA 10.0.0.5"))

	snap := snapshot(t, store)
	require.Equal(t, []string{"www.megacorpone.com"}, snap.hosts)
	require.Empty(t, snap.addresses)
	require.Empty(t, snap.hostAddrs)
}

func TestMergeOutOfScopeOwnerNoMutation(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("www.other.org. 3600 IN A 10.0.0.5"))

	snap := snapshot(t, store)
	require.Empty(t, snap.hosts)
	require.Empty(t, snap.addresses)
}

func TestMergeCNAMEOutOfScopeTargetExclusive(t *testing.T) {
	processor, store := newTestProcessor(t)

	// the target is rejected, and even though the content contains an
	// in-scope substring the free-text extraction path must not run
	// for CNAME records
	require.NoError(t, processor.Merge("alias.megacorpone.com. 3600 IN CNAME bad..megacorpone.com."))

	snap := snapshot(t, store)
	require.Equal(t, []string{"alias.megacorpone.com"}, snap.hosts)
	require.Empty(t, snap.aliases)
}

func TestMergeCNAMEInScope(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("alias.megacorpone.com. 3600 IN CNAME canonical.megacorpone.com."))

	snap := snapshot(t, store)
	require.Equal(t, []string{"alias.megacorpone.com", "canonical.megacorpone.com"}, snap.hosts)
	require.Equal(t, []graph.AliasEdge{
		{Source: "alias.megacorpone.com", Target: "canonical.megacorpone.com"},
	}, snap.aliases)
}

func TestMergeMXCreatesNodeWithoutEdge(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("megacorpone.com. 3600 IN MX 10 mail.megacorpone.com."))

	snap := snapshot(t, store)
	require.Equal(t, []string{"mail.megacorpone.com", "megacorpone.com"}, snap.hosts)
	require.Empty(t, snap.hostAddrs)
	require.Empty(t, snap.aliases)
}

func TestMergeUnknownTypeOwnerOnly(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge("www.megacorpone.com. 3600 IN DNSKEY 257 3 8 AwEAAag= other.megacorpone.com"))

	snap := snapshot(t, store)
	require.Equal(t, []string{"www.megacorpone.com"}, snap.hosts, "unknown types must not mutate beyond the owner")
}

func TestMergeEmptyContentOwnerOnly(t *testing.T) {
	processor, store := newTestProcessor(t)

	// the lone dot parses as content and trims to nothing
	require.NoError(t, processor.Merge("www.megacorpone.com. 3600 IN TXT ."))

	snap := snapshot(t, store)
	require.Equal(t, []string{"www.megacorpone.com"}, snap.hosts, "empty content must still yield the owner")
	require.Empty(t, snap.addresses)
	require.Empty(t, snap.hostAddrs)
	require.Empty(t, snap.aliases)
}

// failingStore wraps a working store and fails selected operations so
// that persistence failures can be simulated.
type failingStore struct {
	graph.Store
	hostErr   error
	addrErr   error
	hostCalls int
}

func (f *failingStore) GetOrCreateHostName(name string) (*graph.HostName, bool, error) {
	f.hostCalls++
	if f.hostErr != nil {
		return nil, false, f.hostErr
	}
	return f.Store.GetOrCreateHostName(name)
}

func (f *failingStore) GetOrCreateAddress(literal string) (*graph.Address, bool, error) {
	if f.addrErr != nil {
		return nil, false, f.addrErr
	}
	return f.Store.GetOrCreateAddress(literal)
}

func TestMergeStoreFailurePropagates(t *testing.T) {
	sc, err := scope.New([]string{"megacorpone.com"})
	require.NoError(t, err)
	broken := errors.New("leveldb: closed")

	// owner resolution failure
	store := &failingStore{Store: graph.NewMemory(sc), hostErr: broken}
	processor := NewProcessor(store, sc)
	require.ErrorIs(t, processor.Merge("www.megacorpone.com. 3600 IN A 10.0.0.5"), broken)

	// address node failure after a healthy owner merge
	store = &failingStore{Store: graph.NewMemory(sc), addrErr: broken}
	processor = NewProcessor(store, sc)
	require.ErrorIs(t, processor.Merge("www.megacorpone.com. 3600 IN A 10.0.0.5"), broken)
}

func TestProcessStopsOnStoreFailure(t *testing.T) {
	sc, err := scope.New([]string{"megacorpone.com"})
	require.NoError(t, err)
	broken := errors.New("leveldb: closed")

	store := &failingStore{Store: graph.NewMemory(sc), hostErr: broken}
	processor := NewProcessor(store, sc)

	require.ErrorIs(t, processor.Process(newExecution(t), strings.NewReader(sampleZone)), broken)
	require.Equal(t, 1, store.hostCalls, "processing must stop at the first store failure")
}

func TestMergeTXTExtractsEmbeddedNames(t *testing.T) {
	processor, store := newTestProcessor(t)

	require.NoError(t, processor.Merge(`megacorpone.com. 3600 IN TXT "v=spf1 include:spf.megacorpone.com a:relay.megacorpone.com -all"`))

	snap := snapshot(t, store)
	require.Equal(t, []string{"megacorpone.com", "relay.megacorpone.com", "spf.megacorpone.com"}, snap.hosts)
	require.Empty(t, snap.hostAddrs)
	require.Empty(t, snap.aliases)
}
