package axfr

import (
	"bufio"
	"io"

	"github.com/projectdiscovery/gologger"
	iputil "github.com/projectdiscovery/utils/ip"

	"github.com/zonehound/zonehound/internal/history"
	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/parser"
)

// DomainExtractor finds host name candidates embedded in free text.
// The matching rules are heuristic and injected so they can evolve
// independently of record classification.
type DomainExtractor interface {
	ExtractDomains(text string) []string
}

// Processor classifies parsed resource records and merges the graph
// entities they imply into the store. Zone content is untrusted, so
// every derived name and address is validated before it is stored.
type Processor struct {
	store     graph.Store
	extractor DomainExtractor
}

// NewProcessor creates a processor writing to the given store.
func NewProcessor(store graph.Store, extractor DomainExtractor) *Processor {
	return &Processor{store: store, extractor: extractor}
}

// Process consumes the complete captured output of one zone transfer
// execution, line by line in file order. Malformed or unexpected
// lines are reduced to debug diagnostics and never abort processing
// of the remaining lines; only store failures are returned.
func (p *Processor) Process(execution *history.Execution, reader io.Reader) error {
	// Zone dumps are bulk machine output, keep them out of reports.
	execution.Hide()

	scanner := bufio.NewScanner(reader)
	// TXT records can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := p.Merge(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Merge parses and merges a single line of zone transfer output. A
// line that fails validation never partially mutates the graph beyond
// the nodes already created for it.
func (p *Processor) Merge(line string) error {
	record, ok := parser.ParseLine(line)
	if !ok {
		gologger.Debug().Msgf("skipping unparseable line: %s\n", line)
		return nil
	}

	// The owner is registered unconditionally before any type-specific
	// handling, so a record with bad content still yields its owner.
	owner, ok, err := p.store.GetOrCreateHostName(record.Name)
	if err != nil {
		return err
	}
	if !ok {
		gologger.Debug().Msgf("ignoring host name due to invalid domain in line: %s\n", line)
		return nil
	}

	recordType, known := parser.ParseRecordType(record.Type)
	if !known {
		gologger.Debug().Msgf("ignoring unsupported record type %q in line: %s\n", record.Type, line)
		return nil
	}
	if record.Content == "" {
		return nil
	}

	switch recordType {
	case parser.TypeA, parser.TypeAAAA:
		return p.mergeAddress(line, owner, recordType, record.Content)
	case parser.TypeCNAME:
		// A CNAME with a rejected target produces no alias edge and is
		// never scanned for embedded domains either.
		return p.mergeAlias(line, owner, record.Content)
	default:
		return p.mergeEmbedded(line, record.Content)
	}
}

// mergeAddress handles A and AAAA records: validate the literal
// against the record type, then create-or-fetch the address node and
// the typed host-to-address edge.
func (p *Processor) mergeAddress(line string, owner *graph.HostName, recordType parser.RecordType, content string) error {
	mapping := graph.MappingA
	valid := iputil.IsIPv4(content)
	if recordType == parser.TypeAAAA {
		mapping = graph.MappingAAAA
		valid = iputil.IsIPv6(content)
	}
	if !valid {
		gologger.Debug().Msgf("ignoring host due to invalid IP address in line: %s\n", line)
		return nil
	}

	address, ok, err := p.store.GetOrCreateAddress(content)
	if err != nil {
		return err
	}
	if !ok {
		gologger.Debug().Msgf("ignoring host due to invalid IP address in line: %s\n", line)
		return nil
	}
	return p.store.GetOrCreateHostAddressEdge(owner, address, mapping)
}

// mergeAlias handles CNAME records: validate the target as an
// in-scope host name and record the directed alias edge.
func (p *Processor) mergeAlias(line string, owner *graph.HostName, content string) error {
	target, ok, err := p.store.GetOrCreateHostName(content)
	if err != nil {
		return err
	}
	if !ok {
		gologger.Debug().Msgf("ignoring host name due to invalid domain in line: %s\n", line)
		return nil
	}
	return p.store.GetOrCreateAliasEdge(owner, target)
}

// mergeEmbedded handles all other recognized record types: NS, MX and
// TXT style contents embed host names without a rigid grammar, so the
// content is scanned for in-scope domain substrings. Being named in
// DNS output is the signal itself, no edges are recorded.
func (p *Processor) mergeEmbedded(line, content string) error {
	for _, candidate := range p.extractor.ExtractDomains(content) {
		_, ok, err := p.store.GetOrCreateHostName(candidate)
		if err != nil {
			return err
		}
		if !ok {
			gologger.Debug().Msgf("ignoring host name due to invalid domain in line: %s\n", line)
		}
	}
	return nil
}
