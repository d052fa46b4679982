package axfr

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/projectdiscovery/dnsx/libs/dnsx"
	"github.com/projectdiscovery/gologger"
	ioutil "github.com/projectdiscovery/utils/io"
	"github.com/remeh/sizedwaitgroup"

	"github.com/zonehound/zonehound/pkg/graph"
)

// WriteOutput writes the host names discovered during the run to the
// configured output file and to the screen. When trusted resolvers
// are configured, each name is verified to still resolve before it is
// reported.
func (c *Client) WriteOutput() error {
	var err error
	var output *os.File
	var safeWriter *ioutil.SafeWriter
	var w *bufio.Writer

	if c.options.OutputFile != "" {
		output, err = os.Create(c.options.OutputFile)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		w = bufio.NewWriter(output)
		safeWriter, err = ioutil.NewSafeWriter(w)
		if err != nil {
			return fmt.Errorf("could not create safe writer: %w", err)
		}
	}

	// if trusted resolvers are specified verify the results
	var dnsResolver *dnsx.DNSX
	if len(c.options.TrustedResolvers) > 0 {
		gologger.Info().Msgf("Trusted resolvers specified, verifying results\n")
		options := dnsx.DefaultOptions
		options.BaseResolvers = withDefaultPort(c.options.TrustedResolvers)
		if c.options.Retries > 0 {
			options.MaxRetries = c.options.Retries
		}
		dnsResolver, err = dnsx.New(options)
		if err != nil {
			return fmt.Errorf("could not create dns resolver: %w", err)
		}
	}

	var reportedCount int64

	swg := sizedwaitgroup.New(c.options.Threads)
	iterErr := c.store.IterateHostNames(func(node *graph.HostName) error {
		swg.Add()
		go func(hostname string) {
			defer swg.Done()

			if dnsResolver != nil {
				resp, err := dnsResolver.QueryOne(hostname)
				if err != nil || (len(resp.A) == 0 && len(resp.AAAA) == 0 && len(resp.CNAME) == 0) {
					gologger.Debug().Msgf("not resolved with trusted resolver - skipping: %s\n", hostname)
					return
				}
			}

			var buffer strings.Builder
			if c.options.Json {
				hostnameJson, err := json.Marshal(map[string]interface{}{"hostname": hostname})
				if err != nil {
					gologger.Error().Msgf("could not marshal output as json: %v\n", err)
					return
				}
				buffer.Write(hostnameJson)
				buffer.WriteString("\n")
			} else {
				buffer.WriteString(hostname)
				buffer.WriteString("\n")
			}
			data := buffer.String()

			if safeWriter != nil {
				_, _ = safeWriter.Write([]byte(data))
			}
			gologger.Silent().Msgf("%s", data)
			atomic.AddInt64(&reportedCount, 1)

			if c.options.OnResult != nil {
				c.options.OnResult(hostname)
			}
		}(node.Name)
		return nil
	})

	swg.Wait()

	if iterErr != nil {
		return fmt.Errorf("could not iterate host names: %w", iterErr)
	}

	c.logSummary(reportedCount)

	if output != nil {
		_ = w.Flush()
		_ = output.Close()
	}
	return nil
}

// logSummary logs what the merged graph now contains.
func (c *Client) logSummary(reported int64) {
	var hosts, addresses, mappings, aliases int
	_ = c.store.IterateHostNames(func(*graph.HostName) error { hosts++; return nil })
	_ = c.store.IterateAddresses(func(*graph.Address) error { addresses++; return nil })
	_ = c.store.IterateHostAddressEdges(func(*graph.HostAddressEdge) error { mappings++; return nil })
	_ = c.store.IterateAliasEdges(func(*graph.AliasEdge) error { aliases++; return nil })

	gologger.Info().Msgf("Graph contains %d host names, %d addresses, %d address mappings, %d aliases\n",
		hosts, addresses, mappings, aliases)
	gologger.Info().Msgf("Total reported: %d\n", reported)
}
