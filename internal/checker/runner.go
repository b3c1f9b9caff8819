package checker

import (
	"context"

	"github.com/faanross/m365dns/internal/compare"
	"github.com/faanross/m365dns/internal/config"
	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
	"github.com/faanross/m365dns/internal/score"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DomainResult is the outcome for one input domain. Err is set only when
// the expected-record provider could not produce records for the domain;
// record-level faults are contained inside the assessment instead.
type DomainResult struct {
	Domain     string
	Assessment *score.Assessment
	Err        error
}

// Runner evaluates a batch of domains against an expected-record provider
type Runner struct {
	Provider records.Provider
	Resolver dnsquery.Resolver
	Workers  int
	Checks   config.ChecksConfig
	Log      zerolog.Logger
}

// Run evaluates every domain and returns one result per input domain, in
// input order. Domains are evaluated concurrently up to the worker limit;
// each result is written into its pre-sized slot so ordering stays
// deterministic regardless of completion order.
func (r *Runner) Run(ctx context.Context, domains []string) []DomainResult {
	results := make([]DomainResult, len(domains))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, domain := range domains {
		i, domain := i, domain
		g.Go(func() error {
			results[i] = r.checkDomain(gctx, domain)
			return nil
		})
	}

	// Workers never return errors; per-domain faults are data
	_ = g.Wait()

	return results
}

// checkDomain runs the full comparison and scoring pass for one domain
func (r *Runner) checkDomain(ctx context.Context, domain string) DomainResult {
	domain = records.CanonicalHost(domain)

	expected, err := r.Provider.Records(domain)
	if err != nil {
		// A provider fault skips the domain but never the batch
		r.Log.Warn().Str("domain", domain).Err(err).Msg("no expected records for domain, skipping")
		return DomainResult{Domain: domain, Err: err}
	}

	comparisons := make([]compare.Result, 0, len(expected))
	for _, rec := range expected {
		answers, qerr := r.Resolver.Lookup(ctx, rec.FQDN(), rec.Type)
		if qerr != nil {
			r.Log.Debug().Str("fqdn", rec.FQDN()).Str("type", string(rec.Type)).Err(qerr).Msg("query fault")
		}
		comparisons = append(comparisons, compare.Compare(rec, answers, qerr))
	}

	aux := r.auxChecks(ctx, domain)
	assessment := score.Score(domain, comparisons, aux)

	return DomainResult{Domain: domain, Assessment: &assessment}
}

// auxChecks runs the requested auxiliary categories in a fixed order so
// critical actions and recommendations land in a stable sequence
func (r *Runner) auxChecks(ctx context.Context, domain string) []score.Check {
	checker := score.Checker{Resolver: r.Resolver}

	var aux []score.Check
	if r.Checks.SPF {
		aux = append(aux, checker.CheckSPF(ctx, domain))
	}
	if r.Checks.DKIM {
		aux = append(aux, checker.CheckDKIM(ctx, domain))
	}
	if r.Checks.DMARC {
		aux = append(aux, checker.CheckDMARC(ctx, domain))
	}
	if r.Checks.Deprecated {
		aux = append(aux, checker.CheckDeprecated(ctx, domain))
	}
	return aux
}
