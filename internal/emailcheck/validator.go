package emailcheck

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Resolver is the DNS seam for the liveness stage.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// NewNetResolver returns the stdlib-backed Resolver used outside tests.
func NewNetResolver() Resolver {
	return netResolver{r: net.DefaultResolver}
}

type netResolver struct {
	r *net.Resolver
}

func (n netResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return n.r.LookupHost(ctx, host)
}

func (n netResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	return n.r.LookupMX(ctx, name)
}

// Config tunes the pipeline. Nil tables select the built-in defaults.
type Config struct {
	ResolveTimeout    time.Duration
	RequireMX         bool
	SkipLiveness      bool
	TypoCorrections   map[string]string
	DisposableDomains []string
}

// Verdict is the pipeline outcome. Normalized is populated whenever the
// input survived stage 0, regardless of validity.
type Verdict struct {
	Valid      bool
	Normalized string
	Reason     string
	Suggestion string
}

// Validator runs the four-stage pipeline.
type Validator struct {
	typos      map[string]string
	disposable map[string]struct{}
	resolver   Resolver
	timeout    time.Duration
	requireMX  bool
	skipLive   bool
}

// New creates a Validator. A nil resolver means the stdlib resolver.
func New(cfg Config, resolver Resolver) *Validator {
	typoSrc := cfg.TypoCorrections
	if typoSrc == nil {
		typoSrc = DefaultTypoCorrections()
	}
	// Addresses are lowercased before lookup; a caller's table must match
	// regardless of the case it was written in.
	typos := make(map[string]string, len(typoSrc))
	for k, v := range typoSrc {
		typos[strings.ToLower(k)] = strings.ToLower(v)
	}
	domains := cfg.DisposableDomains
	if domains == nil {
		domains = DefaultDisposableDomains()
	}
	disposable := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		disposable[strings.ToLower(d)] = struct{}{}
	}
	if resolver == nil {
		resolver = NewNetResolver()
	}
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Validator{
		typos:      typos,
		disposable: disposable,
		resolver:   resolver,
		timeout:    timeout,
		requireMX:  cfg.RequireMX,
		skipLive:   cfg.SkipLiveness,
	}
}

// Validate runs the full pipeline. It never returns an error: a DNS failure
// is a rejection of the address, not a failure of the check.
func (v *Validator) Validate(ctx context.Context, email string) Verdict {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Verdict{Reason: "Email is required"}
	}
	if len(email) > maxEmailLength {
		return Verdict{Normalized: email, Reason: "Email address too long"}
	}

	if !emailPattern.MatchString(email) {
		return Verdict{Normalized: email, Reason: "Invalid email format. Please check for typos."}
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" {
		return Verdict{Normalized: email, Reason: "Invalid email format"}
	}

	if corrected, ok := v.typos[domain]; ok {
		suggestion := local + "@" + corrected
		return Verdict{
			Normalized: email,
			Reason:     fmt.Sprintf("Did you mean %s?", suggestion),
			Suggestion: suggestion,
		}
	}

	if _, ok := v.disposable[domain]; ok {
		return Verdict{
			Normalized: email,
			Reason:     "Temporary email addresses are not allowed. Please use your regular email.",
		}
	}

	if !v.skipLive && !v.domainAlive(ctx, domain) {
		return Verdict{
			Normalized: email,
			Reason:     fmt.Sprintf("The domain '%s' doesn't appear to exist. Please check your email address.", domain),
		}
	}

	return Verdict{Valid: true, Normalized: email}
}

func (v *Validator) domainAlive(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if v.requireMX {
		records, err := v.resolver.LookupMX(ctx, domain)
		return err == nil && len(records) > 0
	}

	addrs, err := v.resolver.LookupHost(ctx, domain)
	return err == nil && len(addrs) > 0
}
