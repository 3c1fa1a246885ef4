package auth

import (
	"errors"
	"strings"
)

// ErrDomainRejected is returned when an email does not belong to an allowed domain.
var ErrDomainRejected = errors.New("email domain not allowed")

// DomainPolicy restricts logins to a fixed set of email domains.
type DomainPolicy struct {
	allowed map[string]struct{}
}

// NewDomainPolicy creates a policy for the given domains. Domains are matched
// case-insensitively against the part after the final "@".
func NewDomainPolicy(domains []string) *DomainPolicy {
	allowed := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(d, "@")))
		if d != "" {
			allowed[d] = struct{}{}
		}
	}
	return &DomainPolicy{allowed: allowed}
}

// Check returns ErrDomainRejected unless the email's domain is allowed.
func (p *DomainPolicy) Check(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ErrDomainRejected
	}
	domain := strings.ToLower(email[at+1:])
	if _, ok := p.allowed[domain]; !ok {
		return ErrDomainRejected
	}
	return nil
}
