package studio

import (
	"strings"

	"github.com/samber/lo"
)

// SecurityPolicy describes the Content-Security-Policy of a page.
type SecurityPolicy struct {
	AllowedScriptSrcs   []string
	DisableTrustedTypes bool
}

var baseScriptSrcs = []string{"'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net", "https://esm.sh"}

var trustedTypesPolicies = []string{"angular", "angular#unsafe-bypass", "lit-html", "highlight.js"}

// DefaultSecurityPolicy applies to every response unless a page overrides it.
var DefaultSecurityPolicy = SecurityPolicy{}

// Header renders the policy as a Content-Security-Policy header value.
func (p SecurityPolicy) Header() string {
	srcs := lo.Uniq(append(append([]string{}, baseScriptSrcs...), p.AllowedScriptSrcs...))

	var b strings.Builder
	b.WriteString("script-src ")
	b.WriteString(strings.Join(srcs, " "))
	b.WriteString("; object-src 'none'; base-uri 'self';")
	if !p.DisableTrustedTypes {
		b.WriteString(" trusted-types ")
		b.WriteString(strings.Join(trustedTypesPolicies, " "))
		b.WriteString(";")
	}
	return b.String()
}
