package rpcclient

import (
	"fmt"
	"strings"
)

// URLSchemePreference defines URL scheme preferences for RPC connections.
type URLSchemePreference int

const (
	// URLSchemePreferenceNone uses HTTP when available and falls back to WS.
	URLSchemePreferenceNone URLSchemePreference = iota
	URLSchemePreferenceWS
	URLSchemePreferenceHTTP
)

// String implements fmt.Stringer.
func (u URLSchemePreference) String() string {
	switch u {
	case URLSchemePreferenceWS:
		return "ws"
	case URLSchemePreferenceHTTP:
		return "http"
	default:
		return "none"
	}
}

// URLSchemePreferenceFromString converts a string to URLSchemePreference.
func URLSchemePreferenceFromString(s string) (URLSchemePreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return URLSchemePreferenceNone, nil
	case "ws", "wss":
		return URLSchemePreferenceWS, nil
	case "http", "https":
		return URLSchemePreferenceHTTP, nil
	default:
		return URLSchemePreferenceNone, fmt.Errorf("unknown URL scheme preference %q", s)
	}
}

// RPC represents a single RPC endpoint configuration.
type RPC struct {
	Name               string
	WSURL              string
	HTTPURL            string
	PreferredURLScheme URLSchemePreference
}

// ToEndpoint returns the endpoint to dial based on the preferred URL scheme.
func (r RPC) ToEndpoint() (string, error) {
	switch {
	case r.PreferredURLScheme == URLSchemePreferenceWS && r.WSURL != "":
		return r.WSURL, nil
	case r.HTTPURL != "":
		return r.HTTPURL, nil
	case r.WSURL != "":
		return r.WSURL, nil
	default:
		return "", fmt.Errorf("RPC %q has no endpoint URL", r.Name)
	}
}

// RPCConfig is the set of RPCs for one chain. The first healthy RPC becomes the primary
// and the rest are kept as backups.
type RPCConfig struct {
	// ChainName labels log lines. Optional.
	ChainName string
	RPCs      []RPC
}
