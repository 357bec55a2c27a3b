package cryptoprovider

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AlgorithmCategory names one of the RFC 4253 §7.1 negotiation slots.
type AlgorithmCategory string

const (
	KexAlgorithms       AlgorithmCategory = "kex"
	HostKeyAlgorithms   AlgorithmCategory = "server_host_key"
	CipherClientServer  AlgorithmCategory = "encryption_client_to_server"
	CipherServerClient  AlgorithmCategory = "encryption_server_to_client"
	MacClientServer     AlgorithmCategory = "mac_client_to_server"
	MacServerClient     AlgorithmCategory = "mac_server_to_client"
)

// Preferences holds, per negotiation category, the client's algorithm
// names in preference order — first entry tried first. An ordered map
// keeps insertion order stable across Set/Get the way a plain map cannot,
// which matters here because RFC 4253 negotiation is order-sensitive.
type Preferences struct {
	byCategory *orderedmap.OrderedMap[AlgorithmCategory, []string]
}

// NewPreferences returns an empty preference table.
func NewPreferences() *Preferences {
	return &Preferences{byCategory: orderedmap.New[AlgorithmCategory, []string]()}
}

// Set records the preference order for a category, de-duplicating while
// preserving first occurrence.
func (p *Preferences) Set(category AlgorithmCategory, names ...string) {
	seen := make(map[string]struct{}, len(names))
	deduped := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		deduped = append(deduped, n)
	}
	p.byCategory.Set(category, deduped)
}

// Get returns the preference order for a category, or nil if unset.
func (p *Preferences) Get(category AlgorithmCategory) []string {
	names, ok := p.byCategory.Get(category)
	if !ok {
		return nil
	}
	return names
}

// Categories returns the categories that have been set, in the order they
// were first set.
func (p *Preferences) Categories() []AlgorithmCategory {
	out := make([]AlgorithmCategory, 0, p.byCategory.Len())
	for pair := p.byCategory.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// DefaultPreferences returns the preference table this repo's providers
// support, in the order the transport facade offers them during the (out of
// scope) key-exchange negotiation.
func DefaultPreferences() *Preferences {
	p := NewPreferences()
	p.Set(HostKeyAlgorithms, "ssh-ed25519", "rsa-sha2-256", "ssh-rsa")
	p.Set(CipherClientServer, "aes128-ctr", "aes128-cbc")
	p.Set(CipherServerClient, "aes128-ctr", "aes128-cbc")
	p.Set(MacClientServer, "hmac-sha2-256", "hmac-sha1")
	p.Set(MacServerClient, "hmac-sha2-256", "hmac-sha1")
	return p
}
