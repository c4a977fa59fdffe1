package report

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
)

var accountIDPattern = regexp.MustCompile(`\b\d{12}\b`)

// Anonymizer replaces AWS account ids with random stand-ins. The same real id always maps to the
// same stand-in for the lifetime of the Anonymizer. A nil or disabled Anonymizer returns its
// input unchanged.
type Anonymizer struct {
	enabled bool

	mu           sync.Mutex
	replacements map[string]string
	used         map[string]struct{}
	random       func() int64
}

// NewAnonymizer cria um anonimizador; quando enabled é false ele não altera nada.
func NewAnonymizer(enabled bool) *Anonymizer {
	return &Anonymizer{
		enabled:      enabled,
		replacements: make(map[string]string),
		used:         make(map[string]struct{}),
		random:       func() int64 { return rand.Int64N(1_000_000_000_000) },
	}
}

// Enabled reports whether the anonymizer rewrites its input.
func (a *Anonymizer) Enabled() bool {
	return a != nil && a.enabled
}

// Sanitize replaces every 12-digit account id in s.
func (a *Anonymizer) Sanitize(s string) string {
	if !a.Enabled() || s == "" {
		return s
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return accountIDPattern.ReplaceAllStringFunc(s, a.replacementLocked)
}

func (a *Anonymizer) replacementLocked(accountID string) string {
	if r, ok := a.replacements[accountID]; ok {
		return r
	}
	for {
		candidate := fmt.Sprintf("%012d", a.random())
		if _, taken := a.used[candidate]; taken || candidate == accountID {
			continue
		}
		a.replacements[accountID] = candidate
		a.used[candidate] = struct{}{}
		return candidate
	}
}
