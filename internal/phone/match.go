package phone

import (
	"slices"
	"strings"
)

// Match is the single descriptor matching policy. Every query token is
// tested for membership in set; a leading '!' negates the test for that
// token. With exact=true all tokens must pass (a conjunctive class like
// [vowel, !back]); otherwise one passing token suffices.
//
// Empty token lists match nothing.
func Match(tokens, set []string, exact bool) bool {
	if len(tokens) == 0 {
		return false
	}

	for _, tok := range tokens {
		negated := strings.HasPrefix(tok, "!")
		if negated {
			tok = tok[1:]
		}
		ok := slices.Contains(set, tok) != negated
		if exact && !ok {
			return false
		}
		if !exact && ok {
			return true
		}
	}
	return exact
}
