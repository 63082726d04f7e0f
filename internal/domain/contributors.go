package domain

import "slices"

// ContributorSet is an insertion-ordered set of opaque identity tokens
//
// The zero value is an empty set ready to use.
type ContributorSet struct {
	tokens []string
}

func NewContributorSet(tokens ...string) ContributorSet {
	var set ContributorSet
	for _, token := range tokens {
		set = set.Add(token)
	}
	return set
}

// Add returns a set containing token. The receiver is left unchanged.
func (s ContributorSet) Add(token string) ContributorSet {
	if s.Contains(token) {
		return s
	}
	return ContributorSet{tokens: append(slices.Clip(s.tokens), token)}
}

func (s ContributorSet) Contains(token string) bool {
	return slices.Contains(s.tokens, token)
}

func (s ContributorSet) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the tokens in insertion order
func (s ContributorSet) Tokens() []string {
	return slices.Clone(s.tokens)
}

// Union keeps the receiver's order and appends tokens only present in other
func (s ContributorSet) Union(other ContributorSet) ContributorSet {
	result := ContributorSet{tokens: slices.Clone(s.tokens)}
	for _, token := range other.tokens {
		result = result.Add(token)
	}
	return result
}

// IsSubsetOf reports whether every token in s is in other. The empty set is a subset of any set.
func (s ContributorSet) IsSubsetOf(other ContributorSet) bool {
	for _, token := range s.tokens {
		if !other.Contains(token) {
			return false
		}
	}
	return true
}

func (s ContributorSet) Equal(other ContributorSet) bool {
	return slices.Equal(s.tokens, other.tokens)
}
