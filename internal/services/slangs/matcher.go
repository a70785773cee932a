package slangs

import (
	"context"
	"strings"
)

// Vocabulary reports whether a lower-cased word is a known slang word.
type Vocabulary interface {
	Contains(ctx context.Context, word string) (bool, error)
}

// WordSet is an in-memory Vocabulary.
type WordSet map[string]struct{}

// NewWordSet builds a WordSet from words. Entries are lower-cased.
func NewWordSet(words []string) WordSet {
	set := make(WordSet, len(words))
	for _, word := range words {
		set[strings.ToLower(word)] = struct{}{}
	}

	return set
}

// Contains implements Vocabulary.
func (s WordSet) Contains(_ context.Context, word string) (bool, error) {
	_, ok := s[word]
	return ok, nil
}

// MatchSlangs lower-cases the sentence, splits it on whitespace and returns every
// token found in vocab, in order, duplicates included. The result is never nil.
func MatchSlangs(ctx context.Context, vocab Vocabulary, sentence string) ([]string, error) {
	detected := make([]string, 0)

	for _, word := range strings.Fields(strings.ToLower(sentence)) {
		isSlang, err := vocab.Contains(ctx, word)
		if err != nil {
			return nil, err
		}
		if isSlang {
			detected = append(detected, word)
		}
	}

	return detected, nil
}
