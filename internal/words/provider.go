// Package words supplies round words and validates guesses. Remote services
// are preferred; the embedded corpus and a fixed word per length keep the
// game playable when they are unreachable.
package words

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnsupportedLength = errors.New("unsupported word length")

// Source generates random words of a given length.
type Source interface {
	Random(ctx context.Context, length int) (string, error)
}

// Dictionary reports whether a word exists.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (bool, error)
}

// Cache remembers dictionary answers.
type Cache interface {
	GetValid(ctx context.Context, word string) (valid, found bool, err error)
	SetValid(ctx context.Context, word string, valid bool) error
}

var defaults = map[int]string{
	5: "CRANE",
	6: "PLANET",
	7: "JOURNEY",
	8: "DISCOVER",
}

// Provider layers a remote source and dictionary over the local corpus.
// Source, Dictionary and Cache are optional.
type Provider struct {
	Source     Source
	Dictionary Dictionary
	Cache      Cache
	Corpus     *Corpus
}

func New(src Source, dict Dictionary) *Provider {
	return &Provider{Source: src, Dictionary: dict, Corpus: Embedded()}
}

func (p *Provider) SetCache(c Cache) { p.Cache = c }

// Pick returns an upper-case word of exactly length letters.
func (p *Provider) Pick(ctx context.Context, length int) (string, error) {
	if p.Source != nil {
		w, err := p.Source.Random(ctx, length)
		if err == nil {
			w = strings.ToUpper(strings.TrimSpace(w))
			if len(w) == length && isAlpha(w) {
				return w, nil
			}
			err = fmt.Errorf("bad word %q", w)
		}
		log.Warn().Err(err).Int("length", length).Msg("word source failed, using local corpus")
	}
	if p.Corpus != nil {
		if w, ok := p.Corpus.Random(length); ok {
			return w, nil
		}
	}
	if w, ok := defaults[length]; ok {
		return w, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupportedLength, length)
}

// IsValid accepts corpus words outright, then asks the dictionary. An
// unreachable dictionary accepts the word.
func (p *Provider) IsValid(ctx context.Context, word string) bool {
	w := strings.ToUpper(strings.TrimSpace(word))
	if !isAlpha(w) {
		return false
	}
	if p.Corpus != nil && p.Corpus.Contains(w) {
		return true
	}
	if p.Dictionary == nil {
		return p.Corpus == nil
	}
	if p.Cache != nil {
		valid, found, err := p.Cache.GetValid(ctx, w)
		if err != nil {
			log.Warn().Err(err).Msg("word cache read failed")
		} else if found {
			return valid
		}
	}
	valid, err := p.Dictionary.Lookup(ctx, w)
	if err != nil {
		log.Warn().Err(err).Str("word", w).Msg("dictionary unreachable, accepting word")
		return true
	}
	if p.Cache != nil {
		if err := p.Cache.SetValid(ctx, w, valid); err != nil {
			log.Warn().Err(err).Msg("word cache write failed")
		}
	}
	return valid
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}
