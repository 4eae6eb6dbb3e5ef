package words

import (
	"bufio"
	_ "embed"
	"io"
	"math/rand"
	"strings"
	"sync"
)

//go:embed words.txt
var embedded string

// Corpus is an in-memory word list grouped by length.
type Corpus struct {
	byLength map[int][]string
	all      map[string]struct{}
}

var (
	embeddedOnce   sync.Once
	embeddedCorpus *Corpus
)

// Embedded returns the corpus compiled into the binary.
func Embedded() *Corpus {
	embeddedOnce.Do(func() {
		embeddedCorpus = LoadCorpus(strings.NewReader(embedded))
	})
	return embeddedCorpus
}

// LoadCorpus reads one word per line. Blank lines, '#' comments and words
// outside 5..8 letters are skipped.
func LoadCorpus(r io.Reader) *Corpus {
	c := &Corpus{byLength: make(map[int][]string), all: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") || !isAlpha(w) || len(w) < 5 || len(w) > 8 {
			continue
		}
		if _, dup := c.all[w]; dup {
			continue
		}
		c.all[w] = struct{}{}
		c.byLength[len(w)] = append(c.byLength[len(w)], w)
	}
	return c
}

func (c *Corpus) Random(length int) (string, bool) {
	list := c.byLength[length]
	if len(list) == 0 {
		return "", false
	}
	return list[rand.Intn(len(list))], true
}

func (c *Corpus) Contains(word string) bool {
	_, ok := c.all[strings.ToUpper(word)]
	return ok
}

func (c *Corpus) Len() int { return len(c.all) }
