// Package words supplies the candidate words revealed each round. The list
// is loaded from disk exactly once at startup and is immutable afterwards.
package words

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrEmptyList is returned by Next when the loaded list holds no words.
var ErrEmptyList = errors.New("word list is empty")

// Source holds the loaded word list.
type Source struct {
	list []string
}

// Load reads a newline-delimited word list. Lines are kept as-is: blanks are
// not filtered and duplicates are not deduplicated. A read failure is a
// startup-time error, not recoverable at runtime.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}

	list := strings.Split(string(data), "\n")
	log.Info().Str("path", path).Int("words", len(list)).Msg("word list loaded")
	return &Source{list: list}, nil
}

// Next returns a uniformly random word from the list, with surrounding
// whitespace trimmed. Fails explicitly when the list is empty.
func (s *Source) Next() (string, error) {
	if len(s.list) == 0 {
		return "", ErrEmptyList
	}
	return strings.TrimSpace(s.list[rand.IntN(len(s.list))]), nil
}

// Len reports the number of loaded lines.
func (s *Source) Len() int {
	return len(s.list)
}
