// Package recovery generates BIP39-style mnemonic phrases used as the
// human-manageable fallback secret for survey key wrapping, and the
// user-facing hint derived from them.
package recovery

import (
	"crypto/rand"
	"math/big"

	"github.com/checktick/surveyvault/internal/errors"
)

// ErrInvalidWordCount indicates a phrase length outside the allowed set.
var ErrInvalidWordCount = errors.Wrap(
	errors.ErrInvalidInput,
	"word count must be 12, 15, 18, 21, or 24",
)

// validWordCounts are the phrase lengths permitted by the BIP39 convention.
var validWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// GeneratePhrase returns a mnemonic of wordCount words sampled uniformly from
// the wordlist using crypto/rand. Phrases carry no checksum; they are opaque
// secret material for key derivation, not wallet seeds.
func GeneratePhrase(wordCount int) ([]string, error) {
	if !validWordCounts[wordCount] {
		return nil, ErrInvalidWordCount
	}

	max := big.NewInt(int64(len(wordlist)))
	words := make([]string, wordCount)
	for i := range words {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, errors.Wrap(err, "failed to sample wordlist")
		}
		words[i] = wordlist[n.Int64()]
	}
	return words, nil
}

// CreateHint builds the stored user-facing hint for a phrase: empty for no
// words, the word itself for one, otherwise "first...last". The hint must
// never reveal more of the phrase than its two boundary words.
func CreateHint(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return words[0] + "..." + words[len(words)-1]
	}
}
