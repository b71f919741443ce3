package crypto

import (
	"fmt"
	"strings"

	"github.com/sethvargo/go-diceware/diceware"
)

// credentialWords sets credential strength. Eight words off the EFF long list
// is a little over 100 bits of entropy.
const credentialWords = 8

// NewCredential generates the login credential handed to a user exactly once
// at provisioning. The service never stores it.
func NewCredential() (string, error) {
	words, err := diceware.Generate(credentialWords)
	if err != nil {
		return "", fmt.Errorf("failed to generate credential: %w", err)
	}
	return strings.Join(words, "-"), nil
}
