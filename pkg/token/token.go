// Copyright 2025 Conduit Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// Trigger tokens are opaque 32-character alphanumeric secrets. They are
// issued once at pipeline creation and never rotated implicitly.

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 32
)

// Exists reports whether a candidate token is already in use.
type Exists func(token string) (bool, error)

// New generates a cryptographically random trigger token.
func New() (string, error) {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate trigger token: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Issue generates a token that does not collide with any existing one.
// Collisions are vanishingly rare; the retry bound guards against a
// misbehaving exists check rather than probability.
func Issue(exists Exists) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		tok, err := New()
		if err != nil {
			return "", err
		}
		taken, err := exists(tok)
		if err != nil {
			return "", fmt.Errorf("check trigger token uniqueness: %w", err)
		}
		if !taken {
			return tok, nil
		}
	}
	return "", fmt.Errorf("could not issue a unique trigger token")
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
