package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	passwords := []string{"secret1", "тест123"}

	require.NoError(t, run(&out, bcrypt.MinCost, passwords))

	var hashes []string
	for _, line := range strings.Split(out.String(), "\n") {
		if h, ok := strings.CutPrefix(line, "Hash: "); ok {
			hashes = append(hashes, h)
		}
	}
	require.Len(t, hashes, len(passwords))
	for i, h := range hashes {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte(passwords[i])))
	}
}

func TestRun_PasswordTooLong(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, bcrypt.MinCost, []string{strings.Repeat("x", 100)})
	assert.Error(t, err)
}
