package config

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{name: "default cost", wantCost: DefaultBcryptCost},
		{name: "explicit cost", cost: "11", wantCost: 11},
		{name: "with pepper", cost: "10", pepper: "pep", wantCost: 10},
		{name: "cost too low", cost: "9", wantErr: true},
		{name: "cost too high", cost: "15", wantErr: true},
		{name: "non-numeric cost", cost: "high", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)
			if tt.cost == "" {
				os.Unsetenv("BCRYPT_COST")
			}

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	hash, err := cfg.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, cfg.VerifyPassword("correct horse battery", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse battery", hash))
	assert.False(t, cfg.VerifyPassword("", hash))
}

func TestPasswordConfig_SaltedHashesDiffer(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	first, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	second, err := cfg.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, cfg.VerifyPassword("same-password", first))
	assert.True(t, cfg.VerifyPassword("same-password", second))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: MinBcryptCost, Pepper: "pepper-v1"}
	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, (&PasswordConfig{BcryptCost: MinBcryptCost}).VerifyPassword("password123", hash), "hash requires the pepper")
	assert.False(t, (&PasswordConfig{BcryptCost: MinBcryptCost, Pepper: "pepper-v2"}).VerifyPassword("password123", hash), "rotated pepper invalidates hashes")
}

func TestPasswordConfig_TooLongPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}
	_, err := cfg.HashPassword(strings.Repeat("a", 100))
	assert.Error(t, err, "bcrypt rejects inputs over 72 bytes")
}

func TestPasswordConfig_ConcurrentUse(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := cfg.HashPassword("concurrent")
			assert.NoError(t, err)
			assert.True(t, cfg.VerifyPassword("concurrent", hash))
		}()
	}
	wg.Wait()
}
