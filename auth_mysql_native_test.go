package mysql

import (
	"bytes"
	"crypto/sha1"
	"testing"
)

func TestScrambleNativePasswordEmptyPassword(t *testing.T) {
	scramble := make([]byte, 20)
	for i := range scramble {
		scramble[i] = byte(i)
	}
	if got := scrambleNativePassword(scramble, ""); got != nil {
		t.Fatalf("scrambleNativePassword(empty password) = %x, want nil", got)
	}
}

func TestScrambleNativePasswordProperty(t *testing.T) {
	// R XOR SHA1(password) == SHA1(scramble || SHA1(SHA1(password))).
	scramble := make([]byte, 20)
	for i := range scramble {
		scramble[i] = byte(i)
	}
	password := "test_password"

	r := scrambleNativePassword(scramble, password)
	if len(r) != 20 {
		t.Fatalf("len(response) = %d, want 20", len(r))
	}

	stage1 := sha1.Sum([]byte(password))
	hash := sha1.Sum(stage1[:])

	lhs := make([]byte, 20)
	for i := range lhs {
		lhs[i] = r[i] ^ stage1[i]
	}
	rhs := sha1.Sum(append(append([]byte(nil), scramble...), hash[:]...))

	if !bytes.Equal(lhs, rhs[:]) {
		t.Fatalf("R XOR SHA1(password) = %x, want %x", lhs, rhs)
	}
}

func TestNativePasswordPluginDisallowed(t *testing.T) {
	p := nativePasswordPlugin{}
	params := &Params{Password: "x"}
	_, err := p.start(make([]byte, 20), params, false)
	if _, ok := err.(*AuthError); !ok {
		t.Fatalf("start() err = %v, want *AuthError", err)
	}
}
