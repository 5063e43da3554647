package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0xab}, 32))
	svc, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("service should be configured")
	}

	sealed, err := svc.EncryptString("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("JBSWY3DPEHPK3PXP")) {
		t.Fatal("ciphertext must not contain the plaintext")
	}

	plain, err := svc.DecryptString(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("got %q", plain)
	}
}

func TestNoncesDiffer(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	svc, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := svc.Encrypt([]byte("secret"))
	b, _ := svc.Encrypt([]byte("secret"))
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same value must differ")
	}
}

func TestPassThroughWithoutKey(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key must not configure the service")
	}
	sealed, err := svc.Encrypt([]byte("plain"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if string(sealed) != "plain" {
		t.Fatalf("expected pass-through, got %q", sealed)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New(hex.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestRejectsTamperedCiphertext(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0x02}, 32))
	svc, _ := New(key)
	sealed, _ := svc.Encrypt([]byte("secret"))
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Decrypt(sealed); err == nil {
		t.Fatal("expected authentication failure")
	}
}
