package net

import (
	"testing"
	"time"
)

const testSecret = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	tok, err := issuer.Issue(42, "ayaka")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	aid, name, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if aid != 42 || name != "ayaka" {
		t.Fatalf("Verify = %d, %q, want 42, ayaka", aid, name)
	}
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	a, err := NewTokenIssuer("", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	b, err := NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	tok, err := a.Issue(1, "drifter")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := b.Verify(tok); err == nil {
		t.Fatal("Verify with a different secret = nil error, want failure")
	}
}

func TestTokenExpires(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	tok, err := issuer.Issue(7, "late")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := issuer.Verify(tok); err == nil {
		t.Fatal("Verify of expired token = nil error, want failure")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, _, err := issuer.Verify("definitely.not.ajwt"); err == nil {
		t.Fatal("Verify of garbage = nil error, want failure")
	}
}

func TestNewTokenIssuerBadHex(t *testing.T) {
	if _, err := NewTokenIssuer("zz", time.Hour); err == nil {
		t.Fatal("NewTokenIssuer with bad hex = nil error, want failure")
	}
}
