package vm

import "testing"

func TestAnalyzeSkipsPushImmediates(t *testing.T) {
	// PUSH1 0x5b (looks like JUMPDEST in the data) followed by a real JUMPDEST.
	code := []byte{byte(PUSH1), byte(JUMPDEST), byte(JUMPDEST)}
	a := analyze(code)
	if a.ValidJumpdest(1, code) {
		t.Fatalf("byte 1 is PUSH1's immediate data, must not be a valid jumpdest")
	}
	if !a.ValidJumpdest(2, code) {
		t.Fatalf("byte 2 is a real JUMPDEST, must be valid")
	}
}

func TestAnalyzePush0NoImmediate(t *testing.T) {
	code := []byte{byte(PUSH0), byte(JUMPDEST)}
	a := analyze(code)
	if !a.ValidJumpdest(1, code) {
		t.Fatalf("PUSH0 has no immediate bytes, offset 1 should be a real instruction")
	}
}

func TestValidJumpdestOutOfBounds(t *testing.T) {
	code := []byte{byte(JUMPDEST)}
	a := analyze(code)
	if a.ValidJumpdest(100, code) {
		t.Fatalf("out-of-bounds destination must be rejected")
	}
}

func TestValidJumpdestWrongOpcode(t *testing.T) {
	code := []byte{byte(STOP)}
	a := analyze(code)
	if a.ValidJumpdest(0, code) {
		t.Fatalf("STOP is not a JUMPDEST")
	}
}

func TestParseDelegation(t *testing.T) {
	addr := [20]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	code := append([]byte{0xef, 0x01, 0x00}, addr[:]...)
	got, ok := ParseDelegation(code)
	if !ok {
		t.Fatalf("expected a valid delegation designator")
	}
	if got.Bytes()[0] != 1 || got.Bytes()[19] != 20 {
		t.Fatalf("parsed delegation address mismatch: %x", got)
	}
}

func TestParseDelegationRejectsWrongPrefix(t *testing.T) {
	code := append([]byte{0xef, 0x01, 0x01}, make([]byte, 20)...)
	if _, ok := ParseDelegation(code); ok {
		t.Fatalf("wrong magic byte should not parse as a delegation")
	}
}

func TestParseDelegationRejectsWrongLength(t *testing.T) {
	code := []byte{0xef, 0x01, 0x00, 0x01, 0x02}
	if _, ok := ParseDelegation(code); ok {
		t.Fatalf("short code should not parse as a delegation")
	}
}

func TestParseDelegationToZeroAddressIsStillADesignator(t *testing.T) {
	code := append([]byte{0xef, 0x01, 0x00}, make([]byte, 20)...)
	addr, ok := ParseDelegation(code)
	if !ok {
		t.Fatalf("delegation to the zero address is a cleared delegation, still a designator")
	}
	if !addr.IsZero() {
		t.Fatalf("expected the zero address")
	}
}
