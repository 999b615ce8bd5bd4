package u256

import "testing"

func TestAddCommutative(t *testing.T) {
	a := FromU64(123456789)
	b := FromU64(987654321)
	if !Add(a, b).Eq(Add(b, a)) {
		t.Fatalf("add not commutative")
	}
}

func TestSubSelfIsZero(t *testing.T) {
	a := FromU64(42)
	if !Sub(a, a).IsZero() {
		t.Fatalf("a-a != 0")
	}
}

func TestMulIdentities(t *testing.T) {
	a := FromU64(777)
	if !Mul(a, Zero).IsZero() {
		t.Fatalf("a*0 != 0")
	}
	if !Mul(a, One).Eq(a) {
		t.Fatalf("a*1 != a")
	}
}

func TestAddWraps(t *testing.T) {
	got := Add(Max, One)
	if !got.IsZero() {
		t.Fatalf("MAX+1 should wrap to 0, got %s", got)
	}
}

func TestDivModIdentity(t *testing.T) {
	a := FromU64(1000000007)
	b := FromU64(97)
	q := Div(a, b)
	r := Mod(a, b)
	if !Add(Mul(q, b), r).Eq(a) {
		t.Fatalf("division identity failed")
	}
}

func TestDivByZero(t *testing.T) {
	if !Div(FromU64(10), Zero).IsZero() {
		t.Fatalf("div by zero must yield 0")
	}
	if !Mod(FromU64(10), Zero).IsZero() {
		t.Fatalf("mod by zero must yield 0")
	}
}

func TestSDivMinByMinusOne(t *testing.T) {
	minVal := Lsh(One, 255) // 2^255 == most negative two's-complement value
	minusOne := Max
	got := SDiv(minVal, minusOne)
	if !got.Eq(minVal) {
		t.Fatalf("MIN/-1 should be MIN, got %s", got)
	}
	gotMod := SMod(minVal, minusOne)
	if !gotMod.IsZero() {
		t.Fatalf("MIN %% -1 should be 0, got %s", gotMod)
	}
}

func TestAddModMulModZeroOrOneModulus(t *testing.T) {
	a, b := FromU64(5), FromU64(7)
	if !AddMod(a, b, Zero).IsZero() {
		t.Fatalf("addmod with N=0 should be 0")
	}
	if !AddMod(a, b, One).IsZero() {
		t.Fatalf("addmod with N=1 should be 0")
	}
	if !MulMod(a, b, Zero).IsZero() {
		t.Fatalf("mulmod with N=0 should be 0")
	}
}

func TestShiftOverflow(t *testing.T) {
	if !Lsh(One, 256).IsZero() {
		t.Fatalf("shl >= 256 should be 0")
	}
	if !Rsh(Max, 256).IsZero() {
		t.Fatalf("shr >= 256 should be 0")
	}
}

func TestSarSignExtension(t *testing.T) {
	neg := Lsh(One, 255) // top bit set
	got := Sar(neg, 300)
	if !got.Eq(Max) {
		t.Fatalf("sar of negative with huge shift should be all-ones")
	}
	pos := FromU64(5)
	got2 := Sar(pos, 300)
	if !got2.IsZero() {
		t.Fatalf("sar of positive with huge shift should be 0")
	}
}

func TestSignExtendNoop(t *testing.T) {
	v := FromU64(0xff)
	got := SignExtend(FromU64(31), v)
	if !got.Eq(v) {
		t.Fatalf("signextend with b>=31 must not change the value")
	}
}

func TestSignExtendExtends(t *testing.T) {
	v := FromU64(0xff) // byte 0 is 0xff, a negative signed byte
	got := SignExtend(Zero, v)
	if !got.Eq(Max) {
		t.Fatalf("signextend(0, 0xff) should be all-ones, got %s", got)
	}
}

func TestByteOutOfRange(t *testing.T) {
	v := FromU64(0x1122)
	if !Byte(FromU64(32), v).IsZero() {
		t.Fatalf("byte index >= 32 should yield 0")
	}
}

func TestRoundTripBigEndian(t *testing.T) {
	x := FromU128(0xdeadbeef, 0xcafebabe)
	b := x.Bytes32()
	got := FromBigEndian(b[:])
	if !got.Eq(x) {
		t.Fatalf("round trip failed: got %s want %s", got, x)
	}
}

func TestFromBigEndianPaddedMatchesLeftPad(t *testing.T) {
	short := []byte{0x01, 0x02}
	var padded [32]byte
	copy(padded[30:], short)
	if !FromBigEndianPadded(short).Eq(FromBigEndian(padded[:])) {
		t.Fatalf("padded parse mismatch")
	}
}

func TestBitLenByteLen(t *testing.T) {
	if Zero.BitLen() != 0 || Zero.ByteLen() != 0 {
		t.Fatalf("zero should have 0 bitlen/bytelen")
	}
	v := FromU64(256) // 0x100, needs 9 bits, 2 bytes
	if v.BitLen() != 9 {
		t.Fatalf("bitlen(256) = %d, want 9", v.BitLen())
	}
	if v.ByteLen() != 2 {
		t.Fatalf("bytelen(256) = %d, want 2", v.ByteLen())
	}
}
