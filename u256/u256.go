// Package u256 implements the EVM's 256-bit unsigned integer, wrapping
// github.com/holiman/uint256 with the wrapping/modular semantics the
// interpreter's arithmetic opcodes require.
package u256

import (
	"math/big"

	"github.com/holiman/uint256"
)

// U256 is a 256-bit integer stored as four 64-bit limbs (little-endian),
// matching the EVM word. All binary operations that are not explicitly
// "checked" wrap modulo 2^256.
type U256 struct {
	i uint256.Int
}

// Zero, One and Max are the commonly used constants. They are returned by
// value; callers must not alias their internal state across mutation.
var (
	Zero = U256{}
	One  = FromU64(1)
	Max  = func() U256 {
		var z U256
		z.i.SetAllOne()
		return z
	}()
)

// FromU64 constructs a U256 from a 64-bit unsigned value.
func FromU64(v uint64) U256 {
	var z U256
	z.i.SetUint64(v)
	return z
}

// FromU128 constructs a U256 from a 128-bit unsigned value given as
// (high, low) 64-bit halves.
func FromU128(hi, lo uint64) U256 {
	var z U256
	z.i[0] = lo
	z.i[1] = hi
	return z
}

// FromBool constructs 0 or 1.
func FromBool(b bool) U256 {
	if b {
		return One
	}
	return Zero
}

// FromBigEndian parses an exactly-32-byte big-endian buffer. Shorter or
// longer buffers are handled by FromBigEndianPadded / truncation.
func FromBigEndian(b []byte) U256 {
	var z U256
	z.i.SetBytes(b)
	return z
}

// FromBigEndianPadded parses a big-endian buffer of length <= 32, treating
// missing high-order bytes as zero. This is the PUSH-immediate convention:
// a short immediate is the low-order bytes of the full 32-byte word.
func FromBigEndianPadded(b []byte) U256 {
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	var z U256
	z.i.SetBytes(b)
	return z
}

// FromBig converts a math/big.Int, wrapping modulo 2^256.
func FromBig(b *big.Int) U256 {
	var z U256
	_, _ = z.i.SetFromBig(b)
	return z
}

// ToBig converts to a math/big.Int (always non-negative: U256 is unsigned).
func (z U256) ToBig() *big.Int {
	return z.i.ToBig()
}

// Bytes32 returns the big-endian 32-byte encoding.
func (z U256) Bytes32() [32]byte {
	return z.i.Bytes32()
}

// Bytes returns the big-endian encoding with leading zero bytes stripped
// (empty slice for zero).
func (z U256) Bytes() []byte {
	return z.i.Bytes()
}

// ToU64 returns the low 64 bits and whether the value fits in 64 bits.
func (z U256) ToU64() (uint64, bool) {
	return z.i.Uint64(), z.i.IsUint64()
}

// ToU128 returns the low 128 bits (as hi, lo) and whether the value fits.
func (z U256) ToU128() (hi, lo uint64, ok bool) {
	ok = z.i[2] == 0 && z.i[3] == 0
	return z.i[1], z.i[0], ok
}

// ToUsize returns the value as a platform usize and whether it fits
// (mirrors the EVM convention of treating out-of-range offsets/sizes as a
// fatal error rather than silently truncating).
func (z U256) ToUsize() (uint64, bool) {
	return z.ToU64()
}

// IsZero reports whether z == 0.
func (z U256) IsZero() bool { return z.i.IsZero() }

// Sign returns 0 for zero, 1 otherwise (U256 is unsigned; kept for
// symmetry with signed helpers below, which interpret the top bit).
func (z U256) Sign() int {
	if z.i.IsZero() {
		return 0
	}
	return 1
}

// Eq, Lt, Gt, Cmp are unsigned comparisons.
func (z U256) Eq(x U256) bool    { return z.i.Eq(&x.i) }
func (z U256) Lt(x U256) bool    { return z.i.Lt(&x.i) }
func (z U256) Gt(x U256) bool    { return z.i.Gt(&x.i) }
func (z U256) Cmp(x U256) int    { return z.i.Cmp(&x.i) }
func (z U256) SLt(x U256) bool   { return z.i.Slt(&x.i) }
func (z U256) SGt(x U256) bool   { return z.i.Sgt(&x.i) }

// IsNegative reports whether the top bit of the most-significant limb is
// set, i.e. the two's-complement interpretation is negative.
func (z U256) IsNegative() bool {
	return z.i[3]>>63 == 1
}

// Add, Sub, Mul wrap modulo 2^256.
func Add(a, b U256) U256 { var z U256; z.i.Add(&a.i, &b.i); return z }
func Sub(a, b U256) U256 { var z U256; z.i.Sub(&a.i, &b.i); return z }
func Mul(a, b U256) U256 { var z U256; z.i.Mul(&a.i, &b.i); return z }

// Div and Mod implement the EVM convention: division/remainder by zero is
// zero, not a panic or error.
func Div(a, b U256) U256 { var z U256; z.i.Div(&a.i, &b.i); return z }
func Mod(a, b U256) U256 { var z U256; z.i.Mod(&a.i, &b.i); return z }

// SDiv and SMod are the two's-complement signed variants. Divisor zero
// yields zero; MIN/-1 = MIN; MIN % -1 = 0; remainder takes the sign of the
// dividend. All guaranteed by uint256.Int's own EVM-faithful implementation.
func SDiv(a, b U256) U256 { var z U256; z.i.SDiv(&a.i, &b.i); return z }
func SMod(a, b U256) U256 { var z U256; z.i.SMod(&a.i, &b.i); return z }

// AddMod and MulMod compute (a op b) mod n with full intermediate
// precision; n == 0 or 1 yields 0.
func AddMod(a, b, n U256) U256 { var z U256; z.i.AddMod(&a.i, &b.i, &n.i); return z }
func MulMod(a, b, n U256) U256 { var z U256; z.i.MulMod(&a.i, &b.i, &n.i); return z }

// Exp computes base^exponent by square-and-multiply, wrapping mod 2^256.
func Exp(base, exponent U256) U256 {
	var z U256
	z.i.Exp(&base.i, &exponent.i)
	return z
}

// Lsh shifts left by n bits; n >= 256 yields 0.
func Lsh(x U256, n uint) U256 {
	if n >= 256 {
		return Zero
	}
	var z U256
	z.i.Lsh(&x.i, n)
	return z
}

// Rsh shifts right (logical) by n bits; n >= 256 yields 0.
func Rsh(x U256, n uint) U256 {
	if n >= 256 {
		return Zero
	}
	var z U256
	z.i.Rsh(&x.i, n)
	return z
}

// Sar is the arithmetic (sign-extending) right shift. A shift of 256 or
// more yields all-ones if x is negative, else 0.
func Sar(x U256, n uint) U256 {
	if n >= 256 {
		if x.IsNegative() {
			return Max
		}
		return Zero
	}
	var z U256
	z.i.SRsh(&x.i, n)
	return z
}

// Not, And, Or, Xor are bitwise.
func Not(x U256) U256    { var z U256; z.i.Not(&x.i); return z }
func And(a, b U256) U256 { var z U256; z.i.And(&a.i, &b.i); return z }
func Or(a, b U256) U256  { var z U256; z.i.Or(&a.i, &b.i); return z }
func Xor(a, b U256) U256 { var z U256; z.i.Xor(&a.i, &b.i); return z }

// SignExtend extends the sign bit at byte position b (0-indexed from the
// least significant byte) through the rest of the word. When b >= 31, x is
// returned unchanged, per the EVM SIGNEXTEND rule.
func SignExtend(b, x U256) U256 {
	var z U256
	z.i.ExtendSign(&x.i, &b.i)
	return z
}

// Byte returns the i-th most-significant byte of v (i == 0 is the most
// significant byte). i >= 32 yields 0.
func Byte(i, v U256) U256 {
	var z U256
	z.i.Set(&v.i)
	z.i.Byte(&i.i)
	return z
}

// BitLen returns the minimum number of bits to represent z (0 for zero).
func (z U256) BitLen() int { return z.i.BitLen() }

// ByteLen returns the minimum number of bytes to represent z (0 for zero).
func (z U256) ByteLen() int { return z.i.ByteLen() }

// String renders the decimal form, chiefly for test failure messages.
func (z U256) String() string { return z.i.String() }

// Hex renders the 0x-prefixed hex form.
func (z U256) Hex() string { return z.i.Hex() }

// Clone returns an independent copy (U256 is a value type, so this is
// mostly documentation at call sites that used to alias pointers).
func (z U256) Clone() U256 { return z }

// Set copies x's value into a fresh U256 and returns it.
func Set(x U256) U256 { return x }
