package field

import (
	"math/big"
	"testing"
)

// P is the BN254 scalar field modulus, reproduced here only for test
// assertions — production code never constructs it directly.
var P, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

func TestToFieldInRange(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(P, big.NewInt(1)),
		P,
		new(big.Int).Add(P, big.NewInt(12345)),
		new(big.Int).Mul(P, big.NewInt(7)),
	}

	for _, x := range cases {
		e, err := ToField(x)
		if err != nil {
			t.Fatalf("ToField(%s): %v", x, err)
		}
		got := e.BigInt()
		if got.Sign() < 0 || got.Cmp(P) >= 0 {
			t.Fatalf("ToField(%s) = %s, want value in [0, P)", x, got)
		}
	}
}

func TestToFieldNegativeRejected(t *testing.T) {
	if _, err := ToField(big.NewInt(-1)); err != ErrNegative {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestHDeterministic(t *testing.T) {
	a := FromUint64(10)
	b := FromUint64(20)

	h1 := H(a, b)
	h2 := H(a, b)
	if !h1.Equal(h2) {
		t.Fatal("H must be deterministic")
	}

	// Order matters: H is not commutative in general (it hashes the
	// concatenation pad32(a) || pad32(b)).
	h3 := H(b, a)
	if h1.Equal(h3) {
		t.Fatal("H(a,b) should not generally equal H(b,a)")
	}
}

func TestH1Deterministic(t *testing.T) {
	a := FromUint64(42)
	if !H1(a).Equal(H1(a)) {
		t.Fatal("H1 must be deterministic")
	}
	if H1(a).Equal(H1(FromUint64(43))) {
		t.Fatal("H1 of distinct inputs should (overwhelmingly) differ")
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	want := "123456789012345678901234567890"
	e, err := FromDecimal(want)
	if err != nil {
		t.Fatalf("FromDecimal: %v", err)
	}
	if got := e.Decimal(); got != want {
		t.Fatalf("Decimal() = %s, want %s", got, want)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	e := FromUint64(987654321)
	b := e.Bytes()
	got := FromBytes(b[:])
	if !e.Equal(got) {
		t.Fatalf("FromBytes(Bytes()) = %s, want %s", got, e)
	}
}

func TestAddSub(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(3)
	sum := a.Add(b)
	if !sum.Sub(b).Equal(a) {
		t.Fatal("(a+b)-b should equal a")
	}
}
