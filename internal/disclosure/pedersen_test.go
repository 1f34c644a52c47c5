package disclosure

import (
	"math/big"
	"testing"
)

func TestCommitmentVerifiesCorrectOpening(t *testing.T) {
	value := big.NewInt(42)
	blinder := big.NewInt(17)

	c, err := NewCommitment(value, blinder)
	if err != nil {
		t.Fatalf("NewCommitment: %v", err)
	}
	if !c.Verify(value, blinder) {
		t.Fatal("commitment failed to verify its own opening")
	}
}

func TestCommitmentRejectsWrongValue(t *testing.T) {
	value := big.NewInt(42)
	blinder := big.NewInt(17)

	c, err := NewCommitment(value, blinder)
	if err != nil {
		t.Fatalf("NewCommitment: %v", err)
	}
	if c.Verify(big.NewInt(43), blinder) {
		t.Fatal("commitment verified against the wrong value")
	}
}

func TestCommitmentAddIsHomomorphic(t *testing.T) {
	v1, b1 := big.NewInt(10), big.NewInt(5)
	v2, b2 := big.NewInt(20), big.NewInt(7)

	c1, err := NewCommitment(v1, b1)
	if err != nil {
		t.Fatalf("NewCommitment c1: %v", err)
	}
	c2, err := NewCommitment(v2, b2)
	if err != nil {
		t.Fatalf("NewCommitment c2: %v", err)
	}

	sum := c1.Add(c2)
	expected, err := NewCommitment(new(big.Int).Add(v1, v2), new(big.Int).Add(b1, b2))
	if err != nil {
		t.Fatalf("NewCommitment expected: %v", err)
	}
	if !sum.Point.Equal(&expected.Point) {
		t.Fatal("C1 + C2 did not equal commitment to (v1+v2, r1+r2)")
	}
}

func TestNewRandomCommitmentDistinctBlinders(t *testing.T) {
	value := big.NewInt(100)

	c1, b1, err := NewRandomCommitment(value)
	if err != nil {
		t.Fatalf("NewRandomCommitment: %v", err)
	}
	c2, b2, err := NewRandomCommitment(value)
	if err != nil {
		t.Fatalf("NewRandomCommitment: %v", err)
	}

	if b1.Cmp(b2) == 0 {
		t.Fatal("two random commitments drew the same blinder")
	}
	if c1.Point.Equal(&c2.Point) {
		t.Fatal("two random commitments to the same value collided")
	}
}
