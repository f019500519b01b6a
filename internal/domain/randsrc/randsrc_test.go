package randsrc

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(12345)
	b := New(12345)

	for i := 0; i < 50; i++ {
		if av, bv := a.NextInt64(), b.NextInt64(); av != bv {
			t.Fatalf("call %d: diverged: %d != %d", i, av, bv)
		}
	}
}

func TestNextBoundedIntRejectsNonPositive(t *testing.T) {
	s := New(1)
	if _, err := s.NextBoundedInt(0); err == nil {
		t.Fatal("expected error for bound=0")
	}
	if _, err := s.NextBoundedInt(-5); err == nil {
		t.Fatal("expected error for negative bound")
	}
}

func TestNextIntRangeRejectsInverted(t *testing.T) {
	s := New(1)
	if _, err := s.NextIntRange(10, 5); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, err := s.NextIntRange(5, 5); err == nil {
		t.Fatal("expected error for empty range")
	}
}

func TestNextAlphanumericEmptyLength(t *testing.T) {
	s := New(1)
	if got := s.NextAlphanumeric(0); got != "" {
		t.Fatalf("NextAlphanumeric(0) = %q, want empty string", got)
	}
}

func TestNextAlphanumericAlphabet(t *testing.T) {
	s := New(42)
	str := s.NextAlphanumeric(500)
	if len(str) != 500 {
		t.Fatalf("len = %d, want 500", len(str))
	}
	for _, c := range str {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum {
			t.Fatalf("character %q outside alphanumeric alphabet", c)
		}
	}
}

func TestForkIsIndependentAndReproducible(t *testing.T) {
	parent1 := New(999)
	child1 := parent1.Fork()

	parent2 := New(999)
	child2 := parent2.Fork()

	// Same parent seed + same call sequence up to Fork => same child seed.
	if child1.Seed() != child2.Seed() {
		t.Fatalf("child seeds diverged: %d != %d", child1.Seed(), child2.Seed())
	}

	// The child stream must not be the same as continuing the parent.
	parentNext := parent1.NextInt64()
	childNext := child1.NextInt64()
	if parentNext == childNext {
		t.Skip("coincidental collision between parent and child stream; not a correctness signal")
	}
}

func TestShuffleIsDeterministic(t *testing.T) {
	mk := func() []int { return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} }

	a := mk()
	New(7).Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })

	b := mk()
	New(7).Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle diverged at index %d: %d != %d", i, a[i], b[i])
		}
	}
}
