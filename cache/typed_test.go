package cache

import (
	"context"
	"testing"
)

type person struct {
	Name string
	Age  int
}

func TestTyped_GetSet(t *testing.T) {
	s := NewStore(testConfig())
	defer s.Dispose()
	ctx := context.Background()

	people := NewTyped[person](s)
	if err := people.Set(ctx, "p1", person{Name: "Ada", Age: 36}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := people.Get(ctx, "p1")
	if !ok {
		t.Fatal("Get should hit")
	}
	if got.Name != "Ada" || got.Age != 36 {
		t.Errorf("Get = %+v", got)
	}

	if _, ok := people.Get(ctx, "missing"); ok {
		t.Error("Get of missing key should return false")
	}
}

func TestTyped_WrongTypeIsMiss(t *testing.T) {
	s := NewStore(testConfig())
	defer s.Dispose()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "a string")

	people := NewTyped[person](s)
	got, ok := people.Get(ctx, "k")
	if ok {
		t.Error("wrong dynamic type should be treated as a miss")
	}
	if got != (person{}) {
		t.Errorf("miss should return zero value, got %+v", got)
	}
}

func TestTyped_DeleteAndUnwrap(t *testing.T) {
	s := NewStore(testConfig())
	defer s.Dispose()
	ctx := context.Background()

	ints := NewTyped[int](s)
	_ = ints.Set(ctx, "n", 42)
	if !ints.Delete(ctx, "n") {
		t.Error("Delete should report removal")
	}
	if ints.Unwrap() != Cache(s) {
		t.Error("Unwrap should return the underlying cache")
	}
}
