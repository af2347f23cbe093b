package value

import "testing"

func TestEqualStructural(t *testing.T) {
	a := NewList(Number(1), Str("x"), Bool(true))
	b := NewList(Number(1), Str("x"), Bool(true))
	if !Equal(a, b) {
		t.Error("expected structurally identical lists to be equal")
	}
	c := NewList(Number(1), Str("x"), Bool(false))
	if Equal(a, c) {
		t.Error("expected lists differing in one element to be unequal")
	}
}

func TestEqualFnByIdentity(t *testing.T) {
	f1 := NewFn("f", "user.core", nil, nil)
	f2 := NewFn("f", "user.core", nil, nil)
	if Equal(f1, f2) {
		t.Error("expected two distinct Fn instantiations to be unequal even with identical name/ns")
	}
	if !Equal(f1, f1) {
		t.Error("expected a Fn to equal itself")
	}
}

func TestEqualPanicsOnThunk(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Equal on Thunk to panic")
		}
	}()
	th := NewCodeThunk(Nil{}, Location{})
	Equal(th, th)
}

func TestCompareTotalOrderByKindThenValue(t *testing.T) {
	if Compare(Bool(false), Number(1)) >= 0 {
		t.Error("expected Bool (lower Kind) to sort before Number")
	}
	if Compare(Number(1), Number(2)) >= 0 {
		t.Error("expected 1 < 2")
	}
	if Compare(Str("a"), Str("b")) >= 0 {
		t.Error("expected \"a\" < \"b\"")
	}
}

func TestCompareEqualValuesReturnZero(t *testing.T) {
	if Compare(Number(3), Number(3)) != 0 {
		t.Error("expected equal numbers to compare 0")
	}
}
