package value

import "testing"

func TestEqualScalars(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil==nil", NilValue, NilValue, true},
		{"true==true", True, True, true},
		{"true!=false", True, False, false},
		{"int eq", MakeInt(7), MakeInt(7), true},
		{"int neq", MakeInt(7), MakeInt(8), false},
		{"num within epsilon", MakeNum(1.0), MakeNum(1.0 + Epsilon/2), true},
		{"num outside epsilon", MakeNum(1.0), MakeNum(1.1), false},
		{"mismatched tags", MakeInt(1), MakeNum(1), false},
		{"ip eq", MakeIP(4), MakeIP(4), true},
		{"fp neq", MakeFP(1), MakeFP(2), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestEqualObjIdentity(t *testing.T) {
	s1 := &String{Bytes: []byte("hi")}
	s2 := &String{Bytes: []byte("hi")}
	a := MakeObj(s1)
	b := MakeObj(s1)
	c := MakeObj(s2)

	if !Equal(a, b) {
		t.Error("same pointer wrapped twice should be equal")
	}
	if Equal(a, c) {
		t.Error("distinct allocations with equal content but no interning should not be Equal")
	}
}

func TestPrint(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NilValue, "nil"},
		{True, "true"},
		{False, "false"},
		{MakeInt(-42), "-42"},
		{MakeNum(3.5), "3.5"},
		{MakeNum(4.0), "4"},
	}
	for _, c := range cases {
		if got := Print(c.v); got != c.want {
			t.Errorf("Print(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestWithRefsPreservesPayload(t *testing.T) {
	v := MakeInt(9)
	closers := []Closer{}
	v2 := v.WithRefs(closers)

	if v2.AsInt() != 9 {
		t.Fatalf("WithRefs mutated payload: got %d", v2.AsInt())
	}
	if len(v.Refs) != 0 {
		t.Fatalf("original value should be untouched, got Refs=%v", v.Refs)
	}
}

func TestTagString(t *testing.T) {
	tags := []Tag{Nil, Bool, Int, Num, IP, FP, Obj}
	for _, tag := range tags {
		if tag.String() == "unknown" {
			t.Errorf("tag %d missing String() case", tag)
		}
	}
}
