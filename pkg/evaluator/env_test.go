package evaluator

import "testing"

// Thunks appear in operand lists alongside values and symbols.
var _ Operand = (*Thunk)(nil)

func TestEnv_DefineOnce(t *testing.T) {
	env := NewEnv()
	if !env.Define("x", NewNumber(1)) {
		t.Fatal("first Define failed")
	}
	if env.Define("x", NewNumber(2)) {
		t.Fatal("second Define of same name succeeded")
	}
	val, ok := env.Get("x")
	if !ok {
		t.Fatal("x not found after Define")
	}
	if num := val.(Number); num.Value != 1 {
		t.Errorf("x = %d, want 1 (second Define must not overwrite)", num.Value)
	}
}

func TestEnv_SetShadows(t *testing.T) {
	env := NewEnv()
	env.Set("x", NewNumber(1))
	env.Set("x", NewNumber(2))
	val, _ := env.Get("x")
	if num := val.(Number); num.Value != 2 {
		t.Errorf("x = %d, want 2 (Set must overwrite)", num.Value)
	}
}

func TestMerge_CalleeWins(t *testing.T) {
	caller := NewEnv()
	caller.Set("a", NewNumber(1))
	caller.Set("b", NewNumber(2))

	callee := NewEnv()
	callee.Set("b", NewNumber(20))
	callee.Set("c", NewNumber(30))

	merged := Merge(caller, callee)

	want := map[string]int64{"a": 1, "b": 20, "c": 30}
	if merged.Len() != len(want) {
		t.Fatalf("merged has %d bindings, want %d", merged.Len(), len(want))
	}
	for name, n := range want {
		val, ok := merged.Get(name)
		if !ok {
			t.Errorf("merged missing %q", name)
			continue
		}
		if num := val.(Number); num.Value != n {
			t.Errorf("merged[%q] = %d, want %d", name, num.Value, n)
		}
	}
}

func TestMerge_FreshEnv(t *testing.T) {
	caller := NewEnv()
	caller.Set("a", NewNumber(1))
	callee := NewEnv()

	merged := Merge(caller, callee)
	merged.Set("a", NewNumber(99))

	if val, _ := caller.Get("a"); val.(Number).Value != 1 {
		t.Error("mutating merged env leaked into the caller env")
	}
	if callee.Has("a") {
		t.Error("mutating merged env leaked into the callee env")
	}
}

func TestMerge_NilInputs(t *testing.T) {
	callee := NewEnv()
	callee.Set("x", NewNumber(5))

	merged := Merge(nil, callee)
	if !merged.Has("x") {
		t.Error("Merge(nil, callee) dropped callee binding")
	}
	if got := Merge(nil, nil); got == nil || got.Len() != 0 {
		t.Error("Merge(nil, nil) must return a fresh empty env")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFloorMod(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 1},
		{-7, 2, 1},
		{7, -2, -1},
		{-7, -2, -1},
		{6, 3, 0},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorMod(tt.a, tt.b); got != tt.want {
			t.Errorf("floorMod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFloorMod_Identity(t *testing.T) {
	// mod(a,b) == a - b*div(a,b)
	pairs := []struct{ a, b int64 }{
		{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {100, 7}, {-100, 7},
	}
	for _, p := range pairs {
		if got, want := floorMod(p.a, p.b), p.a-p.b*floorDiv(p.a, p.b); got != want {
			t.Errorf("identity broken for (%d, %d): mod=%d, a-b*div=%d", p.a, p.b, got, want)
		}
	}
}
