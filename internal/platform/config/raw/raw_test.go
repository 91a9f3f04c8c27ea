package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  debug ")
	c := New().Prefix("LOG_")

	if got := c.Get("LEVEL", "x"); got != "debug" {
		t.Fatalf("Get = %q, want debug", got)
	}
	if got := c.Get("MISSING", "def"); got != "def" {
		t.Fatalf("Get missing = %q, want def", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_YES", "YES")
	t.Setenv("B_ON", "on")
	t.Setenv("B_ONE", "1")
	t.Setenv("B_NO", "no")
	t.Setenv("B_JUNK", "maybe")

	cases := []struct {
		key  string
		def  bool
		want bool
	}{
		{"YES", false, true},
		{"ON", false, true},
		{"ONE", false, true},
		{"NO", true, false},
		{"JUNK", true, false},
		{"MISSING", true, true},
	}
	for _, tc := range cases {
		if got := c.GetBool(tc.key, tc.def); got != tc.want {
			t.Fatalf("GetBool(%s) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("N_")
	t.Setenv("N_OK", " 42 ")
	t.Setenv("N_NEG", "-5")
	t.Setenv("N_BAD", "12x")

	cases := []struct {
		key  string
		def  int
		want int
	}{
		{"OK", 0, 42},
		{"NEG", 3, 3},
		{"BAD", 9, 9},
		{"MISSING", 11, 11},
	}
	for _, tc := range cases {
		if got := c.GetInt(tc.key, tc.def); got != tc.want {
			t.Fatalf("GetInt(%s) = %d, want %d", tc.key, got, tc.want)
		}
	}
}
