package raw

import "testing"

func TestGet_PrefixAndDefault(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_LEVEL", "  info ")
	if got := c.Get("LEVEL", "debug"); got != "info" {
		t.Fatalf("Get = %q, want info", got)
	}
	if got := c.Get("MISSING", "debug"); got != "debug" {
		t.Fatalf("Get default = %q, want debug", got)
	}
	nested := c.Prefix("FILE_")
	t.Setenv("LOG_FILE_PATH", "/tmp/x.log")
	if got := nested.Get("PATH", ""); got != "/tmp/x.log" {
		t.Fatalf("nested Get = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("B_")
	cases := map[string]bool{"1": true, "TRUE": true, "yes": true, "on": true, "0": false, "nope": false}
	for in, want := range cases {
		t.Setenv("B_FLAG", in)
		if got := c.GetBool("FLAG", !want); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", in, got, want)
		}
	}
	t.Setenv("B_FLAG", "")
	if !c.GetBool("FLAG", true) {
		t.Fatalf("blank should return default")
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("I_")
	t.Setenv("I_N", " 42 ")
	if got := c.GetInt("N", 1); got != 42 {
		t.Fatalf("GetInt = %d, want 42", got)
	}
	t.Setenv("I_N", "-3")
	if got := c.GetInt("N", 1); got != 1 {
		t.Fatalf("negative should fall back, got %d", got)
	}
	t.Setenv("I_N", "x")
	if got := c.GetInt("N", 7); got != 7 {
		t.Fatalf("junk should fall back, got %d", got)
	}
}
