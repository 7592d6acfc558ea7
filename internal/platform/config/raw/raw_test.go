package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " debug ")
	t.Setenv("LOG_FILE_PATH", "/var/log/weatherjar.log")

	log := New().Prefix("LOG_")
	cases := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{"trimmed hit", log, "LEVEL", "info", "debug"},
		{"nested prefix", log.Prefix("FILE_"), "PATH", "", "/var/log/weatherjar.log"},
		{"missing", log, "FORMAT", "json", "json"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.conf.Get(c.key, c.def); got != c.want {
				t.Fatalf("Get(%q) = %q, want %q", c.key, got, c.want)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	for _, v := range []string{"1", "true", "YES"} {
		t.Setenv("LOG_CALLER", v)
		if !c.GetBool("CALLER", false) {
			t.Fatalf("GetBool(%q) = false", v)
		}
	}
	t.Setenv("LOG_CALLER", "off")
	if c.GetBool("CALLER", true) {
		t.Fatalf("GetBool(off) = true")
	}
	t.Setenv("LOG_CALLER", "")
	if !c.GetBool("CALLER", true) {
		t.Fatalf("empty should fall back to default")
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("LOG_FILE_")
	cases := []struct {
		val  string
		want int
	}{
		{"5", 5},
		{" 12 ", 12},
		{"", 3},
		{"x", 3},
		{"-1", 3},
	}
	for _, tc := range cases {
		t.Setenv("LOG_FILE_BACKUPS", tc.val)
		if got := c.GetInt("BACKUPS", 3); got != tc.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tc.val, got, tc.want)
		}
	}
}
