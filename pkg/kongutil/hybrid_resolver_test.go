package kongutil

import (
	"strings"
	"testing"
)

func TestDecodeConfigFormats(t *testing.T) {
	cases := map[string]string{
		"json": `{"static_dir": "/srv/static", "logging": {"level": "debug"}}`,
		"yaml": "static_dir: /srv/static\nlogging:\n  level: debug\n",
		"toml": "static_dir = \"/srv/static\"\n[logging]\nlevel = \"debug\"\n",
	}
	for format, doc := range cases {
		values, err := decodeConfig(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if got := lookup(values, "static-dir"); got != "/srv/static" {
			t.Errorf("%s: static-dir = %v", format, got)
		}
		if got := lookup(values, "logging.level"); got != "debug" {
			t.Errorf("%s: logging.level = %v", format, got)
		}
	}
}

func TestDecodeConfigRejectsGarbage(t *testing.T) {
	if _, err := decodeConfig(strings.NewReader("{{{ = ::")); err == nil {
		t.Fatal("garbage config decoded")
	}
}

func TestLookup(t *testing.T) {
	values := map[string]interface{}{
		"logging.format": "console",
		"logging": map[string]interface{}{
			"max-size-mb": 10,
			"level":       "warn",
		},
		"port": 8080,
	}
	cases := []struct {
		name string
		want interface{}
	}{
		{"logging.format", "console"},
		{"logging.max-size-mb", 10},
		{"logging.level", "warn"},
		{"port", 8080},
		{"logging", nil},
		{"logging.missing", nil},
		{"port.nested", nil},
		{"absent", nil},
	}
	for _, c := range cases {
		if got := lookup(values, c.name); got != c.want {
			t.Errorf("lookup(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
