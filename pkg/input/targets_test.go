package input

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadURLFilePlainUTF8(t *testing.T) {
	path := writeFile(t, "urls.txt", []byte("example.com\n# comment\n\nhttps://two.test/login\n"))
	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://example.com", "https://two.test/login"}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestReadURLFileUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("example.com\nsecond.test\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "utf16.txt", data)

	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 || urls[0] != "http://example.com" || urls[1] != "http://second.test" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestReadURLFileUTF16BigEndian(t *testing.T) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("example.com\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "utf16be.txt", data)

	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "http://example.com" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestReadURLFileUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "example.com\n"...)
	path := writeFile(t, "bom.txt", data)

	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "http://example.com" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestReadURLFileCP1252(t *testing.T) {
	// 0xE9 is é in cp1252 and invalid standalone UTF-8.
	path := writeFile(t, "legacy.txt", []byte{'c', 'a', 'f', 0xE9, '.', 't', 'e', 's', 't', '\n'})

	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "http://café.test" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestCollectAppliesExcludesAndDedupes(t *testing.T) {
	path := writeFile(t, "urls.txt", []byte("a.test\nb.test\na.test\nstaging.b.test\n"))
	src := Source{
		ListFile: path,
		Exclude:  []string{`staging\.`},
	}
	urls, err := src.Collect()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://a.test", "http://b.test"}
	if len(urls) != len(want) {
		t.Fatalf("got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestCollectBadExcludePattern(t *testing.T) {
	src := Source{URLs: []string{"http://a.test"}, Exclude: []string{"("}}
	if _, err := src.Collect(); err == nil {
		t.Fatal("expected error for invalid exclude regex")
	}
}

func TestCollectDirectURLsKeepOrder(t *testing.T) {
	src := Source{URLs: []string{"b.test", "a.test"}}
	urls, err := src.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 || urls[0] != "http://b.test" || urls[1] != "http://a.test" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestExpandCIDR(t *testing.T) {
	urls, err := ExpandCIDR("192.168.1.0/30", []int{80, 443})
	if err != nil {
		t.Fatal(err)
	}
	// /30 has two usable hosts, .1 and .2; network and broadcast skipped.
	want := []string{
		"http://192.168.1.1:80",
		"https://192.168.1.1:443",
		"http://192.168.1.2:80",
		"https://192.168.1.2:443",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestExpandCIDRSingleHost(t *testing.T) {
	urls, err := ExpandCIDR("10.0.0.5/32", []int{8443})
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "https://10.0.0.5:8443" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestExpandCIDRInvalid(t *testing.T) {
	if _, err := ExpandCIDR("not-a-cidr", []int{80}); err == nil {
		t.Fatal("expected error for malformed cidr")
	}
}

func TestStringSliceFlag(t *testing.T) {
	var f StringSliceFlag
	for _, v := range []string{"a", " b ", "", "c,d"} {
		if err := f.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"a", "b", "c", "d"}
	if len(f) != len(want) {
		t.Fatalf("got %v, want %v", f, want)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Errorf("f[%d] = %q, want %q", i, f[i], want[i])
		}
	}
}
