package nodeconf_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"anonctl/internal/nodeconf"
)

func TestRecordManyKeysKeepOrder(t *testing.T) {
	const n = 50000
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "opt%d=%d\n", i, i)
	}
	// Redefinitions must not move keys or add duplicates.
	for i := 0; i < n; i += 1000 {
		fmt.Fprintf(&b, "OPT%d=again\n", i)
	}

	record := nodeconf.ParseString(b.String())
	keys := record.Keys()
	if len(keys) != n {
		t.Fatalf("Keys() has %d entries, want %d", len(keys), n)
	}
	for i, key := range keys {
		if want := fmt.Sprintf("opt%d", i); key != want {
			t.Fatalf("Keys()[%d] = %q, want %q", i, key, want)
		}
	}
	if v, _ := record.Get("opt1000"); v != "again" {
		t.Fatalf("opt1000 = %q, want again", v)
	}
}

func TestRecordDeleteThenSetMovesKeyToEnd(t *testing.T) {
	record := nodeconf.ParseString("server=1\nproxy=127.0.0.1:9050\nkeypool=100")
	record.Delete(nodeconf.KeyServer)
	record.Delete("absent")
	record.Set(nodeconf.KeyServer, "0")

	want := []string{"proxy", "keypool", "server"}
	if got := record.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
}

func TestRecordNilReceiver(t *testing.T) {
	var record *nodeconf.Record
	record.Delete(nodeconf.KeyRPCUser)
	if _, ok := record.Get(nodeconf.KeyRPCUser); ok {
		t.Fatal("nil record reported a value")
	}
	if record.Len() != 0 || len(record.Keys()) != 0 || len(record.Map()) != 0 {
		t.Fatal("nil record is not empty")
	}
	if record.Clone().Len() != 0 {
		t.Fatal("clone of nil record is not empty")
	}
}
