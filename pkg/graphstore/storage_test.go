package graphstore

import "testing"

func TestRecordIDSanitizesSlashes(t *testing.T) {
	id := recordID("app.main", "run!")
	if id != "callgraphs:app_main__run_" {
		t.Fatalf("unexpected record id: %s", id)
	}
}

func TestRecordIDIsStablePerNsDef(t *testing.T) {
	if recordID("a", "b") != recordID("a", "b") {
		t.Fatal("expected recordID to be deterministic")
	}
	if recordID("a", "b") == recordID("a", "c") {
		t.Fatal("expected distinct defs to produce distinct ids")
	}
}
