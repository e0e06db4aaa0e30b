package trace

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestNextSpanIDIsMonotonicAndUnique(t *testing.T) {
	a := NextSpanID()
	b := NextSpanID()
	if b <= a {
		t.Errorf("NextSpanID() = %d after %d, want a strictly increasing value", b, a)
	}
}

func TestEventWritesJSONArrayEntry(t *testing.T) {
	var buf bytes.Buffer
	Sink(&buf)
	defer Sink(io.Discard)

	span := NextSpanID()
	pe := Event("compile //x:y", span)
	pe.Done()

	got := strings.TrimPrefix(buf.String(), "[")
	got = strings.TrimSuffix(got, ",")

	var decoded struct {
		Name string `json:"name"`
		Ph   string `json:"ph"`
		Span SpanID `json:"span"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("json.Unmarshal(%q): %v", got, err)
	}
	if decoded.Name != "compile //x:y" {
		t.Errorf("decoded.Name = %q, want %q", decoded.Name, "compile //x:y")
	}
	if decoded.Ph != "X" {
		t.Errorf("decoded.Ph = %q, want %q", decoded.Ph, "X")
	}
	if decoded.Span != span {
		t.Errorf("decoded.Span = %d, want %d", decoded.Span, span)
	}
}
