package mcpserver

import (
	"testing"

	"github.com/hflisp/calcit/internal/value"
)

func TestJSONToValueConvertsScalars(t *testing.T) {
	if s, ok := jsonToValue("hi").(value.Str); !ok || string(s) != "hi" {
		t.Fatalf("expected Str(hi), got %#v", jsonToValue("hi"))
	}
	if n, ok := jsonToValue(float64(3)).(value.Number); !ok || n != 3 {
		t.Fatalf("expected Number(3), got %#v", jsonToValue(float64(3)))
	}
	if b, ok := jsonToValue(true).(value.Bool); !ok || !bool(b) {
		t.Fatalf("expected Bool(true), got %#v", jsonToValue(true))
	}
	if _, ok := jsonToValue(nil).(value.Nil); !ok {
		t.Fatalf("expected Nil, got %#v", jsonToValue(nil))
	}
}
