package codec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fwdslash/dynkv/lib/value"
)

func mustEncode(t *testing.T, c ICodec, v value.Value) []byte {
	t.Helper()
	data, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%s) failed: %v", v, err)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	c := NewJSONCodec()

	cases := []struct {
		name string
		val  value.Value
	}{
		{"null", value.Null()},
		{"bool", value.Bool(true)},
		{"number", value.Number(1.25)},
		{"negative", value.Number(-3)},
		{"string", value.String("héllo \"world\"\n")},
		{"empty string", value.String("")},
		{"empty array", value.Array()},
		{"empty object", value.Object()},
		{"nested", value.Object().
			Set("name", value.String("chest")).
			Set("count", value.Int(12)).
			Set("open", value.Bool(false)).
			Set("tags", value.Array(value.String("wood"), value.String("storage"))).
			Set("pos", value.Object().Set("x", value.Int(3)).Set("y", value.Int(-7))).
			Set("note", value.Null()),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := c.Decode(mustEncode(t, c, tc.val))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !decoded.Equal(tc.val) {
				t.Errorf("Round-trip mismatch: got %s, want %s", decoded, tc.val)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	c := NewJSONCodec()
	v := value.Object().
		Set("b", value.Int(2)).
		Set("a", value.Int(1))

	want := `{"b":2,"a":1}`
	if got := string(mustEncode(t, c, v)); got != want {
		t.Errorf("Encode = %s, want %s (insertion order)", got, want)
	}
}

func TestDecodePreservesFieldOrder(t *testing.T) {
	c := NewJSONCodec()

	v, err := c.Decode([]byte(`{"z":1,"a":2,"m":3}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, v.Keys()); diff != "" {
		t.Errorf("Field order mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeRejectsNonFiniteNumbers(t *testing.T) {
	c := NewJSONCodec()

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := c.Encode(value.Object().Set("n", value.Number(f)))
		var serErr *SerializationError
		if !errors.As(err, &serErr) {
			t.Errorf("Encode of %v: expected *SerializationError, got %v", f, err)
		}
	}
}

func TestEncodeRejectsCyclicValue(t *testing.T) {
	c := NewJSONCodec()

	// object field sets are shared between copies, so this builds a cycle
	obj := value.Object()
	obj.Set("self", obj)

	_, err := c.Encode(obj)
	var serErr *SerializationError
	if !errors.As(err, &serErr) {
		t.Fatalf("Expected *SerializationError for cyclic value, got %v", err)
	}
}

func TestDecodeRejectsInvalidText(t *testing.T) {
	c := NewJSONCodec()

	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"truncated object", `{"a":`},
		{"truncated array", `[1,2`},
		{"bare word", `flse`},
		{"trailing data", `{"a":1}{"b":2}`},
		{"trailing scalar", `1 2`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tc.text))
			var corruptErr *CorruptDataError
			if !errors.As(err, &corruptErr) {
				t.Errorf("Decode(%q): expected *CorruptDataError, got %v", tc.text, err)
			}
		})
	}
}

func TestDecodeRejectsExcessiveNesting(t *testing.T) {
	c := NewJSONCodec()

	deep := strings.Repeat("[", maxDepth+2) + strings.Repeat("]", maxDepth+2)
	_, err := c.Decode([]byte(deep))
	var corruptErr *CorruptDataError
	if !errors.As(err, &corruptErr) {
		t.Fatalf("Expected *CorruptDataError for deep nesting, got %v", err)
	}
}

func TestLargeValueRoundTrip(t *testing.T) {
	c := NewJSONCodec()

	big := value.Object()
	for i := 0; i < 500; i++ {
		big.Set(strings.Repeat("k", 10)+string(rune('a'+i%26))+string(rune('0'+i%10)), value.String(strings.Repeat("x", 100)))
	}

	decoded, err := c.Decode(mustEncode(t, c, big))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !decoded.Equal(big) {
		t.Errorf("Large value did not round-trip")
	}
}
