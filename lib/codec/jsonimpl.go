package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fwdslash/dynkv/lib/value"
)

// maxDepth bounds the nesting the encoder and decoder accept. Object values
// share their field sets between copies, so a self-referencing structure is
// constructible; the depth guard turns it into a typed error instead of a
// stack overflow.
const maxDepth = 512

// NewJSONCodec creates a new codec using JSON text encoding.
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICodec interface using JSON text encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (c *jsonCodecImpl) Encode(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *jsonCodecImpl) Decode(data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return value.Null(), err
	}

	// reject trailing content after the first value
	if _, err := dec.Token(); err != io.EOF {
		return value.Null(), &CorruptDataError{Msg: "trailing data after value"}
	}

	return v, nil
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// encodeValue writes v to buf as JSON text. Object fields are written in
// insertion order so that encoding is deterministic.
func encodeValue(buf *bytes.Buffer, v value.Value, depth int) error {
	if depth > maxDepth {
		return &SerializationError{Msg: fmt.Sprintf("nesting exceeds %d levels (cyclic value?)", maxDepth)}
	}

	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case value.KindNumber:
		f := v.Num()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &SerializationError{Msg: fmt.Sprintf("number %v has no JSON representation", f)}
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case value.KindString:
		encodeString(buf, v.Str())
	case value.KindArray:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, v.Index(i), depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.KindObject:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, k)
			buf.WriteByte(':')
			field, _ := v.Get(k)
			if err := encodeValue(buf, field, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return &SerializationError{Msg: fmt.Sprintf("unsupported value kind %s", v.Kind())}
	}
	return nil
}

// encodeString writes s as a JSON string literal. json.Marshal on a string
// cannot fail, so the error is discarded.
func encodeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// decodeValue reads one value from the token stream. Object field order
// follows the order the fields appear in the text.
func decodeValue(dec *json.Decoder, depth int) (value.Value, error) {
	if depth > maxDepth {
		return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("nesting exceeds %d levels", maxDepth)}
	}

	tok, err := dec.Token()
	if err != nil {
		return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("invalid JSON text: %v", err)}
	}

	return decodeToken(dec, tok, depth)
}

// decodeToken turns an already-read token into a value, consuming any
// container contents from the decoder.
func decodeToken(dec *json.Decoder, tok json.Token, depth int) (value.Value, error) {
	switch t := tok.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("invalid number %q: %v", t.String(), err)}
		}
		return value.Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec, depth)
		case '{':
			return decodeObject(dec, depth)
		default:
			return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("unexpected delimiter %q", t.String())}
		}
	default:
		return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("unexpected token %v", tok)}
	}
}

// decodeArray consumes tokens until the closing bracket.
func decodeArray(dec *json.Decoder, depth int) (value.Value, error) {
	var elems []value.Value
	for dec.More() {
		elem, err := decodeValue(dec, depth+1)
		if err != nil {
			return value.Null(), err
		}
		elems = append(elems, elem)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("unterminated array: %v", err)}
	}
	return value.Array(elems...), nil
}

// decodeObject consumes key/value pairs until the closing brace.
func decodeObject(dec *json.Decoder, depth int) (value.Value, error) {
	obj := value.Object()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("invalid object key: %v", err)}
		}
		key, ok := keyTok.(string)
		if !ok {
			return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("object key is not a string: %v", keyTok)}
		}
		field, err := decodeValue(dec, depth+1)
		if err != nil {
			return value.Null(), err
		}
		obj.Set(key, field)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return value.Null(), &CorruptDataError{Msg: fmt.Sprintf("unterminated object: %v", err)}
	}
	return obj, nil
}
