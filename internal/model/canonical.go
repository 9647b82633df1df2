package model

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders v as canonical JSON: dictionary keys sorted,
// strings NFC normalized, content reduced to its plain text. Two values
// that are Equal marshal to the same bytes, except for content whose
// structure differs but whose text is the same.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case nil, None:
		buf.WriteString("null")
	case Auto:
		buf.WriteString(`{"auto":true}`)
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		return writeFloat(buf, float64(v))
	case Numeric:
		buf.WriteString(`{"unit":`)
		if err := writeString(buf, string(v.Unit)); err != nil {
			return err
		}
		buf.WriteString(`,"value":`)
		if err := writeFloat(buf, v.Value); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Str:
		return writeString(buf, string(v))
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Dict:
		keys := v.Keys()
		slices.Sort(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			item, _ := v.Get(k)
			if err := writeCanonical(buf, item); err != nil {
				return fmt.Errorf("dict[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case Content:
		buf.WriteString(`{"content":`)
		if err := writeString(buf, PlainText(v)); err != nil {
			return err
		}
		buf.WriteByte('}')
	case *Func:
		buf.WriteString(`{"function":`)
		if err := writeString(buf, v.Name()); err != nil {
			return err
		}
		buf.WriteByte('}')
	case *Module:
		buf.WriteString(`{"module":`)
		if err := writeString(buf, v.Name); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	data, err := json.MarshalNoEscape(norm.NFC.String(s))
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("non-finite float %v has no JSON form", f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}
