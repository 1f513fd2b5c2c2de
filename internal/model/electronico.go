package model

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names used by the queries over the electronicos collection.
const (
	FieldID        = "_id"
	FieldCodigo    = "codigo"
	FieldNombre    = "nombre"
	FieldCategoria = "categoria"
	FieldPrecio    = "precio"
)

var ErrNotAnObject = errors.New("body is not a JSON object")

// Electronico is a product record. No schema is enforced: any field sent by the
// client is stored verbatim, nested documents decode to the same type.
type Electronico map[string]any

// DecodeElectronico parses a request body as relaxed Extended JSON.
// Integers keep an integer BSON type, so codigo lookups match stored values.
func DecodeElectronico(r io.Reader) (Electronico, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotAnObject
	}

	var doc Electronico
	if err := bson.UnmarshalExtJSON([]byte(trimmed), false, &doc); err != nil {
		return nil, fmt.Errorf("decode electronico: %w", err)
	}
	if doc == nil {
		doc = Electronico{}
	}
	return doc, nil
}

// ID returns the generated document id, if any.
func (e Electronico) ID() (primitive.ObjectID, bool) {
	id, ok := e[FieldID].(primitive.ObjectID)
	return id, ok
}

// Codigo returns codigo as an integer when it holds a whole number.
func (e Electronico) Codigo() (int64, bool) {
	return toInt64(e[FieldCodigo])
}

// Precio returns the raw precio value and whether the field is present.
func (e Electronico) Precio() (any, bool) {
	v, ok := e[FieldPrecio]
	return v, ok
}

// WithoutID returns a shallow copy without _id, which MongoDB never lets $set change.
func (e Electronico) WithoutID() Electronico {
	out := make(Electronico, len(e))
	for k, v := range e {
		if k == FieldID {
			continue
		}
		out[k] = v
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// ParseInt reads a path parameter the way JavaScript's parseInt(s, 10) does:
// leading whitespace, an optional sign, then the longest run of digits.
// ok is false when no digit was found (NaN) or the value overflows int64.
func ParseInt(s string) (n int64, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
