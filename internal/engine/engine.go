package engine

import (
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ObjectSink receives the members of one JSON object in document order.
// A repeated key overwrites the value but keeps its first position.
type ObjectSink interface {
	Set(key string, v any)
}

// NewObjectFunc allocates the container used for decoded objects.
type NewObjectFunc func() ObjectSink

// DecodeValue builds a value tree from the token source. Objects are built
// through newObject so callers keep key order; numbers become float64 and
// arrays are never nil.
func DecodeValue(src TokenSource, newObject NewObjectFunc) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	d := decoder{src: src, newObject: newObject}
	return d.value(tok)
}

type decoder struct {
	src       TokenSource
	newObject NewObjectFunc
}

func (d decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object()
	case KindBeginArray:
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		f, err := strconv.ParseFloat(tok.Number, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d decoder) object() (any, error) {
	obj := d.newObject()
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		obj.Set(tok.String, v)
	}
}

func (d decoder) array() (any, error) {
	arr := []any{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
