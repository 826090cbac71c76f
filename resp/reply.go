package resp

import (
	"io"
	"strconv"
	"strings"
)

// ReplyType tags the variant held by a Reply.
type ReplyType byte

// The six shapes a reply can take on the wire. TypeNil is the zero value of
// an unset Reply and is what the shared nil sentinel carries.
const (
	TypeNil ReplyType = iota
	TypeSimpleString
	TypeError
	TypeInteger
	TypeBulkString
	TypeArray
)

var typeNames = map[ReplyType]string{
	TypeNil:          "nil",
	TypeSimpleString: "simple string",
	TypeError:        "error",
	TypeInteger:      "integer",
	TypeBulkString:   "bulk string",
	TypeArray:        "array",
}

func (t ReplyType) String() string {
	return typeNames[t]
}

// nilReply is the shared sentinel returned for out-of-range access. It must
// never be written to.
var nilReply Reply

// Reply is a RESP wire value: a simple string, an error, an integer, a
// nullable bulk string or a nullable array of nested replies. The zero value
// is the nil reply.
//
// A Reply parsed by a Response is a borrow scoped to that Response; do not
// retain it past the Response's lifetime.
type Reply struct {
	typ   ReplyType
	str   []byte
	num   int64
	null  bool
	elems []Reply
}

// Type returns the variant tag.
func (r *Reply) Type() ReplyType {
	return r.typ
}

// IsNil reports whether the reply is unset, e.g. the out-of-range sentinel.
func (r *Reply) IsNil() bool {
	return r.typ == TypeNil
}

// IsNull reports whether the reply is a null bulk string or a null array.
// Null values are distinct from empty ones.
func (r *Reply) IsNull() bool {
	return r.null
}

// Text returns the textual payload of a simple string, error or bulk string.
func (r *Reply) Text() string {
	return string(r.str)
}

// Bytes returns the payload of a bulk string. It is nil for a null bulk
// string and empty for an empty one.
func (r *Reply) Bytes() []byte {
	if r.null {
		return nil
	}
	return r.str
}

// Integer returns the value of an integer reply.
func (r *Reply) Integer() int64 {
	return r.num
}

// Size returns the number of elements of an array reply, 0 for anything else.
func (r *Reply) Size() int {
	return len(r.elems)
}

// Element returns the i-th element of an array reply, or the shared nil
// sentinel when i is out of range. It never fails.
func (r *Reply) Element(i int) *Reply {
	if i < 0 || i >= len(r.elems) {
		return &nilReply
	}
	return &r.elems[i]
}

// SetSimpleString makes the reply a simple string.
func (r *Reply) SetSimpleString(s string) {
	r.reset(TypeSimpleString)
	r.str = []byte(s)
}

// SetError makes the reply an error with the given message.
func (r *Reply) SetError(msg string) {
	r.reset(TypeError)
	r.str = []byte(msg)
}

// SetInteger makes the reply an integer.
func (r *Reply) SetInteger(v int64) {
	r.reset(TypeInteger)
	r.num = v
}

// SetBulkString makes the reply a bulk string holding b verbatim.
func (r *Reply) SetBulkString(b []byte) {
	r.reset(TypeBulkString)
	r.str = b
}

// SetNullBulkString makes the reply a null bulk string ($-1).
func (r *Reply) SetNullBulkString() {
	r.reset(TypeBulkString)
	r.null = true
}

// SetArray makes the reply an array of n unset elements and returns the
// elements for the caller to fill in.
func (r *Reply) SetArray(n int) []Reply {
	r.reset(TypeArray)
	r.elems = make([]Reply, n)
	return r.elems
}

// SetNullArray makes the reply a null array (*-1).
func (r *Reply) SetNullArray() {
	r.reset(TypeArray)
	r.null = true
}

func (r *Reply) reset(t ReplyType) {
	*r = Reply{typ: t}
}

// Encode writes the RESP encoding of the reply to w. An unset reply encodes
// as a null bulk string.
func (r *Reply) Encode(w io.Writer) error {
	switch r.typ {
	case TypeSimpleString:
		_, err := w.Write([]byte("+" + string(r.str) + "\r\n"))
		return err
	case TypeError:
		_, err := w.Write([]byte("-" + string(r.str) + "\r\n"))
		return err
	case TypeInteger:
		_, err := w.Write([]byte(":" + strconv.FormatInt(r.num, 10) + "\r\n"))
		return err
	case TypeBulkString:
		if r.null {
			_, err := w.Write([]byte("$-1\r\n"))
			return err
		}
		_, err := w.Write([]byte("$" + strconv.Itoa(len(r.str)) + "\r\n" + string(r.str) + "\r\n"))
		return err
	case TypeArray:
		if r.null {
			_, err := w.Write([]byte("*-1\r\n"))
			return err
		}
		if _, err := w.Write([]byte("*" + strconv.Itoa(len(r.elems)) + "\r\n")); err != nil {
			return err
		}
		for i := range r.elems {
			if err := r.elems[i].Encode(w); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := w.Write([]byte("$-1\r\n"))
		return err
	}
}

// String renders the reply for logs, roughly the way redis-cli prints it.
func (r *Reply) String() string {
	switch r.typ {
	case TypeSimpleString:
		return string(r.str)
	case TypeError:
		return "(error) " + string(r.str)
	case TypeInteger:
		return "(integer) " + strconv.FormatInt(r.num, 10)
	case TypeBulkString:
		if r.null {
			return "(nil)"
		}
		return string(r.str)
	case TypeArray:
		if r.null {
			return "(nil)"
		}
		parts := make([]string, len(r.elems))
		for i := range r.elems {
			parts[i] = r.elems[i].String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "(nil)"
	}
}
