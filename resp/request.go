package resp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrRequestCorrupted is returned by SerializeTo after any Add call failed,
// so a corrupted request can never be transmitted by accident.
var ErrRequestCorrupted = errors.New("request corrupted by a failed add, Reset before reuse")

// Request builds a buffer of pipelined RESP commands. Commands are encoded
// eagerly by the Add calls and written out once with SerializeTo.
//
// A failed Add never writes a partial command; it sets a sticky error flag
// instead. The flag persists until Reset, and while it is set SerializeTo
// refuses to write anything. Commands encoded before the failure stay intact.
//
// A Request is owned by a single in-flight request and is not safe for
// concurrent use.
type Request struct {
	buf      bytes.Buffer
	ncommand int
	hasError bool
}

// NewRequest returns an empty request.
func NewRequest() *Request {
	return &Request{}
}

// AddCommand appends a command made of the single token, such as PING.
// Commands with arguments go through AddCommandf or AddCommandByComponents.
func (r *Request) AddCommand(token string) bool {
	if len(token) == 0 {
		r.hasError = true
		return false
	}
	r.appendCommand([][]byte{[]byte(token)})
	return true
}

// AddCommandf appends a command built from a printf-like format, compatible
// with the hiredis conversions: %b consumes a []byte and is binary safe,
// %s, %d, %i, %u and %f behave as textual conversions and %% is a literal
// percent. Tokens are separated by spaces and every conversion yields exactly
// one token element. A malformed format or a mismatched argument sets the
// sticky error flag and appends nothing.
func (r *Request) AddCommandf(format string, args ...interface{}) bool {
	components, err := formatCommand(format, args)
	if err != nil {
		r.hasError = true
		return false
	}
	r.appendCommand(components)
	return true
}

// AddCommandByComponents appends a command of exactly the given components,
// taken verbatim (binary safe). Zero components is an error.
func (r *Request) AddCommandByComponents(components ...string) bool {
	if len(components) == 0 {
		r.hasError = true
		return false
	}
	cs := make([][]byte, len(components))
	for i := range components {
		cs[i] = []byte(components[i])
	}
	r.appendCommand(cs)
	return true
}

// appendCommand encodes one complete command array. Callers validated the
// components already, so this cannot fail half way.
func (r *Request) appendCommand(components [][]byte) {
	r.buf.WriteByte('*')
	r.buf.WriteString(strconv.Itoa(len(components)))
	r.buf.WriteString("\r\n")
	for _, c := range components {
		r.buf.WriteByte('$')
		r.buf.WriteString(strconv.Itoa(len(c)))
		r.buf.WriteString("\r\n")
		r.buf.Write(c)
		r.buf.WriteString("\r\n")
	}
	r.ncommand++
}

// CommandSize returns the number of successfully added commands.
func (r *Request) CommandSize() int {
	return r.ncommand
}

// HasError reports whether a previous Add call failed. The flag is sticky
// and only cleared by Reset.
func (r *Request) HasError() bool {
	return r.hasError
}

// SerializeTo writes the encoded commands to w. It returns
// ErrRequestCorrupted without writing anything if the sticky error flag is
// set.
func (r *Request) SerializeTo(w io.Writer) error {
	if r.hasError {
		return ErrRequestCorrupted
	}
	_, err := w.Write(r.buf.Bytes())
	return err
}

// Reset drops all encoded commands and clears the sticky error flag.
func (r *Request) Reset() {
	r.buf.Reset()
	r.ncommand = 0
	r.hasError = false
}

// formatCommand expands a hiredis-style format into command components.
// It either returns the complete component list or an error, never a
// partial result.
func formatCommand(format string, args []interface{}) ([][]byte, error) {
	var components [][]byte
	var cur []byte
	// pending marks a token in progress even when a conversion produced
	// zero bytes, so "%b" with an empty payload still yields an element.
	pending := false
	next := 0

	take := func() (interface{}, error) {
		if next >= len(args) {
			return nil, fmt.Errorf("not enough arguments for format %q", format)
		}
		arg := args[next]
		next++
		return arg, nil
	}
	flush := func() {
		if pending || len(cur) > 0 {
			components = append(components, cur)
			cur = nil
			pending = false
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == ' ' {
			flush()
			continue
		}
		if c != '%' {
			cur = append(cur, c)
			continue
		}
		i++
		if i >= len(format) {
			return nil, fmt.Errorf("truncated conversion in format %q", format)
		}
		switch format[i] {
		case '%':
			cur = append(cur, '%')
			continue
		case 'b':
			arg, err := take()
			if err != nil {
				return nil, err
			}
			b, ok := arg.([]byte)
			if !ok {
				return nil, fmt.Errorf("%%b wants []byte, got %T", arg)
			}
			cur = append(cur, b...)
		case 's':
			arg, err := take()
			if err != nil {
				return nil, err
			}
			switch v := arg.(type) {
			case string:
				cur = append(cur, v...)
			case []byte:
				cur = append(cur, v...)
			default:
				return nil, fmt.Errorf("%%s wants string, got %T", arg)
			}
		case 'd', 'i':
			arg, err := take()
			if err != nil {
				return nil, err
			}
			v, err := toInt64(arg)
			if err != nil {
				return nil, err
			}
			cur = strconv.AppendInt(cur, v, 10)
		case 'u':
			arg, err := take()
			if err != nil {
				return nil, err
			}
			v, err := toUint64(arg)
			if err != nil {
				return nil, err
			}
			cur = strconv.AppendUint(cur, v, 10)
		case 'f':
			arg, err := take()
			if err != nil {
				return nil, err
			}
			switch v := arg.(type) {
			case float32:
				cur = strconv.AppendFloat(cur, float64(v), 'f', -1, 32)
			case float64:
				cur = strconv.AppendFloat(cur, v, 'f', -1, 64)
			default:
				return nil, fmt.Errorf("%%f wants float, got %T", arg)
			}
		default:
			return nil, fmt.Errorf("unknown conversion %%%c", format[i])
		}
		pending = true
	}
	flush()

	if next != len(args) {
		return nil, fmt.Errorf("%d excessive arguments for format %q", len(args)-next, format)
	}
	if len(components) == 0 {
		return nil, errors.New("empty command")
	}
	return components, nil
}

func toInt64(arg interface{}) (int64, error) {
	switch v := arg.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("%%d wants integer, got %T", arg)
	}
}

func toUint64(arg interface{}) (uint64, error) {
	switch v := arg.(type) {
	case uint:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	default:
		return 0, fmt.Errorf("%%u wants unsigned integer, got %T", arg)
	}
}
