package resp

import (
	"bytes"
	"errors"
	"strconv"
)

var (
	// ErrInvalidProtocol reports bytes outside the RESP grammar. Once
	// ConsumePartial returned it the decoder is terminal: the byte offset is
	// desynchronized beyond repair and the owning connection must be torn
	// down.
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrNeedMoreData reports that the buffer ended inside a reply. The
	// decoder stays usable; append more bytes and call again.
	ErrNeedMoreData = errors.New("need more data")
)

// errIncomplete marks a partial trailing reply during parsing. It never
// escapes ConsumePartial.
var errIncomplete = errors.New("incomplete reply")

// Response incrementally decodes a stream of pipelined RESP replies. The
// first reply is stored inline so the common single-reply case allocates
// nothing extra; overflow replies live in a slice owned by the Response.
// Every *Reply handed out is a borrow: it becomes invalid when the Response
// is dropped.
//
// A Response only grows and is not safe for concurrent use.
type Response struct {
	first  Reply
	others []Reply
	nreply int
	broken bool
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// ConsumePartial parses up to count additional complete replies from buf and
// consumes exactly their bytes. Bytes of an incomplete trailing reply are
// left in buf, neither consumed nor duplicated by the next call.
//
// It returns nil when count new replies were completed, ErrNeedMoreData when
// fewer could be (the completed ones are retained), and ErrInvalidProtocol
// when the bytes do not form valid RESP, after which every further call
// fails the same way.
func (r *Response) ConsumePartial(buf *Buffer, count int) error {
	if r.broken {
		return ErrInvalidProtocol
	}
	for i := 0; i < count; i++ {
		var reply Reply
		n, err := parseReply(buf.Bytes(), &reply)
		if err == errIncomplete {
			return ErrNeedMoreData
		}
		if err != nil {
			r.broken = true
			return ErrInvalidProtocol
		}
		buf.Discard(n)
		if r.nreply == 0 {
			r.first = reply
		} else {
			r.others = append(r.others, reply)
		}
		r.nreply++
	}
	return nil
}

// ReplySize returns the number of complete replies parsed so far.
func (r *Response) ReplySize() int {
	return r.nreply
}

// Reply returns the i-th reply in arrival order. An out-of-range index
// returns the shared nil sentinel, never an error.
func (r *Response) Reply(i int) *Reply {
	if i < 0 || i >= r.nreply {
		return &nilReply
	}
	if i == 0 {
		return &r.first
	}
	return &r.others[i-1]
}

// parseReply decodes one reply from the head of data into dst and returns
// the number of bytes it occupies. It fails with errIncomplete when data
// ends inside the reply and with ErrInvalidProtocol when the bytes are not
// RESP. Payloads are copied so they outlive the caller's buffer.
func parseReply(data []byte, dst *Reply) (int, error) {
	if len(data) == 0 {
		return 0, errIncomplete
	}
	line, n, err := readLine(data)
	if err != nil {
		return 0, err
	}
	switch data[0] {
	case '+':
		dst.typ = TypeSimpleString
		dst.str = append([]byte(nil), line[1:]...)
		return n, nil
	case '-':
		dst.typ = TypeError
		dst.str = append([]byte(nil), line[1:]...)
		return n, nil
	case ':':
		v, err := strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil {
			return 0, ErrInvalidProtocol
		}
		dst.typ = TypeInteger
		dst.num = v
		return n, nil
	case '$':
		size, err := parseLength(line[1:])
		if err != nil {
			return 0, err
		}
		dst.typ = TypeBulkString
		if size == -1 {
			dst.null = true
			return n, nil
		}
		if len(data) < n+size+2 {
			return 0, errIncomplete
		}
		if data[n+size] != '\r' || data[n+size+1] != '\n' {
			return 0, ErrInvalidProtocol
		}
		dst.str = append([]byte(nil), data[n:n+size]...)
		return n + size + 2, nil
	case '*':
		size, err := parseLength(line[1:])
		if err != nil {
			return 0, err
		}
		dst.typ = TypeArray
		if size == -1 {
			dst.null = true
			return n, nil
		}
		elems := make([]Reply, size)
		pos := n
		for i := 0; i < size; i++ {
			consumed, err := parseReply(data[pos:], &elems[i])
			if err != nil {
				return 0, err
			}
			pos += consumed
		}
		dst.elems = elems
		return pos, nil
	default:
		return 0, ErrInvalidProtocol
	}
}

// readLine returns the first CRLF-terminated line without its terminator and
// the number of bytes the full line occupies.
func readLine(data []byte) ([]byte, int, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, 0, errIncomplete
	}
	if idx == 0 || data[idx-1] != '\r' {
		return nil, 0, ErrInvalidProtocol
	}
	return data[:idx-1], idx + 1, nil
}

// parseLength parses a bulk or array length field. Anything below -1 is
// outside the grammar.
func parseLength(b []byte) (int, error) {
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, ErrInvalidProtocol
	}
	if v < -1 {
		return 0, ErrInvalidProtocol
	}
	return v, nil
}
