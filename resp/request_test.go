package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func serialize(t *testing.T, req *Request) string {
	var buf Buffer
	err := req.SerializeTo(&buf)
	assert.NoError(t, err)
	return string(buf.Bytes())
}

func TestAddCommand(t *testing.T) {
	req := NewRequest()
	assert.True(t, req.AddCommand("PING"))
	assert.Equal(t, 1, req.CommandSize())
	assert.False(t, req.HasError())
	assert.Equal(t, "*1\r\n$4\r\nPING\r\n", serialize(t, req))

	assert.False(t, req.AddCommand(""))
	assert.True(t, req.HasError())
	assert.Equal(t, 1, req.CommandSize())
}

func TestAddCommandf(t *testing.T) {
	req := NewRequest()
	assert.True(t, req.AddCommandf("SET %s %b", "key", []byte("va\r\nlue")))
	assert.Equal(t, 1, req.CommandSize())
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$7\r\nva\r\nlue\r\n", serialize(t, req))

	req.Reset()
	assert.True(t, req.AddCommandf("INCRBY counter %d", int64(-42)))
	assert.Equal(t, "*3\r\n$6\r\nINCRBY\r\n$7\r\ncounter\r\n$3\r\n-42\r\n", serialize(t, req))

	// a conversion yielding no bytes still yields an element
	req.Reset()
	assert.True(t, req.AddCommandf("SET k %b", []byte{}))
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$0\r\n\r\n", serialize(t, req))
}

func TestAddCommandfErrors(t *testing.T) {
	cases := []struct {
		format string
		args   []interface{}
	}{
		{"SET %z k", []interface{}{"v"}},           // unknown conversion
		{"SET %s %s", []interface{}{"k"}},          // not enough arguments
		{"SET %s", []interface{}{"k", "excess"}},   // too many arguments
		{"SET %b x", []interface{}{"not-bytes"}},   // %b wants []byte
		{"SET %d x", []interface{}{"not-integer"}}, // %d wants integer
		{"GET %", nil},                             // truncated conversion
		{"   ", nil},                               // no tokens at all
	}
	for _, c := range cases {
		req := NewRequest()
		assert.True(t, req.AddCommand("PING"))
		assert.False(t, req.AddCommandf(c.format, c.args...), "format %q", c.format)
		assert.True(t, req.HasError(), "format %q", c.format)
		// the failed call appended nothing
		assert.Equal(t, 1, req.CommandSize(), "format %q", c.format)

		var buf Buffer
		assert.Equal(t, ErrRequestCorrupted, req.SerializeTo(&buf))
		assert.Zero(t, buf.Len())
	}
}

func TestAddCommandByComponents(t *testing.T) {
	req := NewRequest()
	assert.True(t, req.AddCommandByComponents("SET", "k", "v"))
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n", serialize(t, req))

	assert.False(t, req.AddCommandByComponents())
	assert.True(t, req.HasError())
	assert.Equal(t, 1, req.CommandSize())
}

func TestStickyErrorUntilReset(t *testing.T) {
	req := NewRequest()
	assert.False(t, req.AddCommandByComponents())
	assert.True(t, req.HasError())

	// the flag survives later successful-looking adds
	assert.True(t, req.AddCommand("PING"))
	assert.True(t, req.HasError())
	var buf Buffer
	assert.Equal(t, ErrRequestCorrupted, req.SerializeTo(&buf))

	req.Reset()
	assert.False(t, req.HasError())
	assert.Zero(t, req.CommandSize())
	assert.True(t, req.AddCommand("PING"))
	assert.NoError(t, req.SerializeTo(&buf))
}

func TestPipelinedCommands(t *testing.T) {
	req := NewRequest()
	assert.True(t, req.AddCommand("PING"))
	assert.True(t, req.AddCommandByComponents("SET", "k", "v"))
	assert.True(t, req.AddCommandf("GET %s", "k"))
	assert.Equal(t, 3, req.CommandSize())
	assert.Equal(t,
		"*1\r\n$4\r\nPING\r\n"+
			"*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"+
			"*2\r\n$3\r\nGET\r\n$1\r\nk\r\n",
		serialize(t, req))
}
