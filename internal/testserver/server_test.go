package testserver

import (
	"io"
	"net/http"
	"testing"

	"wspick/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleScript(t *testing.T) {
	s := &Server{opts: Options{Tree: DefaultTree(), RejectHostname: "bad"}}
	c := &conn{}

	reply, _ := s.handle(c, "list")
	assert.Equal(t, "error: not connected", reply)

	reply, _ = s.handle(c, `connect {"hostname":"bad","location":"/"}`)
	assert.Equal(t, "error: dial bad: connection refused", reply)

	reply, _ = s.handle(c, `connect {"hostname":"ok","location":"docs"}`)
	assert.Equal(t, "connected", reply)
	assert.Equal(t, "/docs", c.cwd)

	reply, _ = s.handle(c, `enter {"name":"img","mode":2147483648}`)
	assert.Equal(t, "entered", reply)
	assert.Equal(t, "/docs/img", c.cwd)

	reply, _ = s.handle(c, `enter {"name":"nope","mode":2147483648}`)
	assert.Equal(t, "error: cannot enter /docs/img/nope", reply)

	reply, _ = s.handle(c, `download {"name":"logo.png","mode":384}`)
	assert.Equal(t, "download /files/docs/img/logo.png", reply)

	reply, _ = s.handle(c, `download-bulk [{"name":"b","mode":0},{"name":"a","mode":0}]`)
	assert.Equal(t, "download /files/docs/img/bulk.tar?names=a%2Cb", reply)

	reply, closeAfter := s.handle(c, "disconnect")
	assert.Equal(t, "disconnected", reply)
	assert.False(t, closeAfter)
	assert.False(t, c.connected)

	reply, _ = s.handle(c, "bogus")
	assert.Contains(t, reply, "error: ")
}

func TestHandleEchoesEnteredPath(t *testing.T) {
	s := &Server{opts: Options{Tree: Tree{"/": nil, "/a b": {}}, EchoEnteredPath: true}}
	c := &conn{}

	s.handle(c, `connect {"hostname":"h","location":""}`)
	reply, _ := s.handle(c, `enter {"name":"a b","mode":2147483648}`)
	assert.Equal(t, "entered /a b", reply)

	reply, _ = s.handle(c, "list")
	assert.Equal(t, "list []", reply)
}

func TestServesFiles(t *testing.T) {
	srv := New(Options{Tree: Tree{"/": {{Name: "x.txt", Mode: models.Mode(0o644)}}}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/files/dir/x.txt")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "content of /dir/x.txt", string(body))
	assert.Equal(t, `attachment; filename="x.txt"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "ws"+srv.URL[len("http"):]+"/session", srv.Endpoint())
}
