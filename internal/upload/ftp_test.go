package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFTPConn struct {
	loginErr error
	storErr  error

	user    string
	dirs    []string
	stored  map[string]string
	quitted bool
}

func (c *fakeFTPConn) Login(user, _ string) error {
	c.user = user
	return c.loginErr
}

func (c *fakeFTPConn) MakeDir(path string) error {
	c.dirs = append(c.dirs, path)
	return errors.New("550 directory already exists")
}

func (c *fakeFTPConn) Stor(path string, r io.Reader) error {
	if c.storErr != nil {
		return c.storErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.stored[path] = string(data)
	return nil
}

func (c *fakeFTPConn) Quit() error {
	c.quitted = true
	return nil
}

func newTestFTPBackend(conn *fakeFTPConn) (*FTPBackend, *string) {
	var dialedAddr string
	backend := NewFTPBackend(FTPConfig{
		Host:          "ftp.example.com",
		Port:          "21",
		User:          "uploader",
		Password:      "secret",
		Folder:        "incidents",
		PublicBaseURL: "https://cdn.example.com",
	})
	backend.dial = func(_ context.Context, addr string) (ftpConn, error) {
		dialedAddr = addr
		return conn, nil
	}
	return backend, &dialedAddr
}

func TestFTPBackendPut_Success(t *testing.T) {
	conn := &fakeFTPConn{stored: make(map[string]string)}
	backend, addr := newTestFTPBackend(conn)

	url, err := backend.Put(context.Background(), "1700000000-abc.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/incidents/1700000000-abc.jpg", url)
	assert.Equal(t, "ftp.example.com:21", *addr)
	assert.Equal(t, "uploader", conn.user)
	assert.Equal(t, []string{"incidents"}, conn.dirs)
	assert.Equal(t, "jpeg-bytes", conn.stored["incidents/1700000000-abc.jpg"])
	assert.True(t, conn.quitted)
}

func TestFTPBackendPut_LoginError(t *testing.T) {
	conn := &fakeFTPConn{stored: make(map[string]string), loginErr: errors.New("530 login incorrect")}
	backend, _ := newTestFTPBackend(conn)

	_, err := backend.Put(context.Background(), "a.png", "image/png", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to login to FTP")
	assert.Empty(t, conn.stored)
	assert.True(t, conn.quitted)
}

func TestFTPBackendPut_StorError(t *testing.T) {
	conn := &fakeFTPConn{stored: make(map[string]string), storErr: errors.New("552 quota exceeded")}
	backend, _ := newTestFTPBackend(conn)

	_, err := backend.Put(context.Background(), "a.png", "image/png", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestFTPBackendPut_DialError(t *testing.T) {
	backend := NewFTPBackend(FTPConfig{Host: "ftp.example.com", Port: "21"})
	backend.dial = func(context.Context, string) (ftpConn, error) {
		return nil, errors.New("connection refused")
	}

	_, err := backend.Put(context.Background(), "a.png", "image/png", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to connect to FTP")
}
