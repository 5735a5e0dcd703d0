package errutils

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))

	base := fmt.Errorf("boom")
	err := Wrapf(base, "step %d", 2)
	assert.EqualError(t, err, "step 2: boom")
	assert.ErrorIs(t, err, base)
}

func TestTransportError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		wantStatus int
	}{
		{name: "404", err: &TransportError{URL: "https://x", StatusCode: 404}, notFound: true, wantStatus: 404},
		{name: "wrapped 404", err: Wrap(&TransportError{URL: "https://x", StatusCode: 404}, "listing"), notFound: true, wantStatus: 404},
		{name: "503", err: &TransportError{URL: "https://x", StatusCode: 503}, wantStatus: 503},
		{name: "network", err: &TransportError{URL: "https://x", Err: fmt.Errorf("connection refused")}},
		{name: "unrelated", err: fmt.Errorf("other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantStatus, StatusCode(tt.err))
		})
	}

	assert.ErrorIs(t, &TransportError{URL: "u", StatusCode: 500}, ErrTransport)
}

func TestTypedErrorsUnwrap(t *testing.T) {
	fsErr := FS("open", "/tmp/x", fs.ErrNotExist)
	assert.ErrorIs(t, fsErr, ErrFilesystem)
	assert.ErrorIs(t, fsErr, fs.ErrNotExist)
	assert.Contains(t, fsErr.Error(), "/tmp/x")
	assert.NoError(t, FS("open", "/tmp/x", nil))

	parseErr := &ParseError{Source: "manifest", Err: fmt.Errorf("unexpected EOF")}
	assert.ErrorIs(t, parseErr, ErrParse)

	subErr := &SubprocessError{Command: "java", ExitCode: 1, Stderr: "line one\nfatal: bad jar\n"}
	assert.ErrorIs(t, subErr, ErrSubprocess)
	assert.Equal(t, "java exited with status 1: fatal: bad jar", subErr.Error())

	var target *SubprocessError
	assert.True(t, errors.As(Wrap(subErr, "forge"), &target))
	assert.Equal(t, "line one\nfatal: bad jar\n", target.Stderr)
}

func TestDomainHelpers(t *testing.T) {
	assert.ErrorIs(t, ErrVersionNotFoundWithID("1.99"), ErrVersionNotFound)
	assert.ErrorIs(t, ErrInstanceExistsWithName("a"), ErrInstanceExists)
	assert.ErrorIs(t, ErrNoLoaderVersionFor("fabric", "b1.7.3"), ErrNoLoaderVersion)
	assert.Contains(t, ErrServerExistsWithName("srv").Error(), "srv")
}
