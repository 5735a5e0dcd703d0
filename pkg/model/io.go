package model

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/glorpus-work/lodestone/pkg/errutils"
)

// readJSONFile decodes path into v, classifying failures as filesystem or parse errors.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errutils.FS("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &errutils.ParseError{Source: path, Err: err}
	}
	return nil
}

// IsMissing reports whether err came from a file that does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
