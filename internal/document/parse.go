package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

// ErrParse is returned for malformed documents.
var ErrParse = errors.New("malformed document")

// ParseError identifies which document of a multi-document stream failed.
type ParseError struct {
	Doc int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse document %d: %v", e.Doc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Parse decodes every YAML document in text. Empty and null documents yield
// an empty mapping; any other non-mapping root is an error.
func Parse(text string) ([]tree.Mapping, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var docs []tree.Mapping
	for i := 0; ; i++ {
		var raw any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Doc: i, Err: err}
		}

		m, err := tree.MappingFromNative(raw)
		if err != nil {
			return nil, &ParseError{Doc: i, Err: err}
		}
		docs = append(docs, m)
	}
	return docs, nil
}
