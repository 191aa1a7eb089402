// Package config reads namespaced YAML documents and loosely typed attribute maps.
package config

import (
	"bytes"
	"io"
	"sort"

	"github.com/a8m/envsubst"
	"github.com/edaniels/golog"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Reader reads values out of a YAML document by namespace and key.
type Reader struct {
	path   string
	doc    map[string]interface{}
	logger golog.Logger
}

// Read reads a document from the given file. Environment variables are expanded before parsing.
func Read(filePath string, logger golog.Logger) (*Reader, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a document from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger golog.Logger) (*Reader, error) {
	doc := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "cannot parse %s", originalPath)
	}
	return &Reader{path: originalPath, doc: doc, logger: logger}, nil
}

// Path returns the file the document was read from.
func (r *Reader) Path() string {
	return r.path
}

func (r *Reader) node(namespace []string) (map[string]interface{}, bool) {
	node := r.doc
	for _, ns := range namespace {
		child, ok := node[ns].(map[string]interface{})
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

func (r *Reader) lookup(namespace []string, key string) (interface{}, bool) {
	node, ok := r.node(namespace)
	if !ok {
		return nil, false
	}
	v, ok := node[key]
	return v, ok && v != nil
}

// Has returns whether the key exists in the namespace.
func (r *Reader) Has(namespace []string, key string) bool {
	_, ok := r.lookup(namespace, key)
	return ok
}

// Keys returns the sorted keys of a namespace.
func (r *Reader) Keys(namespace []string) []string {
	node, ok := r.node(namespace)
	if !ok {
		return nil
	}
	keys := lo.Keys(node)
	sort.Strings(keys)
	return keys
}

// Decode decodes the value of a required key into out. A missing key is logged and reported as a
// *MissingKeyError.
func (r *Reader) Decode(namespace []string, key string, out interface{}) error {
	v, ok := r.lookup(namespace, key)
	if !ok {
		err := NewMissingKeyError(r.path, namespace, key)
		r.logger.Errorw("missing required key", "key", err.FullKey(), "path", r.path)
		return err
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(v); err != nil {
		return errors.Wrapf(err, "cannot decode %q", joinKey(namespace, key))
	}
	return nil
}

// Float reads a required number.
func (r *Reader) Float(namespace []string, key string) (float64, error) {
	var f float64
	err := r.Decode(namespace, key, &f)
	return f, err
}

// Int reads a required integer.
func (r *Reader) Int(namespace []string, key string) (int, error) {
	var i int
	err := r.Decode(namespace, key, &i)
	return i, err
}

// Floats reads a required list of exactly n numbers.
func (r *Reader) Floats(namespace []string, key string, n int) ([]float64, error) {
	var fs []float64
	if err := r.Decode(namespace, key, &fs); err != nil {
		return nil, err
	}
	if len(fs) != n {
		return nil, errors.Errorf("%q must have %d elements, got %d", joinKey(namespace, key), n, len(fs))
	}
	return fs, nil
}

// ReadAttributes reads an attribute map from a JSON or YAML file with environment variables expanded.
func ReadAttributes(filePath string) (AttributeMap, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	attrs := AttributeMap{}
	if err := yaml.Unmarshal(buf, &attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", filePath)
	}
	return attrs, nil
}
