package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML descriptor. Unknown keys are rejected.
func ParseYAML(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	s := &Schema{}
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("load: decode yaml: empty document")
		}
		return nil, fmt.Errorf("load: decode yaml: %w", err)
	}
	return s, nil
}

// UnmarshalYAML accepts both integer and string scalars.
func (c *Count) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: count must be a scalar", n.Line)
	}
	*c = Count(n.Value)
	return nil
}

// ParseJSON decodes a JSON descriptor.
func ParseJSON(data []byte) (*Schema, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("load: decode json: invalid document")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New("load: decode json: document must be an object")
	}
	s := &Schema{
		Root:      doc.Get("root").String(),
		Delimiter: doc.Get("delimiter").String(),
	}
	for i, rv := range doc.Get("records").Array() {
		r := &Record{Name: rv.Get("name").String()}
		for j, lv := range rv.Get("lines").Array() {
			l, err := jsonLine(lv)
			if err != nil {
				return nil, fmt.Errorf("load: decode json: records[%d].lines[%d]: %w", i, j, err)
			}
			r.Lines = append(r.Lines, l)
		}
		s.Records = append(s.Records, r)
	}
	return s, nil
}

func jsonLine(v gjson.Result) (*Line, error) {
	if !v.IsObject() {
		return nil, errors.New("line must be an object")
	}
	l := &Line{Empty: v.Get("empty").Bool()}
	for _, fv := range v.Get("fields").Array() {
		l.Fields = append(l.Fields, &Field{
			Name: fv.Get("name").String(),
			Type: fv.Get("type").String(),
		})
	}
	if rv := v.Get("repeat"); rv.Exists() {
		if !rv.IsObject() {
			return nil, errors.New("repeat must be an object")
		}
		l.Repeat = &Repeat{
			Name:  rv.Get("name").String(),
			Type:  rv.Get("type").String(),
			Split: rv.Get("split").Bool(),
		}
		switch cv := rv.Get("count"); cv.Type {
		case gjson.Number:
			l.Repeat.Count = Count(cv.Raw)
		case gjson.String:
			l.Repeat.Count = Count(cv.Str)
		case gjson.Null:
		default:
			return nil, fmt.Errorf("count must be a number or a string, got %s", cv.Raw)
		}
	}
	return l, nil
}
