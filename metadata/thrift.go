package metadata

import (
	"bytes"
	"fmt"
	"io"

	"github.com/segmentio/encoding/thrift"
)

// maxThriftDepth bounds struct and container nesting in footers and page
// headers. Known structures nest less than ten levels deep.
const maxThriftDepth = 64

var protocol thrift.CompactProtocol

// unmarshal decodes the compact-protocol struct at the start of buf into v
// and returns the number of bytes it occupied.
func unmarshal(buf []byte, v any) (int, error) {
	src := bytes.NewReader(buf)
	d := thrift.NewDecoder(&boundedReader{base: protocol.NewReader(src), src: src, pending: thrift.STRUCT})
	d.SetStrict(true)
	if err := d.Decode(v); err != nil {
		return 0, err
	}
	return len(buf) - src.Len(), nil
}

// Marshal encodes the footer metadata with the compact protocol. Logical
// types are written from SchemaElement.LogicalType.
func (m *FileMetaData) Marshal() ([]byte, error) {
	c := *m
	c.SchemaElements = make([]SchemaElement, len(m.SchemaElements))
	for i, el := range m.SchemaElements {
		if el.LogicalType != nil {
			el.Annotation = annotationOf(el.LogicalType)
		}
		c.SchemaElements[i] = el
	}
	return thrift.Marshal(&protocol, &c)
}

// Marshal encodes the page header with the compact protocol.
func (h *PageHeader) Marshal() ([]byte, error) {
	return thrift.Marshal(&protocol, h)
}

type frame struct {
	container bool

	// Containers only: values left to read, and their types. Map values
	// alternate between key and val.
	total, remaining int
	key, val         thrift.Type
}

func (f *frame) next() thrift.Type {
	f.remaining--
	if (f.total-f.remaining)%2 == 0 {
		return f.val
	}
	return f.key
}

// boundedReader tracks the value being decoded so that lengths and
// element counts can be checked against the bytes left in the buffer and
// nesting stays below maxThriftDepth. Coalesced boolean fields are
// answered from the field header when skipped.
type boundedReader struct {
	base thrift.Reader
	src  *bytes.Reader

	stack []frame

	// pending is the type of the field value the next read starts, or
	// STOP inside a struct between fields.
	pending thrift.Type
}

// begin accounts for one read and returns the type of the value it
// starts, or STOP when it continues the current struct.
func (r *boundedReader) begin() (thrift.Type, bool, error) {
	if r.pending != thrift.STOP {
		t := r.pending
		r.pending = thrift.STOP
		return t, true, nil
	}
	if n := len(r.stack); n > 0 {
		top := &r.stack[n-1]
		if !top.container {
			return thrift.STOP, false, nil
		}
		if top.remaining > 0 {
			return top.next(), false, nil
		}
	}
	return thrift.STOP, false, fmt.Errorf("thrift: read past the end of the value")
}

func (r *boundedReader) push(f frame) error {
	if len(r.stack) >= maxThriftDepth {
		return fmt.Errorf("thrift: nesting exceeds %d levels", maxThriftDepth)
	}
	r.stack = append(r.stack, f)
	return nil
}

// complete pops every container whose last element has been read.
func (r *boundedReader) complete() {
	for n := len(r.stack); n > 0; n = len(r.stack) {
		top := r.stack[n-1]
		if !top.container || top.remaining > 0 {
			return
		}
		r.stack = r.stack[:n-1]
	}
}

func (r *boundedReader) value() (thrift.Type, bool, error) {
	t, fromField, err := r.begin()
	if err == nil && t == thrift.STOP {
		err = fmt.Errorf("thrift: value read outside of a field")
	}
	return t, fromField, err
}

func (r *boundedReader) ReadField() (thrift.Field, error) {
	t, _, err := r.begin()
	if err != nil {
		return thrift.Field{}, err
	}
	switch t {
	case thrift.STRUCT:
		if err := r.push(frame{}); err != nil {
			return thrift.Field{}, err
		}
	case thrift.STOP, thrift.TRUE, thrift.FALSE:
		// Between fields, or after a coalesced boolean field.
	default:
		return thrift.Field{}, fmt.Errorf("thrift: expected %s value, found a struct", t)
	}
	f, err := r.base.ReadField()
	if err != nil {
		return f, err
	}
	if f.Type == thrift.STOP {
		r.stack = r.stack[:len(r.stack)-1]
		r.complete()
		return f, nil
	}
	r.pending = f.Type
	return f, nil
}

func (r *boundedReader) ReadBool() (bool, error) {
	t, fromField, err := r.value()
	if err != nil {
		return false, err
	}
	defer r.complete()
	if fromField && (t == thrift.TRUE || t == thrift.FALSE) {
		return t == thrift.TRUE, nil
	}
	return r.base.ReadBool()
}

func (r *boundedReader) ReadInt8() (int8, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.base.ReadInt8()
}

func (r *boundedReader) ReadInt16() (int16, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.base.ReadInt16()
}

func (r *boundedReader) ReadInt32() (int32, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.base.ReadInt32()
}

func (r *boundedReader) ReadInt64() (int64, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.base.ReadInt64()
}

func (r *boundedReader) ReadFloat64() (float64, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.base.ReadFloat64()
}

// ReadLength is how unknown binary fields are skipped: the caller discards
// n bytes from the underlying reader itself.
func (r *boundedReader) ReadLength() (int, error) {
	if _, _, err := r.value(); err != nil {
		return 0, err
	}
	defer r.complete()
	return r.length()
}

func (r *boundedReader) length() (int, error) {
	n, err := r.base.ReadLength()
	if err != nil {
		return 0, err
	}
	if n > r.src.Len() {
		return 0, fmt.Errorf("thrift: binary length %d exceeds the %d bytes left: %w", n, r.src.Len(), io.ErrUnexpectedEOF)
	}
	return n, nil
}

func (r *boundedReader) ReadBytes() ([]byte, error) {
	if _, _, err := r.value(); err != nil {
		return nil, err
	}
	defer r.complete()
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	_, err = io.ReadFull(r.src, b)
	return b, err
}

func (r *boundedReader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}

func (r *boundedReader) ReadList() (thrift.List, error) {
	if _, _, err := r.value(); err != nil {
		return thrift.List{}, err
	}
	l, err := r.base.ReadList()
	if err != nil {
		return l, err
	}
	// Every element takes at least one byte.
	if int(l.Size) > r.src.Len() {
		return l, fmt.Errorf("thrift: list of %d elements exceeds the %d bytes left: %w", l.Size, r.src.Len(), io.ErrUnexpectedEOF)
	}
	n := int(l.Size)
	if err := r.push(frame{container: true, total: n, remaining: n, key: l.Type, val: l.Type}); err != nil {
		return l, err
	}
	r.complete()
	return l, nil
}

func (r *boundedReader) ReadSet() (thrift.Set, error) {
	l, err := r.ReadList()
	return thrift.Set(l), err
}

func (r *boundedReader) ReadMap() (thrift.Map, error) {
	if _, _, err := r.value(); err != nil {
		return thrift.Map{}, err
	}
	m, err := r.base.ReadMap()
	if err != nil {
		return m, err
	}
	if 2*int(m.Size) > r.src.Len() {
		return m, fmt.Errorf("thrift: map of %d entries exceeds the %d bytes left: %w", m.Size, r.src.Len(), io.ErrUnexpectedEOF)
	}
	n := 2 * int(m.Size)
	if err := r.push(frame{container: true, total: n, remaining: n, key: m.Key, val: m.Value}); err != nil {
		return m, err
	}
	r.complete()
	return m, nil
}

func (r *boundedReader) Protocol() thrift.Protocol { return r.base.Protocol() }

func (r *boundedReader) Reader() io.Reader { return r.base.Reader() }

func (r *boundedReader) ReadMessage() (thrift.Message, error) { return r.base.ReadMessage() }
