package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
	"github.com/sgostarter/libtemporal/temporal"
)

const Version = 1

const (
	endianXDR = 0
	endianNDR = 1
)

const (
	flagBBox     = 0x01
	flagGeodetic = 0x02
	flagLinear   = 0x04
	flagLowerInc = 0x08
	flagUpperInc = 0x10
	flagMetadata = 0x20

	knownFlags = flagBBox | flagGeodetic | flagLinear | flagLowerInc | flagUpperInc | flagMetadata
)

// Variant selects the optional parts of the encoding. The zero Variant is little
// endian without bounding box and metadata.
type Variant uint8

const (
	// VariantXDR writes big endian.
	VariantXDR Variant = 1 << iota
	// VariantBBox appends the cached bounding box to sequence and set bodies.
	VariantBBox
	// VariantExtended writes the carrier's type metadata when it has any.
	VariantExtended
)

func (v Variant) order() (binary.AppendByteOrder, byte) {
	if v&VariantXDR != 0 {
		return binary.BigEndian, endianXDR
	}

	return binary.LittleEndian, endianNDR
}

type header struct {
	endian   byte
	subtype  temporal.Subtype
	flags    byte
	metadata uint32
}

func (h header) has(flag byte) bool {
	return h.flags&flag != 0
}

func (h header) interp() carrier.Interp {
	if h.has(flagLinear) {
		return carrier.Linear
	}

	return carrier.Step
}

// Encode writes temp in the canonical binary layout.
func Encode[V any](temp temporal.Temporal[V], variant Variant) []byte {
	order, endian := variant.order()
	c := temp.Carrier()

	var flags byte

	if temp.Interp() == carrier.Linear {
		flags |= flagLinear
	}

	withBox := variant&VariantBBox != 0 && temp.Subtype() != temporal.SubtypeInstant
	if withBox {
		flags |= flagBBox
	}

	ext, extended := c.(carrier.Extended)
	if extended && variant&VariantExtended != 0 {
		flags |= flagMetadata

		if ext.Geodetic() {
			flags |= flagGeodetic
		}
	} else {
		extended = false
	}

	seq, isSeq := temp.(*temporal.TSequence[V])
	if isSeq {
		flags |= boundsFlags(seq.LowerInc(), seq.UpperInc())
	}

	buf := []byte{Version<<4 | endian, byte(temp.Subtype()), flags}

	if extended {
		buf = order.AppendUint32(buf, ext.TypeMetadata())
	}

	switch t := temp.(type) {
	case *temporal.TInstant[V]:
		buf = appendInstant(buf, c, order, temporal.Instant[V]{Value: t.Value(), T: t.T()})
	case *temporal.TSequence[V]:
		buf = appendInstants(buf, c, order, t.Instants())
	case *temporal.TSequenceSet[V]:
		buf = order.AppendUint32(buf, uint32(t.NumSequences()))

		for _, s := range t.Sequences() {
			buf = append(buf, boundsFlags(s.LowerInc(), s.UpperInc()))
			buf = appendInstants(buf, c, order, s.Instants())
		}
	}

	if withBox {
		buf = appendBox(buf, c, order, temp.BBox())
	}

	return buf
}

func boundsFlags(lowerInc, upperInc bool) (b byte) {
	if lowerInc {
		b |= flagLowerInc
	}

	if upperInc {
		b |= flagUpperInc
	}

	return
}

func appendInstant[V any](dst []byte, c carrier.Carrier[V], order binary.AppendByteOrder, inst temporal.Instant[V]) []byte {
	dst = order.AppendUint64(dst, uint64(inst.T))

	return c.AppendValue(dst, order, inst.Value)
}

func appendInstants[V any](dst []byte, c carrier.Carrier[V], order binary.AppendByteOrder,
	instants []temporal.Instant[V]) []byte {
	dst = order.AppendUint32(dst, uint32(len(instants)))

	for _, inst := range instants {
		dst = appendInstant(dst, c, order, inst)
	}

	return dst
}

func appendBox[V any](dst []byte, c carrier.Carrier[V], order binary.AppendByteOrder, box temporal.Box[V]) []byte {
	dst = order.AppendUint64(dst, uint64(box.Period.Lower))
	dst = order.AppendUint64(dst, uint64(box.Period.Upper))
	dst = append(dst, boundsFlags(box.Period.LowerInc, box.Period.UpperInc))
	dst = c.AppendValue(dst, order, box.Min)

	return c.AppendValue(dst, order, box.Max)
}

//
//
//

// Decode reads a value written by Encode. The carrier must be the one the value
// was encoded with; extended metadata is checked against it.
func Decode[V any](c carrier.Carrier[V], b []byte) (temporal.Temporal[V], error) {
	r := &reader{b: b}

	h, err := readHeader(r, c)
	if err != nil {
		return nil, err
	}

	var temp temporal.Temporal[V]

	switch h.subtype {
	case temporal.SubtypeInstant:
		temp, err = decodeInstant(r, c, h)
	case temporal.SubtypeSequence:
		temp, err = decodeSequence(r, c, h)
	case temporal.SubtypeSequenceSet:
		temp, err = decodeSequenceSet(r, c, h)
	}

	if err != nil {
		return nil, err
	}

	if r.remaining() > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidBody, r.remaining())
	}

	return temp, nil
}

func readHeader[V any](r *reader, c carrier.Carrier[V]) (h header, err error) {
	lead, err := r.uint8()
	if err != nil {
		return
	}

	if lead>>4 != Version {
		err = fmt.Errorf("%w: version %d", ErrUnsupportedFormat, lead>>4)

		return
	}

	h.endian = lead & 0x0f

	switch h.endian {
	case endianNDR:
		r.order = binary.LittleEndian
	case endianXDR:
		r.order = binary.BigEndian
	default:
		err = fmt.Errorf("%w: endian %d", ErrUnsupportedFormat, h.endian)

		return
	}

	subtype, err := r.uint8()
	if err != nil {
		return
	}

	h.subtype = temporal.Subtype(subtype)
	if h.subtype < temporal.SubtypeInstant || h.subtype > temporal.SubtypeSequenceSet {
		err = fmt.Errorf("%w: subtype %d", ErrUnsupportedFormat, subtype)

		return
	}

	if h.flags, err = r.uint8(); err != nil {
		return
	}

	if h.flags&^knownFlags != 0 {
		err = fmt.Errorf("%w: flags %#x", ErrUnsupportedFormat, h.flags)

		return
	}

	if h.has(flagLinear) && !c.Continuous() {
		err = fmt.Errorf("%w: linear %s values", ErrCarrierMismatch, c.Kind())

		return
	}

	ext, extended := c.(carrier.Extended)

	if !h.has(flagMetadata) {
		if h.has(flagGeodetic) {
			err = fmt.Errorf("%w: geodetic flag without metadata", ErrUnsupportedFormat)
		}

		return
	}

	if h.metadata, err = r.uint32(); err != nil {
		return
	}

	switch {
	case !extended:
		err = fmt.Errorf("%w: %s values carry no metadata", ErrCarrierMismatch, c.Kind())
	case ext.TypeMetadata() != h.metadata:
		err = fmt.Errorf("%w: metadata %d, want %d", ErrCarrierMismatch, h.metadata, ext.TypeMetadata())
	case ext.Geodetic() != h.has(flagGeodetic):
		err = fmt.Errorf("%w: geodetic %t", ErrCarrierMismatch, h.has(flagGeodetic))
	}

	return
}

func decodeInstant[V any](r *reader, c carrier.Carrier[V], h header) (temporal.Temporal[V], error) {
	if h.has(flagBBox) {
		return nil, fmt.Errorf("%w: instant with bounding box", ErrInvalidBody)
	}

	inst, err := readInstant(r, c)
	if err != nil {
		return nil, err
	}

	ti, err := temporal.NewTInstantInterp(c, inst.Value, inst.T, h.interp())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return ti, nil
}

func decodeSequence[V any](r *reader, c carrier.Carrier[V], h header) (temporal.Temporal[V], error) {
	instants, err := readInstants(r, c)
	if err != nil {
		return nil, err
	}

	opts, err := boxOptions(r, c, h)
	if err != nil {
		return nil, err
	}

	seq, err := temporal.NewSequence(c, instants, h.has(flagLowerInc), h.has(flagUpperInc), h.interp(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return seq, nil
}

func decodeSequenceSet[V any](r *reader, c carrier.Carrier[V], h header) (temporal.Temporal[V], error) {
	count, err := r.count()
	if err != nil {
		return nil, err
	}

	seqs := make([]*temporal.TSequence[V], 0, count)

	for idx := 0; idx < count; idx++ {
		bounds, err := r.uint8()
		if err != nil {
			return nil, err
		}

		instants, err := readInstants(r, c)
		if err != nil {
			return nil, err
		}

		seq, err := temporal.NewSequence(c, instants, bounds&flagLowerInc != 0, bounds&flagUpperInc != 0, h.interp(),
			temporal.WithPreSorted())
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrInvalidBody, idx, err)
		}

		seqs = append(seqs, seq)
	}

	opts, err := boxOptions(r, c, h)
	if err != nil {
		return nil, err
	}

	ss, err := temporal.NewSequenceSet(c, seqs, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return ss, nil
}

func boxOptions[V any](r *reader, c carrier.Carrier[V], h header) ([]temporal.Option, error) {
	opts := []temporal.Option{temporal.WithPreSorted()}

	if !h.has(flagBBox) {
		return opts, nil
	}

	box, err := readBox(r, c)
	if err != nil {
		return nil, err
	}

	return append(opts, temporal.WithBox(box)), nil
}

func readInstant[V any](r *reader, c carrier.Carrier[V]) (inst temporal.Instant[V], err error) {
	t, err := r.int64()
	if err != nil {
		return
	}

	inst.T = span.Timestamp(t)
	inst.Value, err = readValue(r, c)

	return
}

func readInstants[V any](r *reader, c carrier.Carrier[V]) ([]temporal.Instant[V], error) {
	count, err := r.count()
	if err != nil {
		return nil, err
	}

	instants := make([]temporal.Instant[V], 0, count)

	for idx := 0; idx < count; idx++ {
		inst, err := readInstant(r, c)
		if err != nil {
			return nil, err
		}

		instants = append(instants, inst)
	}

	return instants, nil
}

func readBox[V any](r *reader, c carrier.Carrier[V]) (box temporal.Box[V], err error) {
	lower, err := r.int64()
	if err != nil {
		return
	}

	upper, err := r.int64()
	if err != nil {
		return
	}

	bounds, err := r.uint8()
	if err != nil {
		return
	}

	box.Period = span.Period{
		Lower:    span.Timestamp(lower),
		Upper:    span.Timestamp(upper),
		LowerInc: bounds&flagLowerInc != 0,
		UpperInc: bounds&flagUpperInc != 0,
	}

	if box.Min, err = readValue(r, c); err != nil {
		return
	}

	box.Max, err = readValue(r, c)

	return
}

func readValue[V any](r *reader, c carrier.Carrier[V]) (v V, err error) {
	v, n, err := c.ReadValue(r.b[r.off:], r.order)
	if err != nil {
		if errors.Is(err, carrier.ErrTruncated) {
			err = fmt.Errorf("%w: %s value at %d", ErrTruncated, c.Kind(), r.off)
		} else {
			err = fmt.Errorf("%w: %s value at %d: %v", ErrInvalidBody, c.Kind(), r.off, err)
		}

		return
	}

	r.off += n

	return
}

//
//
//

type reader struct {
	b     []byte
	off   int
	order binary.ByteOrder
}

func (r *reader) remaining() int {
	return len(r.b) - r.off
}

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, r.off, r.remaining())
	}

	return nil
}

func (r *reader) uint8() (v byte, err error) {
	if err = r.need(1); err != nil {
		return
	}

	v = r.b[r.off]
	r.off++

	return
}

func (r *reader) uint32() (v uint32, err error) {
	if err = r.need(4); err != nil {
		return
	}

	v = r.order.Uint32(r.b[r.off:])
	r.off += 4

	return
}

func (r *reader) int64() (v int64, err error) {
	if err = r.need(8); err != nil {
		return
	}

	v = int64(r.order.Uint64(r.b[r.off:]))
	r.off += 8

	return
}

// count reads an element count. Zero counts are rejected since every body holds
// at least one element.
func (r *reader) count() (int, error) {
	n, err := r.uint32()
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, fmt.Errorf("%w: empty body", ErrInvalidBody)
	}

	if int64(n) > int64(r.remaining()) {
		return 0, fmt.Errorf("%w: count %d exceeds %d remaining bytes", ErrTruncated, n, r.remaining())
	}

	return int(n), nil
}
