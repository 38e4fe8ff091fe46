package carrier

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
)

type discrete[V any] struct{}

func (discrete[V]) Continuous() bool {
	return false
}

func (discrete[V]) Interpolate(a, b V, ratio float64) V {
	if ratio < 1 {
		return a
	}

	return b
}

func (discrete[V]) Crossing(_, _, _, _ V) (float64, bool) {
	return 0, false
}

//
//
//

type Bool struct {
	discrete[bool]
}

func (Bool) Kind() Kind {
	return KindBool
}

func (Bool) Equal(a, b bool) bool {
	return a == b
}

func (Bool) Compare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func (Bool) Hash(v bool) uint64 {
	if v {
		return xxhash.Sum64([]byte{1})
	}

	return xxhash.Sum64([]byte{0})
}

func (Bool) Collinear(a, b, c bool, _ float64) bool {
	return a == b && b == c
}

func (Bool) Distance(a, b bool) float64 {
	if a == b {
		return 0
	}

	return 1
}

func (Bool) Coerce(x any) (v bool, err error) {
	v, err = cast.ToBoolE(x)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)
	}

	return
}

func (Bool) AppendValue(dst []byte, _ binary.AppendByteOrder, v bool) []byte {
	if v {
		return append(dst, 1)
	}

	return append(dst, 0)
}

func (Bool) ReadValue(src []byte, _ binary.ByteOrder) (v bool, n int, err error) {
	if len(src) < 1 {
		err = ErrTruncated

		return
	}

	switch src[0] {
	case 0:
	case 1:
		v = true
	default:
		err = ErrInvalidValue

		return
	}

	n = 1

	return
}

//
//
//

type Int struct {
	discrete[int64]
}

func (Int) Kind() Kind {
	return KindInt
}

func (Int) Equal(a, b int64) bool {
	return a == b
}

func (Int) Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (Int) Hash(v int64) uint64 {
	return xxhash.Sum64(binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

func (Int) Collinear(a, b, c int64, _ float64) bool {
	return a == b && b == c
}

func (Int) Distance(a, b int64) float64 {
	return math.Abs(float64(a) - float64(b))
}

func (Int) Coerce(x any) (v int64, err error) {
	v, err = cast.ToInt64E(x)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)
	}

	return
}

func (Int) ToFloat(v int64) float64 {
	return float64(v)
}

func (Int) FromFloat(f float64) int64 {
	return int64(math.Round(f))
}

func (Int) AppendValue(dst []byte, order binary.AppendByteOrder, v int64) []byte {
	return order.AppendUint64(dst, uint64(v))
}

func (Int) ReadValue(src []byte, order binary.ByteOrder) (v int64, n int, err error) {
	if len(src) < 8 {
		err = ErrTruncated

		return
	}

	return int64(order.Uint64(src)), 8, nil
}

//
//
//

type Text struct {
	discrete[string]
}

func (Text) Kind() Kind {
	return KindText
}

func (Text) Equal(a, b string) bool {
	return a == b
}

func (Text) Compare(a, b string) int {
	return strings.Compare(a, b)
}

func (Text) Hash(v string) uint64 {
	return xxhash.Sum64String(v)
}

func (Text) Collinear(a, b, c string, _ float64) bool {
	return a == b && b == c
}

func (Text) Distance(a, b string) float64 {
	if a == b {
		return 0
	}

	return 1
}

func (Text) Coerce(x any) (v string, err error) {
	v, err = cast.ToStringE(x)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)
	}

	return
}

func (Text) AppendValue(dst []byte, order binary.AppendByteOrder, v string) []byte {
	dst = order.AppendUint32(dst, uint32(len(v)))

	return append(dst, v...)
}

func (Text) ReadValue(src []byte, order binary.ByteOrder) (v string, n int, err error) {
	if len(src) < 4 {
		err = ErrTruncated

		return
	}

	size := int(order.Uint32(src))
	if len(src)-4 < size {
		err = ErrTruncated

		return
	}

	b := src[4 : 4+size]
	if !utf8.Valid(b) {
		err = ErrInvalidValue

		return
	}

	return string(b), 4 + size, nil
}
