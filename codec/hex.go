package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/temporal"
)

// EncodeHex is Encode as upper-case hex.
func EncodeHex[V any](temp temporal.Temporal[V], variant Variant) string {
	return strings.ToUpper(hex.EncodeToString(Encode(temp, variant)))
}

// DecodeHex accepts hex in either case.
func DecodeHex[V any](c carrier.Carrier[V], s string) (temporal.Temporal[V], error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return Decode(c, b)
}
