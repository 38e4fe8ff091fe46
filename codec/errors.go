package codec

import (
	"fmt"

	"github.com/sgostarter/i/commerr"
)

var ErrCodec = fmt.Errorf("%w: codec", commerr.ErrInvalidArgument)

var (
	ErrTruncated         = fmt.Errorf("%w: truncated input", ErrCodec)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrCodec)
	ErrCarrierMismatch   = fmt.Errorf("%w: carrier mismatch", ErrCodec)
	ErrInvalidBody       = fmt.Errorf("%w: invalid body", ErrCodec)
)
