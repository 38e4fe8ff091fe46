package span

import (
	"fmt"

	"github.com/sgostarter/i/commerr"
)

var ErrInvalidPeriod = fmt.Errorf("%w: invalid period", commerr.ErrInvalidArgument)
