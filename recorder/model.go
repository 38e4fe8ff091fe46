package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sgostarter/i/commerr"
)

var ErrNoStream = fmt.Errorf("%w: no such stream", commerr.ErrNotFound)

// Storage persists encoded streams by key. Load returns ErrNoStream for a key
// never saved.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, d []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

func IsNoStream(err error) bool {
	return errors.Is(err, ErrNoStream)
}
