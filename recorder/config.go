package recorder

import (
	"fmt"
	"os"
	"time"

	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/codec"
	"github.com/sgostarter/libtemporal/temporal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Interp is "step" or "linear"; empty picks the carrier's default.
	Interp string `yaml:"interp" json:"interp"`

	// MaxDistance and MaxGap start a new sequence when consecutive readings are
	// further apart. Zero disables the check.
	MaxDistance float64       `yaml:"max_distance" json:"max_distance"`
	MaxGap      time.Duration `yaml:"max_gap" json:"max_gap"`

	// Retention keeps only readings this close to the latest one. Zero keeps all.
	Retention time.Duration `yaml:"retention" json:"retention"`

	InitialCapacity int           `yaml:"initial_capacity" json:"initial_capacity"`
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl" json:"snapshot_ttl"`
	FlushInterval   time.Duration `yaml:"flush_interval" json:"flush_interval"`

	// BBox stores the bounding box alongside persisted streams.
	BBox bool `yaml:"bbox" json:"bbox"`
}

func LoadConfig(d []byte) (cfg Config, err error) {
	if err = yaml.Unmarshal(d, &cfg); err != nil {
		err = fmt.Errorf("%w: %v", commerr.ErrInvalidArgument, err)

		return
	}

	cfg.fix()

	return
}

func LoadConfigFile(file string) (cfg Config, err error) {
	d, err := os.ReadFile(file)
	if err != nil {
		return
	}

	return LoadConfig(d)
}

func (cfg *Config) fix() {
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = 16
	}

	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = time.Second
	}

	if cfg.MaxGap < 0 {
		cfg.MaxGap = 0
	}

	if cfg.MaxDistance < 0 {
		cfg.MaxDistance = 0
	}
}

func (cfg *Config) gap() temporal.Gap {
	return temporal.Gap{MaxDistance: cfg.MaxDistance, MaxDuration: cfg.MaxGap}
}

func (cfg *Config) variant() codec.Variant {
	variant := codec.VariantExtended
	if cfg.BBox {
		variant |= codec.VariantBBox
	}

	return variant
}

func parseInterp[V any](c carrier.Carrier[V], s string) (carrier.Interp, error) {
	if s == "" {
		return carrier.DefaultInterp(c), nil
	}

	interp, err := carrier.ParseInterp(s)
	if err != nil {
		return 0, err
	}

	if !carrier.ValidInterp(c, interp) {
		return 0, fmt.Errorf("%w: %s on %s", temporal.ErrInvalidInterp, interp, c.Kind())
	}

	return interp, nil
}
