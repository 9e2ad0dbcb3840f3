package snowflake

import (
	"fmt"
	"time"
)

// totalBits is the number of usable bits in an id. The 64th bit stays clear
// so every id is a non-negative int64.
const totalBits = 63

// Config is an immutable description of how the 63 usable bits of an id are
// split between the timestamp, generator-id and sequence fields, and of the
// epoch the timestamp field counts milliseconds from. A single Config may be
// shared by any number of Generators without locking.
type Config struct {
	timestampBits   uint8
	generatorIDBits uint8
	sequenceBits    uint8
	epoch           time.Time

	timestampMask    int64
	generatorIDMask  int64
	sequenceMask     int64
	timestampShift   uint8
	generatorIDShift uint8
}

// NewConfig validates a bit layout and precomputes its masks and shifts.
// The generator-id and sequence fields are each limited to 31 bits, the
// three widths must sum to 63, and the epoch may not be in the future.
func NewConfig(timestampBits, generatorIDBits, sequenceBits uint8, epoch time.Time) (Config, error) {
	if generatorIDBits > 31 || sequenceBits > 31 {
		return Config{}, fmt.Errorf("%w: generator-id and sequence fields are limited to 31 bits, got %d and %d",
			ErrInvalidBitLayout, generatorIDBits, sequenceBits)
	}
	if int(timestampBits)+int(generatorIDBits)+int(sequenceBits) != totalBits {
		return Config{}, fmt.Errorf("%w: field widths %d+%d+%d must sum to %d",
			ErrInvalidBitLayout, timestampBits, generatorIDBits, sequenceBits, totalBits)
	}
	if epoch.After(time.Now()) {
		return Config{}, fmt.Errorf("%w: %s", ErrEpochInFuture, epoch.Format(time.RFC3339))
	}
	return Config{
		timestampBits:    timestampBits,
		generatorIDBits:  generatorIDBits,
		sequenceBits:     sequenceBits,
		epoch:            epoch,
		timestampMask:    1<<timestampBits - 1,
		generatorIDMask:  1<<generatorIDBits - 1,
		sequenceMask:     1<<sequenceBits - 1,
		timestampShift:   generatorIDBits + sequenceBits,
		generatorIDShift: sequenceBits,
	}, nil
}

// DefaultConfig returns the historical Twitter Snowflake proportions: a
// 41-bit millisecond timestamp (roughly 69 years of range), 10 generator
// bits (1024 generators) and 12 sequence bits (4096 ids per millisecond per
// generator), counted from 2015-01-01T00:00:00Z.
func DefaultConfig() Config {
	cfg, err := NewConfig(41, 10, 12, time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	return cfg
}

// TimestampBits returns the width of the timestamp field.
func (c Config) TimestampBits() uint8 { return c.timestampBits }

// GeneratorIDBits returns the width of the generator-id field.
func (c Config) GeneratorIDBits() uint8 { return c.generatorIDBits }

// SequenceBits returns the width of the sequence field.
func (c Config) SequenceBits() uint8 { return c.sequenceBits }

// TotalBits returns the number of usable bits in an id, always 63.
func (c Config) TotalBits() uint8 { return totalBits }

// Epoch returns the zero point of the timestamp field.
func (c Config) Epoch() time.Time { return c.epoch }

// MaxMilliseconds returns the number of distinct millisecond values the
// timestamp field can hold, 2^TimestampBits.
func (c Config) MaxMilliseconds() int64 { return c.timestampMask + 1 }

// MaxGenerators returns the number of distinct generator ids, 2^GeneratorIDBits.
func (c Config) MaxGenerators() int64 { return c.generatorIDMask + 1 }

// MaxSequenceIDs returns the number of ids a generator can mint within one
// millisecond, 2^SequenceBits.
func (c Config) MaxSequenceIDs() int64 { return c.sequenceMask + 1 }

// WraparoundDate returns the point in time at which the timestamp field
// exhausts its range and encoded timestamps begin aliasing back onto the
// epoch.
func (c Config) WraparoundDate() time.Time {
	return c.epoch.Add(c.WraparoundInterval())
}

// WraparoundInterval returns the timestamp field's range as a duration.
func (c Config) WraparoundInterval() time.Duration {
	return time.Duration(c.MaxMilliseconds()) * time.Millisecond
}
