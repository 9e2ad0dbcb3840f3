package snowflake

import "errors"

var (
	// ErrInvalidBitLayout is returned by NewConfig when the field widths do
	// not sum to 63 or a field exceeds its 31-bit ceiling.
	ErrInvalidBitLayout = errors.New("snowflake: invalid bit layout")

	// ErrEpochInFuture is returned by NewConfig when the epoch is later than
	// the wall clock at construction time.
	ErrEpochInFuture = errors.New("snowflake: epoch is in the future")

	// ErrGeneratorIDOutOfRange is returned by New when the generator id does
	// not fit in the config's generator-id field.
	ErrGeneratorIDOutOfRange = errors.New("snowflake: generator id out of range")

	// ErrTimestampBeforeEpoch is returned when the timestamp an id would be
	// minted for, explicit or from the wall clock, precedes the epoch.
	ErrTimestampBeforeEpoch = errors.New("snowflake: timestamp precedes epoch")
)
