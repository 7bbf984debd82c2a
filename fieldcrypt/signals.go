package fieldcrypt

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for field encryption events.
var (
	SignalFieldsEncrypted = capitan.NewSignal("fieldcrypt.encrypt.complete", "Batch field encryption finished")
	SignalFieldsDecrypted = capitan.NewSignal("fieldcrypt.decrypt.complete", "Batch field decryption finished")
	SignalDecryptFallback = capitan.NewSignal("fieldcrypt.decrypt.fallback", "Stored value could not be decrypted and was returned as is")
)

// Keys for typed event data.
var (
	KeyField      = capitan.NewStringKey("field")
	KeyFormat     = capitan.NewStringKey("format")
	KeyFieldCount = capitan.NewIntKey("field_count")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitDecryptFallback reports a value that looked encrypted but did not open.
func emitDecryptFallback(ctx context.Context, field string, format Format, err error) {
	capitan.Error(ctx, SignalDecryptFallback,
		KeyField.Field(field),
		KeyFormat.Field(string(format)),
		KeyError.Field(err),
	)
}

// emitFieldsEncrypted emits an event when a batch encryption finishes.
func emitFieldsEncrypted(ctx context.Context, count int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyFieldCount.Field(count),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFieldsEncrypted, fields...)
	} else {
		capitan.Emit(ctx, SignalFieldsEncrypted, fields...)
	}
}

// emitFieldsDecrypted emits an event when a batch decryption finishes.
func emitFieldsDecrypted(ctx context.Context, count int, duration time.Duration) {
	capitan.Emit(ctx, SignalFieldsDecrypted,
		KeyFieldCount.Field(count),
		KeyDuration.Field(duration),
	)
}
