package directory

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for repository events.
var (
	SignalRegisterComplete = capitan.NewSignal("directory.register.complete", "Freelancer registration finished")
	SignalListComplete     = capitan.NewSignal("directory.list.complete", "Freelancer listing finished")
	SignalGetComplete      = capitan.NewSignal("directory.get.complete", "Freelancer lookup finished")
	SignalUpdateComplete   = capitan.NewSignal("directory.update.complete", "Freelancer update finished")
)

// Keys for typed event data.
var (
	KeyTable       = capitan.NewStringKey("table")
	KeyID          = capitan.NewStringKey("id")
	KeyRowCount    = capitan.NewIntKey("row_count")
	KeyMatchCount  = capitan.NewIntKey("match_count")
	KeyColumnCount = capitan.NewIntKey("column_count")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitRegisterComplete emits an event when a registration finishes.
func emitRegisterComplete(ctx context.Context, table, id string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTable.Field(table),
		KeyID.Field(id),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalRegisterComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalRegisterComplete, fields...)
	}
}

// emitListComplete emits an event when a listing finishes.
func emitListComplete(ctx context.Context, table string, rows, matches int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTable.Field(table),
		KeyRowCount.Field(rows),
		KeyMatchCount.Field(matches),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalListComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalListComplete, fields...)
	}
}

// emitGetComplete emits an event when a lookup finishes.
func emitGetComplete(ctx context.Context, table, id string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTable.Field(table),
		KeyID.Field(id),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalGetComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalGetComplete, fields...)
	}
}

// emitUpdateComplete emits an event when an update finishes.
func emitUpdateComplete(ctx context.Context, table, id string, columns int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTable.Field(table),
		KeyID.Field(id),
		KeyColumnCount.Field(columns),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalUpdateComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalUpdateComplete, fields...)
	}
}
