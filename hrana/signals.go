package hrana

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for wire client events.
var (
	SignalExecuteStart    = capitan.NewSignal("hrana.execute.start", "Pipeline request beginning")
	SignalExecuteComplete = capitan.NewSignal("hrana.execute.complete", "Pipeline request finished")
)

// Keys for typed event data.
var (
	KeyHost       = capitan.NewStringKey("host")
	KeySQL        = capitan.NewStringKey("sql")
	KeyArgCount   = capitan.NewIntKey("arg_count")
	KeyRowCount   = capitan.NewIntKey("row_count")
	KeyStatusCode = capitan.NewIntKey("status_code")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitExecuteStart emits an event before the pipeline request is sent.
func emitExecuteStart(ctx context.Context, host, sql string, args int) {
	capitan.Emit(ctx, SignalExecuteStart,
		KeyHost.Field(host),
		KeySQL.Field(sql),
		KeyArgCount.Field(args),
	)
}

// emitExecuteComplete emits an event once the pipeline request is done.
func emitExecuteComplete(ctx context.Context, host, sql string, status, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyHost.Field(host),
		KeySQL.Field(sql),
		KeyStatusCode.Field(status),
		KeyRowCount.Field(rows),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalExecuteComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalExecuteComplete, fields...)
	}
}
