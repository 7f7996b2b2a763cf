package prism

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for projection events.
var (
	SignalTypeRegistered   = capitan.NewSignal("prism.type.registered", "Type metadata registered")
	SignalProcessorCreated = capitan.NewSignal("prism.processor.created", "Processor instantiated")
	SignalProjectComplete  = capitan.NewSignal("prism.project.complete", "Projection finished")
	SignalProjectFailed    = capitan.NewSignal("prism.project.failed", "Projection passed failing elements through")
	SignalSendStart        = capitan.NewSignal("prism.send.start", "Send operation beginning")
	SignalSendComplete     = capitan.NewSignal("prism.send.complete", "Send operation finished")
	SignalReceiveStart     = capitan.NewSignal("prism.receive.start", "Receive operation beginning")
	SignalReceiveComplete  = capitan.NewSignal("prism.receive.complete", "Receive operation finished")
)

// Keys for typed event data.
var (
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyMarker        = capitan.NewStringKey("marker")
	KeyShape         = capitan.NewStringKey("shape")
	KeyFieldCount    = capitan.NewIntKey("field_count")
	KeyElements      = capitan.NewIntKey("elements")
	KeyHiddenCount   = capitan.NewIntKey("hidden_count")
	KeyMaskedCount   = capitan.NewIntKey("masked_count")
	KeyFailedCount   = capitan.NewIntKey("failed_count")
	KeyHashedCount   = capitan.NewIntKey("hashed_count")
	KeyRestoredCount = capitan.NewIntKey("restored_count")
	KeySize          = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

// emitTypeRegistered emits an event when type metadata is registered.
func emitTypeRegistered(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalTypeRegistered,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitProjectComplete emits an event when a projection finishes.
func emitProjectComplete(ctx context.Context, shape Shape, typeName string, marker Marker, elements, hidden, masked int, duration time.Duration) {
	capitan.Emit(ctx, SignalProjectComplete,
		KeyShape.Field(string(shape)),
		KeyTypeName.Field(typeName),
		KeyMarker.Field(string(marker)),
		KeyElements.Field(elements),
		KeyHiddenCount.Field(hidden),
		KeyMaskedCount.Field(masked),
		KeyDuration.Field(duration),
	)
}

// emitProjectFailed emits one event per projection that contained failures.
func emitProjectFailed(ctx context.Context, typeName string, marker Marker, failed int, err error) {
	capitan.Error(ctx, SignalProjectFailed,
		KeyTypeName.Field(typeName),
		KeyMarker.Field(string(marker)),
		KeyFailedCount.Field(failed),
		KeyError.Field(err),
	)
}

// emitSendStart emits an event when send begins.
func emitSendStart(ctx context.Context, contentType, typeName string, marker Marker) {
	capitan.Emit(ctx, SignalSendStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyMarker.Field(string(marker)),
	)
}

// emitSendComplete emits an event when send finishes.
func emitSendComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSendComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSendComplete, fields...)
	}
}

// emitReceiveStart emits an event when receive begins.
func emitReceiveStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalReceiveStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitReceiveComplete emits an event when receive finishes.
func emitReceiveComplete(ctx context.Context, contentType, typeName string, duration time.Duration, hashed, restored int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyHashedCount.Field(hashed),
		KeyRestoredCount.Field(restored),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalReceiveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalReceiveComplete, fields...)
	}
}
