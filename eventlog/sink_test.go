package eventlog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dedis/hlevel/cluster"
)

func TestSinkLogsElectWithNodeAndLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := New(zap.New(core), 7)

	sink.Elect(2, 9)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["node"] != uint32(7) || fields["level"] != uint32(2) || fields["rep"] != uint32(9) {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestSinkImplementsEventSink(t *testing.T) {
	var _ cluster.EventSink = New(zap.NewNop(), 1)
}
