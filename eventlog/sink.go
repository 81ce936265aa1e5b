// Package eventlog adapts cluster.EventSink to structured logging, the way
// a production node would actually want elections and level trims reported
// instead of collected in memory for tests.
package eventlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dedis/hlevel/cluster"
)

// Sink logs every cluster.EventSink callback through a zap logger, tagged
// with the owning node's identifier so a multi-node log stream stays
// attributable.
type Sink struct {
	log  *zap.SugaredLogger
	node cluster.Identifier
}

// New builds a Sink that logs through logger, labeling every entry with
// node's identifier.
func New(logger *zap.Logger, node cluster.Identifier) *Sink {
	return &Sink{log: logger.Sugar().With("node", uint32(node)), node: node}
}

// NewDefault builds a Sink backed by a production zap logger writing JSON
// to stdout at level. It is the entry point cmd/hlevel-node wires up; tests
// and libraries that want a specific zap configuration should use New
// instead.
func NewDefault(node cluster.Identifier, level zapcore.Level) (*Sink, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(logger, node), nil
}

func (s *Sink) Elect(level uint32, rep cluster.Identifier) {
	s.log.Infow("representative elected", "level", level, "rep", uint32(rep))
}

func (s *Sink) Unelect(level uint32) {
	s.log.Infow("representative cleared", "level", level)
}

func (s *Sink) MaxLevel(level uint32) {
	s.log.Debugw("level stack truncated", "max_level", level)
}

func (s *Sink) Warn(format string, args ...interface{}) {
	s.log.Warnf(format, args...)
}

var _ cluster.EventSink = (*Sink)(nil)

// Discard returns a Sink-compatible logger writing nowhere, useful for
// benchmarks and command-line tools that opt out of event logging
// entirely without reaching for cluster.NopSink directly.
func Discard() (*Sink, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{os.DevNull}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(logger, 0), nil
}
