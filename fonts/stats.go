package fonts

import (
	"go.uber.org/zap/zapcore"
)

// Counter counts processed items and the part of them which was discarded.
type Counter struct {
	Processed int `yaml:"processed"`
	Discarded int `yaml:"discarded"`
}

// Add accumulates other counter.
func (c *Counter) Add(o Counter) {
	c.Processed += o.Processed
	c.Discarded += o.Discarded
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c Counter) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("processed", c.Processed)
	enc.AddInt("discarded", c.Discarded)
	return nil
}

// Stats reports results of minification.
type Stats struct {
	Rules Counter `yaml:"rules"`
	Fonts Counter `yaml:"fonts"`
}

// Add accumulates other stats.
func (s *Stats) Add(o Stats) {
	s.Rules.Add(o.Rules)
	s.Fonts.Add(o.Fonts)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddObject("rules", s.Rules); err != nil {
		return err
	}
	return enc.AddObject("fonts", s.Fonts)
}
