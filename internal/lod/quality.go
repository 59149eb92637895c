package lod

import (
	"go.uber.org/zap"

	"lod-engine/internal/quality"
)

// Quality returns the current global quality.
func (s *System) Quality() quality.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quality
}

// Forced reports whether a SetQualityLevel override is in effect.
func (s *System) Forced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forced
}

// SetQualityLevel pins every object to the level matching q (high: first,
// medium: second or last, low: last) regardless of distance. The pin holds
// until automatic adjustment changes the quality. Culling still applies on
// the next Update.
func (s *System) SetQualityLevel(q quality.Mode) {
	if !q.Valid() {
		return
	}
	s.mu.Lock()
	notes := s.setQualityLocked(q)
	s.forced = true
	if s.initialized {
		for _, id := range s.order {
			obj := s.objects[id]
			// Culled objects pick up the forced level on their next Update.
			if obj.cfg.Disabled || obj.debug.Culled != NotCulled {
				continue
			}
			base, ok := s.scene.Transform(obj.cfg.BaseModel)
			if !ok {
				continue
			}
			s.prepare(obj)
			s.apply(obj, forcedIndex(q, len(obj.cfg.Levels)), base)
		}
	}
	s.mu.Unlock()
	s.notify(notes)
}

// Optimize runs one automatic adjustment step: below the performance threshold
// quality drops one step, above threshold plus margin it rises one step. It is
// called on the scheduler interval set up by Initialize and does nothing
// without frame rate data.
func (s *System) Optimize() {
	if s.fps == nil {
		return
	}
	avg := s.fps.AverageFPS()
	if avg <= 0 {
		return
	}
	s.mu.Lock()
	next := s.quality
	switch {
	case avg < s.settings.PerformanceThreshold:
		next = s.quality.Lower()
	case avg > s.settings.PerformanceThreshold+s.settings.QualityMargin:
		next = s.quality.Higher()
	}
	var notes []func()
	if next != s.quality {
		s.log.Info("adjusting quality", zap.Stringer("from", s.quality), zap.Stringer("to", next),
			zap.Float64("average_fps", avg))
		notes = s.setQualityLocked(next)
		s.forced = false
	}
	s.mu.Unlock()
	s.notify(notes)
}

// SetAutoOptimization starts or stops the adjustment interval. Starting needs
// a scheduler, an FPS source and an initialized System.
func (s *System) SetAutoOptimization(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.EnableAutoOptimization = on
	switch {
	case !on && s.cancelOptimize != nil:
		s.cancelOptimize()
		s.cancelOptimize = nil
	case on && s.cancelOptimize == nil && s.initialized && s.sched != nil && s.fps != nil:
		s.cancelOptimize = s.sched.Every(s.settings.OptimizationInterval, s.Optimize)
	}
}

// OnQualityChange registers fn for quality changes and returns its unsubscribe func.
func (s *System) OnQualityChange(fn func(quality.Mode)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.qualitySubs = append(s.qualitySubs, qualitySub{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.qualitySubs {
			if sub.id == id {
				s.qualitySubs = append(s.qualitySubs[:i], s.qualitySubs[i+1:]...)
				return
			}
		}
	}
}

// setQualityLocked stores q and returns the notifications to deliver once the
// lock is released. Nothing is delivered when q is already current.
func (s *System) setQualityLocked(q quality.Mode) []func() {
	if s.quality == q {
		return nil
	}
	s.quality = q
	notes := make([]func(), 0, len(s.qualitySubs))
	for _, sub := range s.qualitySubs {
		notes = append(notes, func() { sub.fn(q) })
	}
	return notes
}

// notify runs each note, logging and dropping panics so one subscriber cannot
// stop the others or the frame.
func (s *System) notify(notes []func()) {
	for _, n := range notes {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("quality subscriber failed", zap.Any("panic", r))
				}
			}()
			n()
		}()
	}
}
