package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/dhvanilabs/sadhana/pkg/chant"
)

const (
	DefaultSampleRate   = 16000
	DefaultFrameSize    = 512
	DefaultVADThreshold = 0.015

	pitchEveryNthVoiced = 3
	energyCeiling       = 0.12
	cadenceFloorBPM     = 20.0
	cadenceCeilBPM      = 220.0
	fallbackCadenceBPM  = 72.0

	defaultPitchStability     = 0.5
	defaultCadenceConsistency = 0.7
)

// Config wires an Extractor. PhaseTag, when set, labels each frame with the
// call-and-response phase active at capture time; leave it nil for stages
// where the practitioner chants alone.
type Config struct {
	Device       Device
	Logger       *slog.Logger
	FrameSize    int
	VADThreshold float64
	PhaseTag     func() chant.Phase
}

type phaseCount struct {
	frames int
	voiced int
}

// Extractor consumes raw frames from a Device and folds them into running
// feature state. All frame processing happens on a single goroutine; Stop
// drains it before finalizing, so the summary is deterministic for a given
// sample stream.
type Extractor struct {
	cfg Config

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	frames      int
	voiced      int
	voicedRun   bool
	rmsSum      float64
	pitches     []float64
	onsets      []float64
	phaseCounts map[chant.Phase]*phaseCount
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.VADThreshold <= 0 {
		cfg.VADThreshold = DefaultVADThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{cfg: cfg}
}

// Start acquires the device and begins the frame loop. Calling Start while
// already running is a no-op.
func (e *Extractor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}
	if e.cfg.Device == nil {
		return CaptureUnavailableError{Reason: "no input device configured"}
	}
	if err := e.cfg.Device.Open(ctx); err != nil {
		var unavailable CaptureUnavailableError
		if errors.As(err, &unavailable) {
			return unavailable
		}
		return CaptureUnavailableError{Reason: err.Error()}
	}

	e.frames = 0
	e.voiced = 0
	e.voicedRun = false
	e.rmsSum = 0
	e.pitches = nil
	e.onsets = nil
	e.phaseCounts = make(map[chant.Phase]*phaseCount)
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true

	go e.loop(ctx, e.stop, e.done)
	return nil
}

// Stop halts capture, releases the device, and returns the finalized window
// summary. Stopping an extractor that never started yields zeroed metrics.
func (e *Extractor) Stop() (chant.FinalizedMetrics, error) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return chant.FinalizedMetrics{CadenceBPM: fallbackCadenceBPM, PitchStability: defaultPitchStability, CadenceConsistency: defaultCadenceConsistency}, nil
	}
	stop, done := e.stop, e.done
	e.mu.Unlock()

	close(stop)
	<-done

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	if err := e.cfg.Device.Close(); err != nil {
		e.cfg.Logger.Warn("closing audio device", "error", err)
	}
	return e.finalize(), nil
}

func (e *Extractor) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	window := make([]float64, 0, pitchWindow)
	voicedSeen := 0

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		frame, err := e.cfg.Device.Read(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				e.cfg.Logger.Warn("reading audio frame", "error", err)
			}
			return
		}

		rms := frameRMS(frame)
		isVoiced := rms > e.cfg.VADThreshold

		e.mu.Lock()
		index := e.frames
		e.frames++
		counts := e.phaseCount()
		counts.frames++

		if isVoiced {
			e.voiced++
			counts.voiced++
			e.rmsSum += rms
			if !e.voicedRun {
				e.onsets = append(e.onsets, float64(index)*e.frameDuration())
			}
			e.voicedRun = true

			window = append(window, frame...)
			if over := len(window) - pitchWindow; over > 0 {
				window = window[over:]
			}
			voicedSeen++
			if voicedSeen%pitchEveryNthVoiced == 0 {
				if hz, ok := detectPitch(window, e.sampleRate()); ok {
					e.pitches = append(e.pitches, hz)
				}
			}
		} else {
			e.voicedRun = false
		}
		e.mu.Unlock()
	}
}

func (e *Extractor) phaseCount() *phaseCount {
	phase := chant.PhaseIndependent
	if e.cfg.PhaseTag != nil {
		phase = e.cfg.PhaseTag()
	}
	counts, ok := e.phaseCounts[phase]
	if !ok {
		counts = &phaseCount{}
		e.phaseCounts[phase] = counts
	}
	return counts
}

func (e *Extractor) sampleRate() int {
	if rate := e.cfg.Device.SampleRate(); rate > 0 {
		return rate
	}
	return DefaultSampleRate
}

func (e *Extractor) frameDuration() float64 {
	return float64(e.cfg.FrameSize) / float64(e.sampleRate())
}

func (e *Extractor) finalize() chant.FinalizedMetrics {
	duration := float64(e.frames) * e.frameDuration()

	m := chant.FinalizedMetrics{
		DurationSeconds:    chant.Round2(duration),
		CadenceBPM:         e.cadence(duration),
		CadenceConsistency: e.cadenceConsistency(),
		PitchStability:     e.pitchStability(),
	}

	if e.frames > 0 {
		m.VoiceRatioTotal = chant.Round3(float64(e.voiced) / float64(e.frames))
	}
	if e.voiced > 0 {
		m.AvgEnergy = chant.Round3(chant.Clamp01(e.rmsSum / float64(e.voiced) / energyCeiling))
	}
	if counts, ok := e.phaseCounts[chant.PhaseLeader]; ok && counts.frames > 0 {
		ratio := chant.Round3(float64(counts.voiced) / float64(counts.frames))
		m.VoiceRatioLeader = &ratio
	}
	if counts, ok := e.phaseCounts[chant.PhaseFollower]; ok && counts.frames > 0 {
		ratio := chant.Round3(float64(counts.voiced) / float64(counts.frames))
		m.VoiceRatioFollower = &ratio
	}
	return m
}

// cadence derives beats per minute from voicing onsets. With fewer than
// three onsets the inter-onset intervals are too sparse to average, so the
// raw onset rate is used instead; an empty or zero-length window pins to the
// practice tempo baseline. The result always lands in [20, 220].
func (e *Extractor) cadence(duration float64) float64 {
	var bpm float64
	switch {
	case duration <= 0:
		bpm = fallbackCadenceBPM
	case len(e.onsets) >= 3:
		intervals := onsetIntervals(e.onsets)
		if mean := chant.Mean(intervals); mean > 0 {
			bpm = 60.0 / mean
		} else {
			bpm = fallbackCadenceBPM
		}
	default:
		bpm = float64(len(e.onsets)) / duration * 60.0
	}

	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		bpm = fallbackCadenceBPM
	}
	if bpm < cadenceFloorBPM {
		bpm = cadenceFloorBPM
	}
	if bpm > cadenceCeilBPM {
		bpm = cadenceCeilBPM
	}
	return chant.Round2(bpm)
}

func (e *Extractor) cadenceConsistency() float64 {
	if len(e.onsets) <= 2 {
		return defaultCadenceConsistency
	}
	cv := chant.CV(onsetIntervals(e.onsets))
	return chant.Round3(chant.Clamp01(1.0 - 1.8*cv))
}

func (e *Extractor) pitchStability() float64 {
	if len(e.pitches) <= 1 {
		return defaultPitchStability
	}
	cv := chant.CV(e.pitches)
	return chant.Round3(chant.Clamp01(1.0 - 1.5*cv))
}

func onsetIntervals(onsets []float64) []float64 {
	intervals := make([]float64, 0, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		intervals = append(intervals, onsets[i]-onsets[i-1])
	}
	return intervals
}

func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
