package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cctvscene/internal/analyzer"
	"github.com/ivlev/cctvscene/internal/config"
	"github.com/ivlev/cctvscene/internal/director"
	"github.com/ivlev/cctvscene/internal/effects"
	"github.com/ivlev/cctvscene/internal/logging"
	"github.com/ivlev/cctvscene/internal/mixer"
	"github.com/ivlev/cctvscene/internal/renderer"
	"github.com/ivlev/cctvscene/internal/scene"
	"github.com/ivlev/cctvscene/internal/session"
	"github.com/ivlev/cctvscene/internal/synth"
	"github.com/ivlev/cctvscene/internal/system"
	"github.com/ivlev/cctvscene/internal/video"
)

// blackTolerance is the highest luma a cut frame may contain.
const blackTolerance = 2

// VideoProject renders one session to an MP4 file.
type VideoProject struct {
	Config   *config.Config
	Encoder  video.VideoEncoder
	Effect   effects.Effect
	Detector analyzer.Detector

	// Filled by Run
	Sheet   *director.CueSheet
	Summary Summary

	log     *log.Entry
	tempDir string
	pool    *system.ImagePool
}

// Summary reports what a run produced.
type Summary struct {
	Frames     int
	CutFrame   int // -1 if the cut was never reached
	AudioPath  string
	CueSheet   string
	FirstFrame analyzer.FrameStats
	LightPools int
}

func NewVideoProject(cfg *config.Config, ve video.VideoEncoder, eff effects.Effect, det analyzer.Detector) *VideoProject {
	return &VideoProject{
		Config:   cfg,
		Encoder:  ve,
		Effect:   eff,
		Detector: det,
		log:      logging.For("engine"),
		pool:     system.NewImagePool(),
	}
}

// offscreen is the render surface of a file render.
type offscreen struct {
	w, h     int
	detached bool
}

func (o *offscreen) Size() (int, int) { return o.w, o.h }
func (o *offscreen) Detach()          { o.detached = true }

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	var err error
	p.tempDir, err = os.MkdirTemp("", "cctvscene_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	policy, err := p.triggerPolicy()
	if err != nil {
		return err
	}

	clock := session.NewStepClock(cfg.FPS)
	mix := mixer.New(cfg.SampleRate, clock)
	surface := &offscreen{w: cfg.Width, h: cfg.Height}
	sess := session.New(session.Options{
		Surface:    surface,
		Clock:      clock,
		SampleRate: cfg.SampleRate,
		NewVoice:   func(c *synth.Clip) session.Voice { return mix.NewVoice(c) },
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
		Triggers:   policy,
		Autoplay:   true,
	})
	defer sess.Close()
	if !sess.Active() {
		return fmt.Errorf("сцена не создана")
	}

	p.log = p.log.WithField("session", sess.ID()[:8])
	p.log.Info("--- [PROJECT: CCTV STANDOFF] ---")
	p.log.Infof("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs | Триггеры: %s", cfg.Width, cfg.Height, cfg.FPS, cfg.Duration, cfg.Triggers)

	// 1. Simulation (sequential)
	stepStart := time.Now()
	dir := director.NewDirector(sess.ID(), cfg.Triggers, cfg.FPS, cfg.Seed)
	states := p.simulate(sess, clock, dir)
	p.Sheet = dir.Sheet()
	stepTime := time.Since(stepStart)

	p.Summary = Summary{Frames: len(states), CutFrame: -1}
	for _, fs := range states {
		if fs.Cut {
			p.Summary.CutFrame = fs.Frame
			break
		}
	}

	// 2. Audio
	audioStart := time.Now()
	p.Summary.AudioPath = filepath.Join(p.tempDir, "audio.wav")
	samples := mix.Mixdown(synth.Length(float64(len(states))/float64(cfg.FPS), cfg.SampleRate))
	if err := synth.WriteWAVFile(p.Summary.AudioPath, samples, cfg.SampleRate, 1); err != nil {
		return fmt.Errorf("ошибка записи звука: %w", err)
	}
	audioTime := time.Since(audioStart)

	// 3. Render + encode
	sink, err := p.Encoder.Open(ctx, video.Params{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FPS:       cfg.FPS,
		Encoder:   cfg.VideoEncoder,
		Quality:   cfg.Quality,
		AudioPath: p.Summary.AudioPath,
		Output:    cfg.OutputVideo,
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска энкодера: %w", err)
	}

	renderStart := time.Now()
	if err := p.renderAll(ctx, sess.World(), states, startTime, sink); err != nil {
		sink.Close()
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("ошибка сборки видео: %w", err)
	}
	renderTime := time.Since(renderStart)

	// 4. Cue sheet
	if cfg.WriteCues {
		p.Summary.CueSheet = director.GenerateCueSheetPath(filepath.Dir(cfg.OutputVideo))
		if err := director.WriteCueSheet(p.Sheet, p.Summary.CueSheet); err != nil {
			return fmt.Errorf("ошибка записи сценария: %w", err)
		}
		p.log.Infof("[*] Сценарий событий: %s (%d событий)", p.Summary.CueSheet, len(p.Sheet.Cues))
	}

	if cfg.ShowStats {
		p.report(time.Since(startTime), stepTime, audioTime, renderTime)
	}
	return nil
}

func (p *VideoProject) triggerPolicy() (session.TriggerPolicy, error) {
	cfg := p.Config
	policy, err := director.Policy(cfg.Triggers, cfg.CueSheet, rand.New(rand.NewSource(cfg.Seed+1)), cfg.TriggerMin, cfg.TriggerMax)
	if err != nil {
		return nil, fmt.Errorf("ошибка настройки триггеров: %w", err)
	}
	if cfg.Triggers == "replay" {
		p.log.Infof("[*] Используется сценарий: %s", cfg.CueSheet)
	}
	return policy, nil
}

// simulate steps the session once per output frame
func (p *VideoProject) simulate(sess *session.Session, clock *session.StepClock, dir *director.Director) []session.FrameState {
	total := int(math.Round(p.Config.Duration * float64(p.Config.FPS)))
	states := make([]session.FrameState, 0, total)
	for i := 0; i < total; i++ {
		fs, ok := sess.Step()
		if !ok {
			break
		}
		dir.Observe(fs)
		states = append(states, fs)
		for _, e := range fs.Events {
			p.log.Debugf("[>] %s на %.2fs (кадр %d)", e, fs.T, fs.Frame)
		}
		clock.Advance()
	}
	return states
}

// renderAll renders frames in parallel batches and writes each batch in order
func (p *VideoProject) renderAll(ctx context.Context, world *scene.World, states []session.FrameState, start time.Time, sink video.FrameSink) error {
	cfg := p.Config
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	renderers := make(chan *renderer.Renderer, workers)
	for i := 0; i < workers; i++ {
		renderers <- renderer.New(cfg.Width, cfg.Height)
	}

	rect := image.Rect(0, 0, cfg.Width, cfg.Height)
	batch := workers * 2
	frames := make([]*image.RGBA, batch)
	cutChecked := false

	for lo := 0; lo < len(states); lo += batch {
		hi := min(lo+batch, len(states))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := lo; i < hi; i++ {
			fs := states[i]
			slot := i - lo
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img := p.pool.Get(rect)
				if fs.Cut {
					effects.CutFrame(img)
				} else {
					r := <-renderers
					r.Frame(img, world.Scene, fs.Camera, fs.Pose, world.Overlay)
					renderers <- r
					if p.Effect != nil {
						p.Effect.Apply(img, effects.Frame{
							Index: fs.Frame,
							T:     fs.T,
							Stamp: start.Add(time.Duration(fs.T * float64(time.Second))),
						})
					}
				}
				frames[slot] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("ошибка рендеринга: %w", err)
		}

		for i := lo; i < hi; i++ {
			img := frames[i-lo]
			if i == 0 {
				p.probe(img)
			}
			if states[i].Cut && !cutChecked {
				cutChecked = true
				if !analyzer.IsBlack(img, blackTolerance) {
					p.log.Warnf("[!] Кадр обрыва %d не черный", states[i].Frame)
				}
			}
			if err := sink.WriteFrame(img); err != nil {
				return err
			}
			p.pool.Put(img)
			frames[i-lo] = nil
		}
		p.log.Debugf("[>] Ready: %d/%d", hi, len(states))
	}
	return nil
}

// probe logs a brightness check of the first frame
func (p *VideoProject) probe(img *image.RGBA) {
	p.Summary.FirstFrame = analyzer.Probe(img, 60)
	if p.Detector != nil {
		if blocks, err := p.Detector.Detect(img); err == nil {
			p.Summary.LightPools = len(blocks)
			if b, ok := analyzer.Largest(blocks); ok {
				p.log.Debugf("[*] Крупнейшее пятно света: %v (заполнение %.2f)", b.Rect, b.Confidence)
			}
		} else {
			p.log.Warnf("[!] Ошибка анализа кадра: %v", err)
		}
	}
	p.log.Infof("[*] Проба первого кадра: яркость %.1f, пик %d, световых пятен %d",
		p.Summary.FirstFrame.MeanLuma, p.Summary.FirstFrame.PeakLuma, p.Summary.LightPools)
	if p.Summary.FirstFrame.PeakLuma <= blackTolerance {
		p.log.Warn("[!] Первый кадр полностью черный, проверьте свет и камеру")
	}
}

func (p *VideoProject) report(total, step, audio, render time.Duration) {
	cfg := p.Config
	fps := float64(p.Summary.Frames) / total.Seconds()
	host := system.CollectHostInfo()
	poolStats := p.pool.Stats()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Simulation: %.2fs\n"+
			"Audio Mixdown: %.2fs\n"+
			"Render + Encode: %.2fs\n"+
			"Frame Pool: %d hits / %d misses\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		cfg.BuildVersion, host, total.Seconds(), step.Seconds(), audio.Seconds(), render.Seconds(),
		poolStats.Hits, poolStats.Misses, fps,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Size: %dx%d | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		cfg.Width, cfg.Height,
		p.Summary.Frames,
		total.Seconds(),
		render.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		p.log.Warnf("[!] Не удалось записать benchmark.log: %v", err)
	}
}
