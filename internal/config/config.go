package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for settings no host can run with.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix prefixes every environment override, e.g. CCTV_SAMPLE_RATE.
const EnvPrefix = "CCTV_"

type Config struct {
	Mode        string  `yaml:"mode"` // render, play, wav
	OutputVideo string  `yaml:"output"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         int     `yaml:"fps"`
	Duration    float64 `yaml:"duration"`
	Workers     int     `yaml:"workers"`
	Preset      string  `yaml:"preset"`
	Scale       int     `yaml:"scale"`

	Seed       int64   `yaml:"seed"`
	SampleRate int     `yaml:"sample_rate"`
	Triggers   string  `yaml:"triggers"` // oscillator, scheduled, replay
	TriggerMin float64 `yaml:"trigger_min"`
	TriggerMax float64 `yaml:"trigger_max"`
	CueSheet   string  `yaml:"cue_sheet"`
	WriteCues  bool    `yaml:"write_cues"`
	Autoplay   bool    `yaml:"autoplay"`

	Effects  string `yaml:"effects"`
	HUD      bool   `yaml:"hud"`
	Evidence string `yaml:"evidence"`
	Detector string `yaml:"detector"`
	WAVDir   string `yaml:"wav_dir"`

	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`
	ShowStats    bool   `yaml:"stats"`
	LogLevel     string `yaml:"log_level"`
	BuildVersion string `yaml:"-"`
}

// Default is the configuration every layer starts from.
func Default() *Config {
	return &Config{
		Mode:       "render",
		Width:      1280,
		Height:     720,
		FPS:        30,
		Duration:   12,
		Workers:    runtime.NumCPU(),
		Scale:      1,
		Seed:       1,
		SampleRate: 44100,
		Triggers:   "oscillator",
		TriggerMin: 2,
		TriggerMax: 6,
		WriteCues:  true,
		Effects:    "desaturate,vignette,grain",
		HUD:        true,
		Detector:   "lights",
		WAVDir:     "output/wav",
		LogLevel:   "info",
	}
}

// Load reads a YAML file on top of the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// EnvName maps a setting name to its environment variable.
func EnvName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ApplyEnv overrides every setting whose CCTV_* variable is present.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, name := range Names() {
		if v, ok := lookup(EnvName(name)); ok {
			if err := c.Set(name, v); err != nil {
				return fmt.Errorf("%s: %w", EnvName(name), err)
			}
		}
	}
	return nil
}

// RegisterFlags defines one flag per setting, defaulting to the values in c.
func RegisterFlags(fs *flag.FlagSet, c *Config) {
	for _, name := range Names() {
		s := settings[name]
		if s.boolean {
			v, _ := strconv.ParseBool(s.get(c))
			fs.Bool(name, v, s.usage)
			continue
		}
		fs.String(name, s.get(c), s.usage)
	}
}

// ApplyFlags copies the flags that were set explicitly on the command line.
func (c *Config) ApplyFlags(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if _, ok := settings[f.Name]; !ok || err != nil {
			return
		}
		if e := c.Set(f.Name, f.Value.String()); e != nil {
			err = fmt.Errorf("-%s: %w", f.Name, e)
		}
	})
	return err
}

// Set assigns one setting from its text form.
func (c *Config) Set(name, value string) error {
	s, ok := settings[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	return s.set(c, strings.TrimSpace(value))
}

// Names lists the settings in a stable order.
func Names() []string {
	names := make([]string, 0, len(settings))
	for n := range settings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Finalize fills the derived values: preset size, output path, worker count.
func (c *Config) Finalize() {
	switch c.Preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:3":
		c.Width, c.Height = 960, 720
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.OutputVideo == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		c.OutputVideo = filepath.Join("output", fmt.Sprintf("cctv_%s.mp4", timestamp))
	}
}

// Validate rejects sizes and rates no host can run with.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %.2f", ErrInvalid, c.Duration)
	}
	switch c.Mode {
	case "render", "play", "wav":
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalid, c.Mode)
	}
	switch c.Triggers {
	case "", "oscillator":
	case "scheduled":
		if c.TriggerMin <= 0 || c.TriggerMax < c.TriggerMin {
			return fmt.Errorf("%w: trigger interval [%.2f, %.2f]", ErrInvalid, c.TriggerMin, c.TriggerMax)
		}
	case "replay":
		if c.CueSheet == "" {
			return fmt.Errorf("%w: replay needs a cue sheet", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: triggers %q", ErrInvalid, c.Triggers)
	}
	return nil
}

type setting struct {
	usage   string
	boolean bool
	get     func(*Config) string
	set     func(*Config, string) error
}

func stringSetting(usage string, field func(*Config) *string) setting {
	return setting{
		usage: usage,
		get:   func(c *Config) string { return *field(c) },
		set:   func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intSetting(usage string, field func(*Config) *int) setting {
	return setting{
		usage: usage,
		get:   func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func int64Setting(usage string, field func(*Config) *int64) setting {
	return setting{
		usage: usage,
		get:   func(c *Config) string { return strconv.FormatInt(*field(c), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func floatSetting(usage string, field func(*Config) *float64) setting {
	return setting{
		usage: usage,
		get:   func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
	}
}

func boolSetting(usage string, field func(*Config) *bool) setting {
	return setting{
		usage:   usage,
		boolean: true,
		get:     func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

var settings = map[string]setting{
	"mode":        stringSetting("Режим: render (MP4), play (окно), wav (экспорт клипов)", func(c *Config) *string { return &c.Mode }),
	"output":      stringSetting("Путь к видео (если пусто, генерируется автоматически в output/)", func(c *Config) *string { return &c.OutputVideo }),
	"width":       intSetting("Ширина", func(c *Config) *int { return &c.Width }),
	"height":      intSetting("Высота", func(c *Config) *int { return &c.Height }),
	"fps":         intSetting("FPS", func(c *Config) *int { return &c.FPS }),
	"duration":    floatSetting("Длительность записи (сек), после обрыва на 10с идет черный кадр", func(c *Config) *float64 { return &c.Duration }),
	"workers":     intSetting("Потоки рендера", func(c *Config) *int { return &c.Workers }),
	"preset":      stringSetting("Пресет формата: 16:9, 9:16, 4:3", func(c *Config) *string { return &c.Preset }),
	"scale":       intSetting("Масштаб окна (play): логический кадр = окно / scale", func(c *Config) *int { return &c.Scale }),
	"seed":        int64Setting("Seed генератора (здания, шум, расписание)", func(c *Config) *int64 { return &c.Seed }),
	"sample-rate": intSetting("Частота дискретизации звука", func(c *Config) *int { return &c.SampleRate }),
	"triggers":    stringSetting("Триггеры рыка/лая: oscillator, scheduled, replay", func(c *Config) *string { return &c.Triggers }),
	"trigger-min": floatSetting("Минимальный интервал scheduled (сек)", func(c *Config) *float64 { return &c.TriggerMin }),
	"trigger-max": floatSetting("Максимальный интервал scheduled (сек)", func(c *Config) *float64 { return &c.TriggerMax }),
	"cues":        stringSetting("Файл сценария событий для replay", func(c *Config) *string { return &c.CueSheet }),
	"write-cues":  boolSetting("Сохранить сценарий событий рядом с видео", func(c *Config) *bool { return &c.WriteCues }),
	"autoplay":    boolSetting("Запускать фоновый звук без взаимодействия (play)", func(c *Config) *bool { return &c.Autoplay }),
	"effects":     stringSetting("Эффекты камеры через запятую: desaturate, vignette, grain", func(c *Config) *string { return &c.Effects }),
	"hud":         boolSetting("Накладывать HUD (CAM 03, REC, время)", func(c *Config) *bool { return &c.HUD }),
	"evidence":    stringSetting("Текст QR-метки в углу кадра (пусто: без метки)", func(c *Config) *string { return &c.Evidence }),
	"detector":    stringSetting("Детектор для пробы кадра: lights", func(c *Config) *string { return &c.Detector }),
	"wav-dir":     stringSetting("Папка для WAV клипов (mode=wav)", func(c *Config) *string { return &c.WAVDir }),
	"encoder":     stringSetting("Видео энкодер (пусто: автовыбор)", func(c *Config) *string { return &c.VideoEncoder }),
	"quality":     intSetting("Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)", func(c *Config) *int { return &c.Quality }),
	"stats":       boolSetting("Показать отчет о производительности", func(c *Config) *bool { return &c.ShowStats }),
	"log-level":   stringSetting("Уровень логов: debug, info, warn", func(c *Config) *string { return &c.LogLevel }),
}
