package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ivlev/cctvscene/internal/analyzer"
	"github.com/ivlev/cctvscene/internal/config"
	"github.com/ivlev/cctvscene/internal/effects"
	"github.com/ivlev/cctvscene/internal/engine"
	"github.com/ivlev/cctvscene/internal/logging"
	"github.com/ivlev/cctvscene/internal/player"
	"github.com/ivlev/cctvscene/internal/system"
	"github.com/ivlev/cctvscene/internal/video"
)

var version = "dev"

func main() {
	configPtr := flag.String("config", "", "Путь к YAML конфигу")
	envPtr := flag.String("env", ".env", "Файл .env с переменными CCTV_*")
	colorsPtr := flag.Bool("colors", true, "Цветной вывод логов")
	config.RegisterFlags(flag.CommandLine, config.Default())
	flag.Parse()

	// Слои: умолчания -> YAML -> .env/окружение -> флаги
	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфига: %v", err)
	}
	if err := config.LoadEnvFile(*envPtr); err != nil {
		log.Fatalf("[-] Ошибка .env: %v", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("[-] Ошибка переменных окружения: %v", err)
	}
	if err := cfg.ApplyFlags(flag.CommandLine); err != nil {
		log.Fatalf("[-] Ошибка флагов: %v", err)
	}
	cfg.BuildVersion = version
	cfg.Finalize()

	logging.Setup(cfg.LogLevel, *colorsPtr)
	logger := logging.For("main")

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("[-] %v", err)
	}

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	switch cfg.Mode {
	case "wav":
		paths, err := engine.ExportClips(cfg.WAVDir, cfg.SampleRate, cfg.Seed)
		if err != nil {
			logger.Fatalf("[-] Ошибка экспорта звука: %v", err)
		}
		logger.Infof("[+++] Успех! Клипов: %d в %s", len(paths), cfg.WAVDir)

	case "play":
		eff := buildEffects(cfg, logger)
		if err := player.Run(cfg, eff); err != nil {
			logger.Fatalf("[-] Ошибка окна: %v", err)
		}

	default:
		if err := system.CheckFFmpeg(); err != nil {
			logger.Fatalf("[-] ffmpeg не найден: %v", err)
		}
		if cfg.VideoEncoder == "" {
			var quality int
			cfg.VideoEncoder, quality = system.GetBestH264Encoder()
			if cfg.Quality == 0 {
				cfg.Quality = quality
			}
			if cfg.VideoEncoder != "libx264" {
				logger.Infof("[*] Обнаружено аппаратное ускорение: %s", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
		}

		det, err := analyzer.NewDetector(cfg.Detector)
		if err != nil {
			logger.Fatalf("[-] %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		project := engine.NewVideoProject(cfg, &video.FFmpegEncoder{}, buildEffects(cfg, logger), det)
		if err := project.Run(ctx); err != nil {
			logger.Fatalf("[-] Ошибка проекта: %v", err)
		}
		logger.Infof("[+++] Успех! Результат: %s", cfg.OutputVideo)
	}
}

// buildEffects собирает цепочку эффектов камеры и HUD
func buildEffects(cfg *config.Config, logger *log.Entry) effects.Chain {
	chain, err := effects.NewChain(cfg.Effects, cfg.Seed)
	if err != nil {
		logger.Fatalf("[-] %v", err)
	}
	if cfg.HUD {
		hud, err := effects.NewHUD(cfg.Evidence)
		if err != nil {
			logger.Fatalf("[-] %v", err)
		}
		chain = append(chain, hud)
	}
	return chain
}
