package system

import (
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/ivlev/cctvscene/internal/logging"
)

var logger = logging.For("system")

// InitResourceLimits поднимает лимит открытых файлов (ffmpeg, временные WAV, логи)
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warnf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warnf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		logger.Debugf("[*] Системный лимит открытых файлов увеличен до %d", rLimit.Cur)
	}
}

var (
	encodersOnce sync.Once
	encoders     string
)

// ffmpegEncoders кэширует вывод `ffmpeg -encoders`
func ffmpegEncoders() string {
	encodersOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			logger.Warnf("[!] ffmpeg недоступен: %v", err)
			return
		}
		encoders = string(out)
	})
	return encoders
}

// GetBestH264Encoder возвращает лучший доступный H.264 энкодер и его качество по умолчанию
func GetBestH264Encoder() (string, int) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	list := ffmpegEncoders()
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(list, name) {
			return name, DefaultQuality(name)
		}
	}
	return "libx264", DefaultQuality("libx264")
}

// DefaultQuality подбирает значение -quality для энкодера
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// CheckFFmpeg проверяет, что ffmpeg есть в PATH
func CheckFFmpeg() error {
	_, err := exec.LookPath("ffmpeg")
	return err
}
