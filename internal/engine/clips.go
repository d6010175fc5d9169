package engine

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/ivlev/cctvscene/internal/logging"
	"github.com/ivlev/cctvscene/internal/synth"
)

// ExportClips synthesizes the three clips and writes each one as a mono WAV into dir.
// It returns the written paths in ambient, growl, bark order.
func ExportClips(dir string, rate int, seed int64) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	logger := logging.For("engine")

	bank := synth.NewBank(rate, rand.New(rand.NewSource(seed)))
	var paths []string
	for _, clip := range bank.Clips() {
		path := filepath.Join(dir, clip.Name()+".wav")
		if err := synth.WriteWAVFile(path, clip.Samples(), clip.SampleRate(), 1); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", clip.Name(), err)
		}
		logger.Infof("[>] %s: %.2fs, %d сэмплов -> %s", clip.Name(), clip.Duration(), clip.Len(), path)
		paths = append(paths, path)
	}
	return paths, nil
}
