package synth

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const wavHeaderSize = 44

// ToInt16 converts a float sample in [-1, 1] to 16-bit PCM, clipping out-of-range input.
func ToInt16(v float64) int16 {
	if v >= 1 {
		return math.MaxInt16
	}
	if v <= -1 {
		return -math.MaxInt16
	}
	return int16(math.Round(v * math.MaxInt16))
}

// WriteWAV writes 16-bit PCM. Mono input is duplicated across channels.
func WriteWAV(w io.Writer, samples []float32, rate, channels int) error {
	if rate <= 0 || channels < 1 || channels > 2 {
		return fmt.Errorf("synth: unsupported wav format: rate=%d channels=%d", rate, channels)
	}
	dataSize := len(samples) * channels * 2

	hdr := make([]byte, wavHeaderSize)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	buf := make([]byte, 0, 4096)
	for _, s := range samples {
		v := uint16(ToInt16(float64(s)))
		for c := 0; c < channels; c++ {
			buf = binary.LittleEndian.AppendUint16(buf, v)
		}
		if len(buf) >= 4092 {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteWAVFile writes samples to path as a WAV file.
func WriteWAVFile(path string, samples []float32, rate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, samples, rate, channels); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// StereoPCM16 encodes a clip as 16-bit little-endian stereo, the format ebiten's audio
// players consume. Volume is left to the player.
func (c *Clip) StereoPCM16() []byte {
	out := make([]byte, len(c.samples)*4)
	for i, s := range c.samples {
		v := ToInt16(float64(s))
		out[i*4+0] = byte(v)
		out[i*4+1] = byte(v >> 8)
		out[i*4+2] = byte(v)
		out[i*4+3] = byte(v >> 8)
	}
	return out
}
