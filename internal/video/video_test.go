package video

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		want    []string
		notWant []string
	}{
		{
			name:    "x264 silent",
			params:  Params{Width: 640, Height: 360, FPS: 30, Encoder: "libx264", Quality: 23, Output: "out.mp4"},
			want:    []string{"-video_size 640x360", "-framerate 30", "-c:v libx264", "-crf 23 -preset medium", "out.mp4"},
			notWant: []string{"-c:a"},
		},
		{
			name:   "videotoolbox with audio",
			params: Params{Width: 1280, Height: 720, FPS: 25, Encoder: "h264_videotoolbox", Quality: 75, AudioPath: "mix.wav", Output: "o.mp4"},
			want:   []string{"-i mix.wav", "-map 0:v -map 1:a", "-c:a aac", "-b:v 7500k", "-shortest"},
		},
		{
			name:   "nvenc",
			params: Params{Width: 2, Height: 2, FPS: 1, Encoder: "h264_nvenc", Quality: 28, Output: "o.mp4"},
			want:   []string{"-cq 28"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := strings.Join(buildFFmpegArgs(tt.params), " ")
			for _, w := range tt.want {
				if !strings.Contains(args, w) {
					t.Errorf("Expected %q in %s", w, args)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(args, w) {
					t.Errorf("Unexpected %q in %s", w, args)
				}
			}
			if !strings.HasSuffix(args, tt.params.Output) {
				t.Errorf("Output must be last: %s", args)
			}
		})
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{1, 2, 3, 4})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 3*2*4 {
		t.Fatalf("Expected 24 bytes, got %d", buf.Len())
	}
	if got := buf.Bytes()[20:24]; !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Last pixel mismatch: %v", got)
	}

	// sub-image with a wider stride is repacked
	sub := image.NewRGBA(image.Rect(0, 0, 6, 2)).SubImage(image.Rect(2, 0, 5, 2)).(*image.RGBA)
	buf.Reset()
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 3*2*4 {
		t.Errorf("Expected repacked 24 bytes, got %d", buf.Len())
	}
}

func TestStreamRejectsWrongSize(t *testing.T) {
	s := &ffmpegStream{w: 4, h: 4}
	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("Expected size mismatch error")
	}
}
