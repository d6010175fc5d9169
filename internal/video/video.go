package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Params describe one output video.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	AudioPath     string // WAV muxed as AAC; empty means silent video
	Output        string
}

// FrameSink receives frames in presentation order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// VideoEncoder opens a frame stream for one output file.
type VideoEncoder interface {
	Open(ctx context.Context, params Params) (FrameSink, error)
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct{}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	w, h   int
	frames int
}

func (e *FFmpegEncoder) Open(ctx context.Context, params Params) (FrameSink, error) {
	if dir := filepath.Dir(params.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("output dir error: %w", err)
		}
	}

	s := &ffmpegStream{w: params.Width, h: params.Height}
	s.cmd = exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(params)...)
	s.cmd.Stdout = &s.out
	s.cmd.Stderr = &s.out

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

func (s *ffmpegStream) WriteFrame(img *image.RGBA) error {
	if b := img.Bounds(); b.Dx() != s.w || b.Dy() != s.h {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", s.frames, b.Dx(), b.Dy(), s.w, s.h)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error on frame %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file.
func (s *ffmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.out.String())
	}
	return nil
}

func buildFFmpegArgs(p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-b:a", "128k", "-shortest")
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", p.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	)
	args = append(args, qualityArgs(p.Encoder, p.Quality)...)
	args = append(args, p.Output)
	return args
}

// qualityArgs переводит -quality в параметры конкретного энкодера
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix[:bounds.Dx()*bounds.Dy()*4])
	return err
}
