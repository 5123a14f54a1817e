package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

var videoProgressMessages = []string{
	"Warming up the digital canvas...",
	"Mixing the pixels and code...",
	"Choreographing the animation...",
	"Rendering the main sequence...",
	"Adding the final touches, this can take a moment...",
	"Almost ready to debut!",
}

// GenerateVideo runs the long-running video generation flow: submit the
// request, poll the operation until it completes, then download the result.
// onProgress receives human-readable status strings for the caller to
// forward; it may be nil.
func (s *Service) GenerateVideo(ctx context.Context, imageData []byte, imageMIME, prompt, aspectRatio string, onProgress func(string)) ([]byte, error) {
	progress := func(msg string) {
		if onProgress != nil {
			onProgress(msg)
		}
	}
	progress(videoProgressMessages[0])

	op, err := s.client.Models.GenerateVideos(ctx, s.cfg.ModelVideo, prompt,
		&genai.Image{ImageBytes: imageData, MIMEType: imageMIME},
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			Resolution:     "720p",
			AspectRatio:    aspectRatio,
		})
	if err != nil {
		return nil, fmt.Errorf("video generation request failed: %w", err)
	}

	ticker := time.NewTicker(s.cfg.VideoPollInterval)
	defer ticker.Stop()

	progressIndex := 1
	for !op.Done {
		progress(videoProgressMessages[progressIndex%len(videoProgressMessages)])
		progressIndex++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		op, err = s.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("failed while checking video status: %w", err)
		}
	}

	progress("Finalizing video...")

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("video generation completed, but no download link was found")
	}

	video := op.Response.GeneratedVideos[0].Video
	if _, err := s.client.Files.Download(ctx, video, nil); err != nil {
		return nil, fmt.Errorf("failed to download the generated video file: %w", err)
	}
	if len(video.VideoBytes) == 0 {
		return nil, fmt.Errorf("downloaded video is empty")
	}

	log.Printf("[ai] video generated bytes=%d", len(video.VideoBytes))
	return video.VideoBytes, nil
}
