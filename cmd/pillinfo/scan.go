package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joszi2006/pillinfo/internal/capture"
	"github.com/Joszi2006/pillinfo/internal/config"
	"github.com/Joszi2006/pillinfo/internal/lookup"
)

var scanCmd = &cobra.Command{
	Use:   "scan [extra text...]",
	Short: "Photograph a medication with the camera and look it up",
	Long: `Photograph a medication with the camera and look it up.

Extra text is sent alongside the photo, e.g. patient attributes:
  pillinfo scan
  pillinfo scan patient is 25kg and age 6
  pillinfo scan --save shot.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		savePath, _ := cmd.Flags().GetString("save")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		backend := &capture.FFmpegBackend{
			BinPath:    cfg.Capture.FFmpegPath,
			DevicePath: cfg.Capture.DevicePath,
		}
		dev := capture.NewDevice(backend, capture.Constraints{
			Width:  cfg.Capture.Width,
			Height: cfg.Capture.Height,
		})
		defer dev.Close()

		printStep("Opening camera %s", cfg.Capture.DevicePath)
		if err := dev.Open(cmd.Context()); err != nil {
			return fmt.Errorf("opening camera: %w", err)
		}

		printStep("Capturing")
		frame, err := dev.CaptureFrame(cmd.Context())
		if err != nil {
			return fmt.Errorf("capturing frame: %w", err)
		}
		printSuccess("Captured %d bytes", len(frame))

		if savePath != "" {
			if err := os.WriteFile(savePath, frame, 0o644); err != nil {
				return fmt.Errorf("saving frame: %w", err)
			}
			printSuccess("Saved %s", savePath)
		}

		client := lookup.New(cfg.API.BaseURL)
		res := client.ResolveByImages(cmd.Context(), [][]byte{frame}, strings.Join(args, " "))
		printResult(res)

		if !res.Success {
			return fmt.Errorf("lookup failed")
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().String("save", "", "also write the captured frame to this path")
}
