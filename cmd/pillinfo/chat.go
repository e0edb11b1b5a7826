package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joszi2006/pillinfo/internal/config"
	"github.com/Joszi2006/pillinfo/internal/conversation"
	"github.com/Joszi2006/pillinfo/internal/imaging"
	"github.com/Joszi2006/pillinfo/internal/lookup"
	"github.com/Joszi2006/pillinfo/internal/staging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive medication chat",
	Long: `Interactive medication chat.

Type a question to look up a drug by name, or attach photos:
  /attach <path>...   stage image files
  /staged             list staged images
  /remove <n>         unstage image n (1-based)
  /send [text]        send staged images, with optional extra text
  /recent             show recent exact matches
  /quit               exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := lookup.New(cfg.API.BaseURL)
		log := conversation.NewLog(client, staging.NewArea())
		defer log.Teardown()

		for _, m := range log.Messages() {
			fmt.Fprintf(os.Stdout, "%s\n", colorize(colorCyan, m.Text))
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Fprint(os.Stdout, colorize(colorBold, "> "))
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			if strings.HasPrefix(line, "/") {
				quit, err := runChatCommand(cmd, log, line)
				if err != nil {
					printError("%v", err)
				}
				if quit {
					return nil
				}
				continue
			}

			_, res := log.SubmitText(cmd.Context(), line)
			printResult(res)
		}
	},
}

func runChatCommand(cmd *cobra.Command, log *conversation.Log, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/attach":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /attach <path>...")
		}
		files := make([]imaging.CandidateFile, 0, len(fields)-1)
		for _, path := range fields[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return false, fmt.Errorf("reading %s: %w", path, err)
			}
			files = append(files, imaging.CandidateFile{
				Name:      filepath.Base(path),
				MediaType: mediaTypeFor(path),
				Data:      data,
			})
		}
		added, err := log.Staging().Add(files)
		if err != nil {
			return false, err
		}
		printSuccess("Staged %d image(s), %d total", added, log.Staging().Len())

	case "/staged":
		files := log.Staging().Files()
		if len(files) == 0 {
			printStep("Nothing staged.")
			break
		}
		for i, f := range files {
			fmt.Fprintf(os.Stdout, "  %d. %s (%d bytes)\n", i+1, f.Name, len(f.Data))
		}

	case "/remove":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: /remove <n>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("invalid index %q", fields[1])
		}
		if err := log.Staging().RemoveAt(n - 1); err != nil {
			return false, err
		}
		printSuccess("Removed image %d", n)

	case "/send":
		extra := strings.TrimSpace(strings.TrimPrefix(line, "/send"))
		_, res, err := log.SubmitImages(cmd.Context(), extra)
		if errors.Is(err, conversation.ErrNoStagedImages) {
			return false, fmt.Errorf("stage at least one image first (/attach)")
		}
		if err != nil {
			return false, err
		}
		printResult(res)

	case "/recent":
		recent := log.History().Recent()
		if len(recent) == 0 {
			printStep("No exact matches yet.")
			break
		}
		for _, m := range recent {
			fmt.Fprintf(os.Stdout, "  - %s\n", m.DrugName)
		}

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
