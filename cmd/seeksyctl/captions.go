package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"seeksy/pkg/captions"
	"seeksy/pkg/speech"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type captionsFlags struct {
	format string
	output string
	opts   captions.Options
}

func newCaptionsCmd() *cobra.Command {
	f := &captionsFlags{}
	cmd := &cobra.Command{
		Use:   "captions <verbose_json file>",
		Short: "Convert a speech-to-text verbose_json result into SRT or VTT",
		Long: `Reads a transcription saved in verbose_json form and groups its words
into captions. When the file only has segment timestamps, words are spread
evenly across each segment. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaptions(cmd, args[0], f)
		},
	}
	d := captions.DefaultOptions()
	cmd.Flags().StringVarP(&f.format, "format", "f", "srt", `Caption format ("srt" or "vtt")`)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().IntVar(&f.opts.MaxWords, "max-words", d.MaxWords, "Maximum words per caption")
	cmd.Flags().Float64Var(&f.opts.MaxDuration, "max-duration", d.MaxDuration, "Maximum caption length in seconds")
	cmd.Flags().IntVar(&f.opts.MaxChars, "max-chars", d.MaxChars, "Maximum characters per caption")
	cmd.Flags().Float64Var(&f.opts.PauseGap, "pause-gap", d.PauseGap, "Silence in seconds that starts a new caption")
	return cmd
}

func runCaptions(cmd *cobra.Command, path string, f *captionsFlags) error {
	render, err := formatter(f.format)
	if err != nil {
		return err
	}

	res, err := readResult(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	words := res.Words
	if len(words) == 0 {
		words = captions.FromSegments(res.Segments)
	}
	segs := captions.Split(words, f.opts)
	if len(segs) == 0 {
		return fmt.Errorf("%s has no timed words or segments", path)
	}
	out := render(segs)

	if f.output == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(f.output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %d captions to %s\n",
		color.New(color.FgGreen).Sprint("Wrote"), len(segs), f.output)
	return nil
}

func formatter(format string) (func([]captions.Segment) string, error) {
	switch strings.ToLower(format) {
	case "srt":
		return captions.SRT, nil
	case "vtt":
		return captions.VTT, nil
	default:
		return nil, fmt.Errorf("unknown caption format %q", format)
	}
}

func readResult(stdin io.Reader, path string) (*speech.Result, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open transcription: %w", err)
		}
		defer file.Close()
		r = file
	}

	var res speech.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	return &res, nil
}
