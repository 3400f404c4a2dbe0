package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var imageOut string

// imageCmd submits an image job and optionally downloads the result
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Submit an image job",
	Long: `Submits one image job built from IMAGE_PROMPT and prints the image URL.
With --out the image is downloaded and written to the given file.`,
	Args: cobra.NoArgs,
	RunE: runImage,
}

func init() {
	imageCmd.Flags().StringVarP(&imageOut, "out", "o", "", "Download the image to this file")
}

func runImage(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	images := imageJobs()
	url, err := images.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	if imageOut == "" {
		return nil
	}

	data, err := images.FetchImage(ctx, url)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(imageOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(imageOut, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved %d bytes to %s\n", len(data), imageOut)
	return nil
}
