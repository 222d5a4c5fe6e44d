package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/holmhub/create-mcprofile/assets"
	"github.com/holmhub/create-mcprofile/assets/logger"
	"github.com/holmhub/create-mcprofile/assets/zipindex"
)

var (
	verbose     bool
	noProgress  bool
	concurrency int
	sha1Hash    string
	retry       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "create-mcprofile",
		Short: "Download and unpack game assets",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLogLevel(logger.LogLevelDebug)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// fetch command
	fetchCmd := &cobra.Command{
		Use:   "fetch <URL> [OUTPUT_DIR]",
		Short: "Download a file, optionally verifying its SHA-1 hash",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runFetch,
	}
	fetchCmd.Flags().StringVar(&sha1Hash, "sha1", "", "Expected SHA-1 hash of the file")
	fetchCmd.Flags().BoolVar(&retry, "retry", true, "Retry a failed download once")
	fetchCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")

	// extract command
	extractCmd := &cobra.Command{
		Use:   "extract <ARCHIVE> [OUTPUT_DIR]",
		Short: "Unpack a ZIP/JAR archive into a directory",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runExtract,
	}
	extractCmd.Flags().IntVar(&concurrency, "concurrency", assets.DefaultExtractConcurrency, "Number of concurrent entry writes")
	extractCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")

	// ls command
	lsCmd := &cobra.Command{
		Use:   "ls <ARCHIVE>",
		Short: "List entries in a ZIP/JAR archive",
		Args:  cobra.ExactArgs(1),
		Run:   runLs,
	}

	// cat command
	catCmd := &cobra.Command{
		Use:   "cat <ARCHIVE> <ENTRY>",
		Short: "Print one archive entry to stdout (e.g. version.json inside an installer jar)",
		Args:  cobra.ExactArgs(2),
		Run:   runCat,
	}

	rootCmd.AddCommand(fetchCmd, extractCmd, lsCmd, catCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, args []string) {
	url := args[0]

	outputDir := "."
	if len(args) > 1 {
		outputDir = args[1]
	}

	fileName := path.Base(url)
	if fileName == "." || fileName == "/" {
		fmt.Fprintf(os.Stderr, "Cannot derive a file name from URL: %s\n", url)
		os.Exit(1)
	}

	downloader := assets.NewDownloader(nil)

	var progressCallback assets.ByteProgress
	var bar *progressbar.ProgressBar

	if !noProgress {
		progressCallback = func(name, category string, current, total int64) {
			if bar == nil {
				bar = progressbar.DefaultBytes(total, fmt.Sprintf("Downloading %s", name))
			}
			bar.Set64(current)
		}
	}

	if err := downloader.Download(context.Background(), url, outputDir, fileName, retry, "file", progressCallback); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	target := path.Join(outputDir, fileName)
	if sha1Hash != "" && !assets.VerifyFile(sha1Hash, target) {
		fmt.Fprintf(os.Stderr, "\nChecksum mismatch for %s\n", target)
		os.Exit(1)
	}

	fmt.Printf("\nDownloaded %s\n", target)
}

func runExtract(cmd *cobra.Command, args []string) {
	archivePath := args[0]

	outputDir := "."
	if len(args) > 1 {
		outputDir = args[1]
	}

	idx, err := zipindex.ParseFile(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing archive: %v\n", err)
		os.Exit(1)
	}

	var progressCallback assets.ExtractProgress
	var bar *progressbar.ProgressBar

	if !noProgress {
		progressCallback = func(completed, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), fmt.Sprintf("Extracting %d entries", total))
			}
			bar.Set(completed)
		}
	}

	extractor := assets.NewExtractor(concurrency)
	stats, err := extractor.ExtractAll(context.Background(), idx, outputDir, progressCallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nExtracted %d/%d entries to %s", stats.Extracted, stats.Total, outputDir)
	if stats.Failed > 0 {
		fmt.Printf(" (%d failed)", stats.Failed)
	}
	fmt.Println()
}

func runLs(cmd *cobra.Command, args []string) {
	idx, err := zipindex.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing archive: %v\n", err)
		os.Exit(1)
	}

	for _, name := range idx.Names() {
		fmt.Println(name)
	}
}

func runCat(cmd *cobra.Command, args []string) {
	idx, err := zipindex.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing archive: %v\n", err)
		os.Exit(1)
	}

	entry, err := idx.Entry(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, err := entry.Text()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading entry: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(text)
}
