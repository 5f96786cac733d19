package cli

import (
	"fmt"
	"path/filepath"

	"github.com/captionforge/captionforge/internal/subtitle"
	"github.com/spf13/cobra"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [words.json]",
	Short: "Group a word timestamp document into caption cues",
	Long: `Group the words of a raw word timestamp document (a JSON array of
{"word", "start", "end"} objects, as written to output.json by 'burn
--keep-artifacts') into caption cues.

The cues are written as a JSON document next to the input
(modifiedOutput.json) unless -o or --format say otherwise.

Examples:
  captionforge chunk output.json
  captionforge chunk output.json --max-chars 20 --max-duration 2
  captionforge chunk output.json -f srt -o captions.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	chunkCmd.Flags().
		StringP("format", "f", "json", "Output format (json, srt, vtt, ass)")
	addPolicyFlags(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	wordsPath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	policy, err := policyFromFlags(cmd)
	if err != nil {
		return err
	}
	maxLineChars, err := maxLineCharsFromFlags(cmd)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = defaultChunkOutput(wordsPath, format)
	}

	words, err := subtitle.ReadWordsJSON(wordsPath)
	if err != nil {
		return err
	}

	logger.Debugw("Chunking words",
		"input", wordsPath,
		"words", len(words),
		"max_chars", policy.MaxChars,
		"max_duration", policy.MaxDuration,
		"max_gap", policy.MaxGap,
	)

	generator := subtitle.NewDefaultGenerator(policy)
	generator.MaxCharsPerLine = maxLineChars
	subs, err := generator.Generate(words)
	if err != nil {
		return err
	}
	subs.Format = string(format)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(subs, outputPath); err != nil {
		return fmt.Errorf("failed to write cues: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Cues written: %s\n", absOutput)
	fmt.Printf("  Words: %d\n", len(words))
	fmt.Printf("  Cues: %d\n", len(subs.Entries))
	return nil
}

// defaultChunkOutput places the cue document next to the word document.
func defaultChunkOutput(wordsPath string, format subtitle.Format) string {
	dir := filepath.Dir(wordsPath)
	if format == subtitle.FormatJSON {
		return filepath.Join(dir, "modifiedOutput.json")
	}
	return filepath.Join(dir, "captions"+subtitle.GetExtensionForFormat(format))
}
