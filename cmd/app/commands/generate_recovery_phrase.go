package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/checktick/surveyvault/internal/recovery"
)

// RunGenerateRecoveryPhrase generates a standalone recovery phrase. Useful
// for operators who want to pre-provision phrases or test entropy settings;
// the phrase is not bound to any survey.
func RunGenerateRecoveryPhrase(writer io.Writer, wordCount int, format string) error {
	words, err := recovery.GeneratePhrase(wordCount)
	if err != nil {
		return fmt.Errorf("failed to generate recovery phrase: %w", err)
	}

	hint := recovery.CreateHint(words)

	if format == "json" {
		result := map[string]any{
			"words": words,
			"hint":  hint,
		}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
			return nil
		}

		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Recovery phrase: %s\n", strings.Join(words, " "))
	_, _ = fmt.Fprintf(writer, "Hint: %s\n", hint)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The phrase is shown only once. Store it securely.")

	return nil
}
