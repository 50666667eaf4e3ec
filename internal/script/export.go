package script

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Export writes the script as indented JSON. The lines are stored under
// the conversation key, so an export can be fed back to Decode.
func Export(s *Script, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// ExportFile writes the script to filename.
func ExportFile(s *Script, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	return Export(s, file)
}

// ReadFile loads a script file written by ExportFile or by hand.
func ReadFile(filename string) (*Script, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Decode(string(data))
}
