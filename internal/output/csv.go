package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// writeCSV writes the frame to tmpPath; the caller renames it into place
func writeCSV(tmpPath string, f *contracts.Frame) error {
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header(f)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records(f) {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Sync()
}
