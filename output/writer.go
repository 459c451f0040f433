package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"opendirindex/logging"
)

// Writer handles output file operations with buffered I/O for performance.
type Writer struct {
	inventoryFile *os.File
	filteredFile  *os.File
	inventoryW    *bufio.Writer
	filteredW     *bufio.Writer
	mu            sync.Mutex
	logger        *logging.Logger
}

// NewWriter creates a new output writer
func NewWriter(outputDir string, logger *logging.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	inventoryPath := filepath.Join(outputDir, "inventory.txt")
	inventoryFile, err := os.Create(inventoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory output file: %w", err)
	}

	filteredPath := filepath.Join(outputDir, "filtered.txt")
	filteredFile, err := os.Create(filteredPath)
	if err != nil {
		inventoryFile.Close()
		return nil, fmt.Errorf("failed to create filtered output file: %w", err)
	}

	logger.Info("Output files created: %s and %s", inventoryPath, filteredPath)

	const bufferSize = 64 * 1024

	return &Writer{
		inventoryFile: inventoryFile,
		filteredFile:  filteredFile,
		inventoryW:    bufio.NewWriterSize(inventoryFile, bufferSize),
		filteredW:     bufio.NewWriterSize(filteredFile, bufferSize),
		logger:        logger,
	}, nil
}

// WriteInventory appends a block of text (a rendered tree, a summary, a
// host-level note) to the inventory output file.
func (w *Writer) WriteInventory(block string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintln(w.inventoryW, block); err != nil {
		w.logger.Error("Failed to write to inventory output: %v", err)
		return err
	}
	return nil
}

// WriteFilteredOutput records a file excluded from the inventory by the
// noise filter.
func (w *Writer) WriteFilteredOutput(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintln(w.filteredW, line); err != nil {
		w.logger.Error("Failed to write to filtered output: %v", err)
		return err
	}
	return nil
}

// Close flushes buffers and closes all output files.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.Info("Closing output files and flushing buffers")

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if w.inventoryW != nil {
		record(w.inventoryW.Flush())
		w.inventoryW = nil
	}
	if w.filteredW != nil {
		record(w.filteredW.Flush())
		w.filteredW = nil
	}
	if w.inventoryFile != nil {
		record(w.inventoryFile.Close())
		w.inventoryFile = nil
	}
	if w.filteredFile != nil {
		record(w.filteredFile.Close())
		w.filteredFile = nil
	}

	if firstErr != nil {
		w.logger.Error("Error while closing output files: %v", firstErr)
	} else {
		w.logger.Info("Output files closed successfully")
	}
	return firstErr
}
