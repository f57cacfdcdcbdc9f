package media

import (
	"fmt"
	"io"
	"os"
)

// ChunkCount returns how many APPEND segments a file of total bytes needs.
// An empty file needs none.
func ChunkCount(total, chunkSize int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + chunkSize - 1) / chunkSize)
}

// ChunkLength returns the payload size of segment index.
func ChunkLength(total, chunkSize int64, index int) int64 {
	offset := int64(index) * chunkSize
	if offset >= total {
		return 0
	}
	return min(chunkSize, total-offset)
}

// readChunk opens path, reads exactly one segment and closes the file
// before returning.
func readChunk(path string, total, chunkSize int64, index int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileIOError{Path: path, Segment: index, Err: err}
	}
	defer f.Close()

	size := ChunkLength(total, chunkSize, index)
	offset := int64(index) * chunkSize

	buf := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, offset, size), buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			err = fmt.Errorf("file shrank during upload: %w", err)
		}
		return nil, &FileIOError{Path: path, Segment: index, Err: err}
	}
	return buf, nil
}
