package models

import "fmt"

// StreamChunk is a bounded slice of a lecture file read for a byte-range request
type StreamChunk struct {
	Data  []byte
	Start int64
	End   int64 // exclusive
	Size  int64 // total file size
}

// ContentRange formats the HTTP Content-Range header value for the chunk
func (c *StreamChunk) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End-1, c.Size)
}
