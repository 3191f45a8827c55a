package source

// FileID uniquely identifies a registered input within a FileSet.
type FileID uint32

// NoFileID marks a span that does not belong to any registered input.
const NoFileID FileID = 0

// File captures metadata for a single registered input. The core never
// re-reads the content; it only needs stable IDs and paths for diagnostics.
type File struct {
	ID   FileID
	Path string
}
