package source

// FileSet assigns stable FileIDs to the inputs a toolchain run touches:
// mapfiles, script containers, IR interchange files. IDs start at 1 so the
// zero Span stays recognizable as "no location".
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add registers a path and returns its ID. Registering the same path twice
// returns the original ID.
func (fs *FileSet) Add(path string) FileID {
	if id, ok := fs.index[path]; ok {
		return id
	}
	id := FileID(len(fs.files) + 1)
	fs.files = append(fs.files, File{ID: id, Path: path})
	fs.index[path] = id
	return id
}

// Path resolves an ID back to the registered path, or "" for NoFileID and
// unknown IDs.
func (fs *FileSet) Path(id FileID) string {
	if fs == nil || id == NoFileID || int(id) > len(fs.files) {
		return ""
	}
	return fs.files[id-1].Path
}

func (fs *FileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.files)
}
