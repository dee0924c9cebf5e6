package model

// Checkout represents an extracted source snapshot on local disk
type Checkout struct {
	TempDir string   // Temporary directory holding the extraction
	RootDir string   // Source root inside TempDir (zipballs nest one directory)
	Files   []string // List of extracted files
	Size    int64    // Total uncompressed size in bytes
}
