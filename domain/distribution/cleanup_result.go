package distribution

// CleanupResult contains information about reports deleted during pruning
type CleanupResult struct {
	DeletedFiles []DeletedFile
	Kept         int
}

// DeletedFile represents a file that was deleted
type DeletedFile struct {
	Name string
	Size int64
}
