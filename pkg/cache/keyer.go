package cache

// Keyer produces cache keys for GitHub API responses.
type Keyer interface {
	// TreeKey identifies the recursive tree listing of repo at branch.
	TreeKey(repo, branch string) string
	// ContentKey identifies the body of path in repo at branch.
	ContentKey(repo, branch, path string) string
}

// DefaultKeyer hashes key components under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(repo, branch string) string {
	return hashKey("tree", repo, branch)
}

func (DefaultKeyer) ContentKey(repo, branch, path string) string {
	return hashKey("content", repo, branch, path)
}
