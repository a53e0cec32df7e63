package github

import (
	"regexp"
	"strings"

	"github.com/matzehuels/nodecrawl/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)

	repoURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/]+)/([^/?#]+)`)
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns "owner/name".
func (r Repo) String() string { return r.Owner + "/" + r.Name }

// ParseRepo parses a repository reference. Accepted forms:
//
//	owner/name
//	https://github.com/owner/name[.git][/tree/...]
//	github.com/owner/name
//	git@github.com:owner/name.git
func ParseRepo(ref string) (Repo, error) {
	s := strings.TrimSpace(ref)
	s = strings.TrimSuffix(s, "/")

	var owner, name string
	if after, ok := strings.CutPrefix(s, "git@github.com:"); ok {
		owner, name, _ = strings.Cut(after, "/")
	} else if m := repoURLPattern.FindStringSubmatch(s); m != nil {
		owner, name = m[1], m[2]
	} else {
		var found bool
		owner, name, found = strings.Cut(s, "/")
		if !found || strings.Contains(name, "/") {
			return Repo{}, errors.New(errors.ErrCodeInvalidRepo, "invalid repo %q: use owner/name", ref)
		}
	}
	name = strings.TrimSuffix(name, ".git")

	if err := ValidateOwner(owner); err != nil {
		return Repo{}, err
	}
	if err := ValidateRepo(name); err != nil {
		return Repo{}, err
	}
	return Repo{Owner: owner, Name: name}, nil
}

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidRepo, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New(errors.ErrCodeInvalidRepo, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidRepo, "repo name is required")
	}
	if !validRepo.MatchString(name) || name == "." || name == ".." {
		return errors.New(errors.ErrCodeInvalidRepo, "invalid repo name %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", name)
	}
	return nil
}
