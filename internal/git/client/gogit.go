package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// IsRepoPath reports whether path itself (not a parent) holds git metadata.
func IsRepoPath(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	return err == nil
}

// resolveTags lists every tag under root and peels it to a commit in a
// single pass over the object store. A linked worktree reads refs and
// objects through its commondir.
func resolveTags(root string) ([]Tag, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
		}
		return nil, fmt.Errorf("open repo: %w", err)
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	tags := []Tag{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tag := Tag{Name: ref.Name().Short(), CommitHash: ref.Hash().String()}
		obj, err := repo.TagObject(ref.Hash())
		switch {
		case err == nil:
			tag.Annotated = true
			tag.Message = strings.TrimSpace(obj.Message)
			when := obj.Tagger.When
			tag.Date = &when
			if commit, cErr := obj.Commit(); cErr == nil {
				tag.CommitHash = commit.Hash.String()
			} else {
				tag.CommitHash = obj.Target.String()
			}
		case errors.Is(err, plumbing.ErrObjectNotFound):
			// lightweight
			if commit, cErr := repo.CommitObject(ref.Hash()); cErr == nil {
				when := commit.Committer.When
				tag.Date = &when
			}
		default:
			return fmt.Errorf("read tag %s: %w", tag.Name, err)
		}
		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
