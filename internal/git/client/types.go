package client

import "time"

// Status is a point-in-time read of a working tree.
type Status struct {
	Current  string `json:"current"`
	Tracking string `json:"tracking,omitempty"`
	Detached bool   `json:"detached"`
	// HeadCommit is empty for an unborn branch.
	HeadCommit string        `json:"headCommit,omitempty"`
	Staged     []string      `json:"staged"`
	Unstaged   []string      `json:"unstaged"`
	Modified   []string      `json:"modified"`
	Deleted    []string      `json:"deleted"`
	Untracked  []string      `json:"untracked"`
	Conflicted []string      `json:"conflicted"`
	Renamed    []RenamedFile `json:"renamed"`
	Ahead      int           `json:"ahead"`
	Behind     int           `json:"behind"`
	Clean      bool          `json:"clean"`
}

// RenamedFile is a staged rename or copy.
type RenamedFile struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FileDiffStat is a minimal representation of file-level changes.
type FileDiffStat struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Status  string `json:"status"` // porcelain-like code (e.g., M, A, ??)
}

type Commit struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"shortHash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date" ts_type:"string"`
	Refs      string    `json:"refs"`
}

type Branch struct {
	Name       string `json:"name"`
	Current    bool   `json:"current"`
	CommitHash string `json:"commitHash"`
	IsRemote   bool   `json:"isRemote"`
}

type Remote struct {
	Name     string `json:"name"`
	FetchURL string `json:"fetchUrl"`
	PushURL  string `json:"pushUrl"`
}

// Tag is a tag resolved to the commit it ultimately points at.
type Tag struct {
	Name       string     `json:"name"`
	CommitHash string     `json:"commitHash"`
	Annotated  bool       `json:"annotated"`
	Message    string     `json:"message,omitempty"`
	Date       *time.Time `json:"date,omitempty" ts_type:"string"`
}

type StashEntry struct {
	Index   int       `json:"index"`
	Ref     string    `json:"ref"`
	Message string    `json:"message"`
	Date    time.Time `json:"date" ts_type:"string"`
}

type RepoInfo struct {
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	IsRepo        bool     `json:"isRepo"`
	CurrentBranch string   `json:"currentBranch,omitempty"`
	Remotes       []Remote `json:"remotes,omitempty"`
}

type CloneOptions struct {
	URL       string `json:"url" validate:"required"`
	Path      string `json:"path" validate:"required"`
	Branch    string `json:"branch,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
}

type CommitOptions struct {
	Message    string `json:"message"`
	AllowEmpty bool   `json:"allowEmpty,omitempty"`
	Amend      bool   `json:"amend,omitempty"`
}

// PushOptions selects what to push. With Branch empty the current branch
// is pushed: through its upstream when one is configured and Remote is
// empty or matches it, otherwise as HEAD to Remote.
type PushOptions struct {
	Remote      string `json:"remote,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Force       bool   `json:"force,omitempty"`
	SetUpstream bool   `json:"setUpstream,omitempty"`
}

// PullOptions mirrors PushOptions; with Branch empty the upstream is used
// when configured, otherwise the current branch name on Remote.
type PullOptions struct {
	Remote string `json:"remote,omitempty"`
	Branch string `json:"branch,omitempty"`
	Rebase bool   `json:"rebase,omitempty"`
}

type MergeOptions struct {
	Branch        string `json:"branch" validate:"required"`
	NoFastForward bool   `json:"noFastForward,omitempty"`
}

type LogOptions struct {
	MaxCount int    `json:"maxCount,omitempty" validate:"gte=0"`
	File     string `json:"file,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

type DiffOptions struct {
	File   string `json:"file,omitempty"`
	Staged bool   `json:"staged,omitempty"`
}
