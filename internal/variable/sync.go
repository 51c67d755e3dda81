package variable

import "context"

// Remote abstracts the backend variable API for reconciliation. The local
// and remote libraries are independently mutable; they are only brought
// together by the explicit Pull and Push steps below, never by silent
// two-way sync.
type Remote interface {
	// ListVariables returns the remote library.
	ListVariables(ctx context.Context) ([]Variable, error)

	// UpsertVariable creates or updates a remote variable keyed by name.
	UpsertVariable(ctx context.Context, v Variable) error
}

// PullResult reports what an import from the server did.
type PullResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Pull imports remote variables into the local store. Conflicts resolve
// last-write-wins by UpdatedAt: a remote variable only overwrites a local
// one with the same name when the remote copy is newer.
func Pull(ctx context.Context, store *Store, remote Remote) (*PullResult, error) {
	remoteVars, err := remote.ListVariables(ctx)
	if err != nil {
		return nil, err
	}

	local, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	updatedAt := make(map[string]int64, len(local))
	for _, v := range local {
		updatedAt[v.Name] = v.UpdatedAt
	}

	result := &PullResult{}
	for _, rv := range remoteVars {
		if localAt, ok := updatedAt[rv.Name]; ok && localAt >= rv.UpdatedAt {
			result.Skipped++
			continue
		}
		if _, err := store.UpsertByName(ctx, rv.Name, rv.Value, rv.Description, rv.Category); err != nil {
			return nil, err
		}
		result.Imported++
	}

	return result, nil
}

// PushResult reports what an export to the server did.
type PushResult struct {
	Pushed int `json:"pushed"`
}

// Push sends every local variable to the server, overwriting remote copies
// by name. The local library is not modified.
func Push(ctx context.Context, store *Store, remote Remote) (*PushResult, error) {
	local, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for _, v := range local {
		if err := remote.UpsertVariable(ctx, v); err != nil {
			return nil, err
		}
		result.Pushed++
	}

	return result, nil
}
