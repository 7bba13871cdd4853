package indx

import (
	"context"
	"fmt"
)

// SaveQuery persists a named query parameter snapshot.
func (s *Service) SaveQuery(ctx context.Context, name string, params RequestParams) (*SavedQueryRecord, error) {
	if name == "" {
		return nil, fmt.Errorf("query name is required: %w", ErrInvalidParameter)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	rec := &SavedQueryRecord{
		ID:        s.idgen.New(),
		Name:      name,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.InsertSavedQuery(ctx, rec); err != nil {
		return nil, &OperationError{Op: "save-query", Err: err}
	}
	return rec, nil
}

// RunSavedQuery executes the named saved query.
func (s *Service) RunSavedQuery(ctx context.Context, name string) ([]*IndexInfo, error) {
	rec, err := s.db.GetSavedQuery(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("saved query %q: %w", name, ErrNotFound)
	}
	return s.Query(ctx, rec.Params)
}

// UpdateSavedQuery replaces the stored params of a saved query.
func (s *Service) UpdateSavedQuery(ctx context.Context, name string, params RequestParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := s.db.UpdateSavedQueryParams(ctx, name, params); err != nil {
		return &OperationError{Op: "save-query", Err: err}
	}
	return nil
}

// RenameSavedQuery changes a saved query's name.
func (s *Service) RenameSavedQuery(ctx context.Context, oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("query name is required: %w", ErrInvalidParameter)
	}
	if err := s.db.RenameSavedQuery(ctx, oldName, newName); err != nil {
		return &OperationError{Op: "save-query", Err: err}
	}
	return nil
}

// DeleteSavedQuery removes a saved query.
func (s *Service) DeleteSavedQuery(ctx context.Context, name string) error {
	if err := s.db.DeleteSavedQuery(ctx, name); err != nil {
		return &OperationError{Op: "save-query", Err: err}
	}
	return nil
}

// ListSavedQueries returns all saved queries ordered by name.
func (s *Service) ListSavedQueries(ctx context.Context) ([]*SavedQueryRecord, error) {
	return s.db.ListSavedQueries(ctx)
}

// GetSavedQuery returns the saved query with the given name, or (nil, nil).
func (s *Service) GetSavedQuery(ctx context.Context, name string) (*SavedQueryRecord, error) {
	return s.db.GetSavedQuery(ctx, name)
}
