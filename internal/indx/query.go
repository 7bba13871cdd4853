package indx

import (
	"context"
	"encoding/json"
)

// Query executes a parameterized index query. With Cached set and a cache
// wired in, the unpaged result set is looked up (and stored) under the
// params' fingerprint; the page window is applied afterwards, so every page
// of the same query shares one cache entry. Cache failures degrade to a
// direct query.
func (s *Service) Query(ctx context.Context, params RequestParams) ([]*IndexInfo, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if !params.Cached || s.cache == nil {
		infos, err := s.queryDirect(ctx, params)
		if err != nil {
			return nil, err
		}
		return infos, nil
	}

	key := params.Fingerprint()
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("query cache read failed", "key", key, "error", err)
	} else if ok {
		var infos []*IndexInfo
		if err := json.Unmarshal(data, &infos); err != nil {
			// A corrupt entry is dropped and the query re-runs.
			s.logger.Warn("query cache entry corrupt", "key", key, "error", err)
			if err := s.cache.Delete(ctx, key); err != nil {
				s.logger.Warn("query cache delete failed", "key", key, "error", err)
			}
		} else {
			return page(infos, params.Limit, params.Offset), nil
		}
	}

	unpaged := params
	unpaged.Limit = 0
	unpaged.Offset = 0
	infos, err := s.queryDirect(ctx, unpaged)
	if err != nil {
		return nil, err
	}

	if len(infos) <= maxCachedResults {
		if data, err := json.Marshal(infos); err != nil {
			s.logger.Warn("encoding query result for cache failed", "key", key, "error", err)
		} else if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("query cache write failed", "key", key, "error", err)
		}
	}

	return page(infos, params.Limit, params.Offset), nil
}

// queryDirect runs the query against the store, bypassing the cache.
func (s *Service) queryDirect(ctx context.Context, params RequestParams) ([]*IndexInfo, error) {
	infos, err := s.db.QueryIndexInfos(ctx, params)
	if err != nil {
		return nil, &OperationError{Op: "query", Err: err}
	}
	return infos, nil
}

// page applies a limit/offset window to an in-memory result set.
func page(infos []*IndexInfo, limit, offset int) []*IndexInfo {
	if offset > 0 {
		if offset >= len(infos) {
			return nil
		}
		infos = infos[offset:]
	}
	if limit > 0 && limit < len(infos) {
		infos = infos[:limit]
	}
	return infos
}
