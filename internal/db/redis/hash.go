package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/catalograg/internal/db"
)

// maxPipeline caps the commands sent in one DoMulti so a large catalog
// import does not build one huge write buffer.
const maxPipeline = 256

// HSetMulti writes every hash, pipelining up to maxPipeline HSETs per round trip.
// The first failing key aborts the remaining chunks.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for start := 0; start < len(items); start += maxPipeline {
		chunk := items[start:min(start+maxPipeline, len(items))]

		cmds := make(rueidis.Commands, 0, len(chunk))
		for _, item := range chunk {
			cmds = append(cmds, s.hsetCmd(item))
		}

		for i, res := range s.client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", chunk[i].Key, err)}
			}
		}
	}
	return nil
}

// hsetCmd builds HSET with fields in name order so the command is deterministic.
func (s *Store) hsetCmd(item db.HashSetItem) rueidis.Completed {
	names := make([]string, 0, len(item.Fields))
	for name := range item.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := s.b().Hset().Key(item.Key).FieldValue()
	for _, name := range names {
		cmd = cmd.FieldValue(name, item.Fields[name])
	}
	return cmd.Build()
}

// HGetAll returns every field of a hash; a missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// Del removes key. Deleting a key that does not exist returns db.ErrKeyNotFound.
func (s *Store) Del(ctx context.Context, key string) error {
	n, err := s.do(ctx, s.b().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}
