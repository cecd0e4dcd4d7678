package driver

import (
	"errors"
	"os"

	"ffigen/internal/diag"
	"ffigen/internal/native"
	"ffigen/internal/snapshot"
)

// LoadSnapshot reads and decodes the snapshot at path. A JSON snapshot is
// looked up in cache by content first and stored there after decoding.
// hit reports whether the cache served it.
func LoadSnapshot(path string, cache *DiskCache) (snap *snapshot.Snapshot, hit bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	enc := snapshot.DetectEncoding(path, data)
	useCache := cache != nil && enc == snapshot.EncodingJSON

	var key Digest
	if useCache {
		key = digestOf(data)
		var payload DiskPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			return payload.Snapshot, true, nil
		}
	}
	snap, err = snapshot.Unmarshal(data, enc)
	if err != nil {
		return nil, false, withPath(err, path)
	}
	if useCache {
		// A cache that cannot be written only costs the next run time.
		_ = cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, Source: path, Snapshot: snap})
	}
	return snap, false, nil
}

// LoadUnit loads the snapshot at path and decodes it into a native
// translation unit, checking the producer version against constraint.
func LoadUnit(path, constraint string, cache *DiskCache) (*native.TranslationUnit, error) {
	snap, _, err := LoadSnapshot(path, cache)
	if err != nil {
		return nil, err
	}
	tu, err := snapshot.Decode(snap, snapshot.Options{ProducerVersion: constraint})
	if err != nil {
		return nil, withPath(err, path)
	}
	return tu, nil
}

func withPath(err error, path string) error {
	var se *snapshot.Error
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
	return err
}

func loadErrorCode(err error) diag.Code {
	var se *snapshot.Error
	if !errors.As(err, &se) {
		return diag.IOLoadError
	}
	switch se.Kind {
	case snapshot.ErrVersion:
		return diag.SnapshotVersion
	case snapshot.ErrUnknownKind:
		return diag.SnapshotUnknownKind
	default:
		return diag.SnapshotMalformed
	}
}
