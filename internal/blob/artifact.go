package blob

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Daily aligned-feature artifacts are newline-free gzip-compressed
// JSON, one per calendar day, named deterministically by date.

const alignedPrefix = "final_aligned_data_"

// AlignedArtifactPath names the aligned-panel artifact for day under
// processedPath.
func AlignedArtifactPath(processedPath string, day time.Time) string {
	return fmt.Sprintf("%s/%s%s.json.gz", processedPath, alignedPrefix, day.Format("20060102"))
}

// LatestAlignedArtifact returns the path of the lexically newest
// aligned artifact under processedPath, or ErrNotFound when none exist.
func LatestAlignedArtifact(store Store, processedPath string) (string, error) {
	paths, err := store.List(processedPath)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, p := range paths {
		base := p[strings.LastIndex(p, "/")+1:]
		if strings.HasPrefix(base, alignedPrefix) && strings.HasSuffix(base, ".json.gz") {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s*.json.gz under %s", ErrNotFound, alignedPrefix, processedPath)
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

// PutJSONGz marshals v as compact JSON, gzips it, and stores it at path.
func PutJSONGz(store Store, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", path, err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return fmt.Errorf("failed to compress artifact %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize artifact %s: %w", path, err)
	}
	return store.Put(path, buf.Bytes())
}

// GetJSONGz fetches and decompresses the artifact at path into v.
func GetJSONGz(store Store, path string, v any) error {
	data, err := store.Get(path)
	if err != nil {
		return err
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("failed to decompress artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}
