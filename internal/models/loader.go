package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"crudecast/internal/blob"
	"crudecast/internal/domain/ensemble"
)

// Loader downloads a trained bundle's artifacts from the blob store
// into a local cache directory and assembles them into an
// ensemble.Bundle. Artifacts are fetched at most once per process and
// the assembled bundle is read-only thereafter; co-locating many
// inference requests against it is safe. Two processes racing on the
// same cache directory must be serialized by the caller.
type Loader struct {
	store      blob.Store
	modelsPath string
	runID      string
	cacheDir   string

	once   sync.Once
	bundle *ensemble.Bundle
	err    error
}

// NewLoader creates a demand loader for the bundle identified by runID.
func NewLoader(store blob.Store, modelsPath, runID, cacheDir string) *Loader {
	return &Loader{
		store:      store,
		modelsPath: modelsPath,
		runID:      runID,
		cacheDir:   cacheDir,
	}
}

// Artifact filenames within a bundle. model_enhanced, entity_models and
// metadata are optional; scaler and model_base are required.
const (
	artifactScaler       = "scaler.json"
	artifactBase         = "model_base.json"
	artifactEnhanced     = "model_enhanced.json"
	artifactEntityModels = "entity_models.json"
	artifactMetadata     = "metadata.json"
)

// Load returns the assembled bundle, downloading artifacts on first
// call.
func (l *Loader) Load() (*ensemble.Bundle, error) {
	l.once.Do(func() {
		l.bundle, l.err = l.load()
	})
	return l.bundle, l.err
}

// Loaded reports whether a bundle has been assembled successfully.
func (l *Loader) Loaded() bool {
	return l.bundle != nil && l.err == nil
}

func (l *Loader) load() (*ensemble.Bundle, error) {
	dir, err := l.ensureArtifacts()
	if err != nil {
		return nil, err
	}

	var scaler ensemble.Scaler
	if err := readJSON(filepath.Join(dir, artifactScaler), &scaler); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", l.runID, err)
	}

	var base ensemble.LinearModel
	if err := readJSON(filepath.Join(dir, artifactBase), &base); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", l.runID, err)
	}

	bundle := &ensemble.Bundle{
		RunID:  l.runID,
		Scaler: &scaler,
		Base:   &base,
	}

	var enhanced ensemble.LinearModel
	switch err := readJSON(filepath.Join(dir, artifactEnhanced), &enhanced); {
	case err == nil:
		bundle.Enhanced = &enhanced
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("run_id", l.runID).Msg("bundle has no enhanced model, serving base only")
	default:
		return nil, fmt.Errorf("bundle %s: %w", l.runID, err)
	}

	specialized, err := l.loadEntityModels(dir)
	if err != nil {
		return nil, err
	}
	bundle.Specialized = specialized
	bundle.Capability = ensemble.DecideCapability(specialized)

	var meta struct {
		FeatureColumns []string `json:"feature_columns"`
	}
	switch err := readJSON(filepath.Join(dir, artifactMetadata), &meta); {
	case err == nil:
		bundle.MetadataFeatures = meta.FeatureColumns
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("run_id", l.runID).Msg("bundle has no metadata, feature contract falls back")
	default:
		return nil, fmt.Errorf("bundle %s: %w", l.runID, err)
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	log.Info().Str("run_id", l.runID).Str("capability", string(bundle.Capability)).
		Int("scaler_width", scaler.Width()).Int("entity_models", len(specialized)).
		Msg("model bundle loaded")
	return bundle, nil
}

type entityModelArtifact struct {
	Scaler ensemble.Scaler     `json:"scaler"`
	Model  ensemble.LinearModel `json:"model"`
}

func (l *Loader) loadEntityModels(dir string) (map[string]ensemble.EntityModel, error) {
	var raw map[string]entityModelArtifact
	switch err := readJSON(filepath.Join(dir, artifactEntityModels), &raw); {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	default:
		return nil, fmt.Errorf("bundle %s: %w", l.runID, err)
	}

	out := make(map[string]ensemble.EntityModel, len(raw))
	for entity, art := range raw {
		scaler := art.Scaler
		model := art.Model
		out[entity] = ensemble.EntityModel{Scaler: &scaler, Model: &model}
	}
	return out, nil
}

// ensureArtifacts downloads any artifact missing from the local cache.
// Presence of the file is the cache key; a partial earlier download is
// repaired file by file.
func (l *Loader) ensureArtifacts() (string, error) {
	dir := filepath.Join(l.cacheDir, l.runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model cache dir: %w", err)
	}

	required := map[string]bool{
		artifactScaler: true,
		artifactBase:   true,
	}
	optional := []string{artifactEnhanced, artifactEntityModels, artifactMetadata}

	for _, name := range append([]string{artifactScaler, artifactBase}, optional...) {
		local := filepath.Join(dir, name)
		if _, err := os.Stat(local); err == nil {
			continue
		}

		remote := fmt.Sprintf("%s/%s/artifacts/%s", l.modelsPath, l.runID, name)
		data, err := l.store.Get(remote)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) && !required[name] {
				continue
			}
			return "", fmt.Errorf("failed to fetch artifact %s: %w", remote, err)
		}
		if err := os.WriteFile(local, data, 0644); err != nil {
			return "", fmt.Errorf("failed to cache artifact %s: %w", name, err)
		}
		log.Debug().Str("artifact", name).Str("run_id", l.runID).Msg("artifact downloaded")
	}
	return dir, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
