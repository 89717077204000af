// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value. Values
// fill config fields left empty by the config file and environment.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/pkg/types"
)

// Key files read by Apply.
const (
	KeyInferenceToken = "inference-token"
	KeyS3AccessKey    = "s3-access-key"
	KeyS3SecretKey    = "s3-secret-key"
)

// DefaultDir is where the CLI looks for key files.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies known secrets into cfg where the field is still empty, and
// returns the keys it used.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	var used []string
	fill := func(field *string, key string) {
		if v, ok := secrets[key]; ok && *field == "" {
			*field = v
			used = append(used, key)
		}
	}
	fill(&cfg.Inference.Token, KeyInferenceToken)
	fill(&cfg.Blob.S3.AccessKey, KeyS3AccessKey)
	fill(&cfg.Blob.S3.SecretKey, KeyS3SecretKey)
	return used
}
