package parser

import (
	"path/filepath"
	"strings"

	"modtrans/internal/record"
)

const blobAddr = "*"

// blobKey derives the single record key from the asset's base name.
func blobKey(path string) string {
	base := filepath.Base(path)
	key := strings.TrimSuffix(base, filepath.Ext(base))
	if key == "" || key == "." {
		return "content"
	}
	return key
}

func extractBlob(env Env, in Input) ([]record.Record, error) {
	key := blobKey(in.Path)
	whole := func(content string) ([]unit, int, error) {
		return []unit{{key: key, addr: blobAddr, text: content}}, 1, nil
	}
	units, _, _ := whole(in.Original)
	ref, tr := counterparts(env, in, whole)
	return align(env, units, ref, tr), nil
}

func restoreBlob(env Env, original string, edited []record.Record) (string, error) {
	for _, r := range edited {
		if r.Writable() {
			return r.Value(), nil
		}
	}
	env.Log.Warn().Msg("No record to restore, original kept")
	return original, nil
}
