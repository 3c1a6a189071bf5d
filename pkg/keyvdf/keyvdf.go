// Package keyvdf extracts depot decryption keys from Valve KeyValues
// ("VDF") documents such as key.vdf and config.vdf.
package keyvdf

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"

	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/model"
)

// decryptionKeyField is the exact field name used by key files.
const decryptionKeyField = "DecryptionKey"

// Extract parses a VDF document and returns the (depotID, decryptionKey)
// pairs found under the top-level "depots" section. A missing or ill-shaped
// section yields an empty list; only a parser failure is reported as an
// error, which callers treat as a file with zero keys.
func Extract(data []byte) ([]model.DepotKey, error) {
	parsed, err := vdf.NewParser(bytes.NewReader(data)).Parse()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrParse, err.Error())
	}

	depots, ok := findDepots(parsed)
	if !ok {
		return nil, nil
	}

	keys := make([]model.DepotKey, 0, len(depots))
	for _, depotID := range sortedDepotIDs(depots) {
		entry, ok := depots[depotID].(map[string]interface{})
		if !ok {
			continue
		}
		key, ok := entry[decryptionKeyField].(string)
		if !ok || key == "" {
			continue
		}
		keys = append(keys, model.DepotKey{DepotID: depotID, DecryptionKey: key})
	}
	return keys, nil
}

// findDepots locates the "depots" section at the document root, matching the
// section name case-insensitively.
func findDepots(doc map[string]interface{}) (map[string]interface{}, bool) {
	for name, value := range doc {
		if !strings.EqualFold(name, "depots") {
			continue
		}
		if section, ok := value.(map[string]interface{}); ok {
			return section, true
		}
		return nil, false
	}
	return nil, false
}

// sortedDepotIDs returns the section's keys in ascending numeric order so
// extraction is deterministic regardless of map iteration order.
func sortedDepotIDs(depots map[string]interface{}) []string {
	ids := make([]string, 0, len(depots))
	for id := range depots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aerr := strconv.ParseUint(ids[i], 10, 64)
		b, berr := strconv.ParseUint(ids[j], 10, 64)
		if aerr != nil || berr != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})
	return ids
}
