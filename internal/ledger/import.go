package ledger

import (
	"encoding/json"
	"fmt"

	"moneta/internal/core"
)

// ImportDocument is the accepted import payload: a JSON object carrying a
// records array. Other top-level fields are ignored, which lets a full backup
// double as an import source.
type ImportDocument struct {
	Records []core.Record `json:"records"`
}

// ParseImportDocument decodes an import payload. A document that fails to
// parse surfaces an import error and must leave existing state untouched;
// callers only merge after a successful parse.
func ParseImportDocument(data []byte) (ImportDocument, error) {
	var doc ImportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ImportDocument{}, fmt.Errorf("%w: parse import document: %v", core.ErrImport, err)
	}
	return doc, nil
}
