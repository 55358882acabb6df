package main

import (
	"context"

	"samsara/internal/collab"
	"samsara/pkg/hybrid"
)

// buildMetaLookup bridges a collab.VectorStore's stored rows into a
// hybrid.MetaLookup: each row's "text" metadata key (set by
// recall.Store.Upsert) becomes the fused Result's Content, and an optional
// "pramana" key overrides the default trust tag for that source.
func buildMetaLookup(vectors collab.VectorStore) hybrid.MetaLookup {
	return func(ctx context.Context, ids []string) map[string]hybrid.DocMeta {
		rows, err := vectors.GetAll(ctx)
		if err != nil {
			return nil
		}

		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}

		out := make(map[string]hybrid.DocMeta, len(ids))
		for _, row := range rows {
			if !wanted[row.ID] {
				continue
			}
			text, _ := row.Metadata["text"].(string)
			pramana, _ := row.Metadata["pramana"].(string)
			if pramana == "" {
				pramana = string(hybrid.DefaultPramana)
			}
			out[row.ID] = hybrid.DocMeta{
				Title:   row.SourceID,
				Content: text,
				Pramana: hybrid.Pramana(pramana),
			}
		}
		return out
	}
}
