// Package seed loads the bundled sample folders, tags and notes.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"noteful/internal/named"
	"noteful/internal/notes"
)

//go:embed seed.json
var defaultData []byte

// Data is the seed file layout. Notes refer to folders and tags by name.
type Data struct {
	Folders []string   `json:"folders"`
	Tags    []string   `json:"tags"`
	Notes   []NoteSeed `json:"notes"`
}

type NoteSeed struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Folder  string   `json:"folder"`
	Tags    []string `json:"tags"`
}

// Counts reports how many records Apply created.
type Counts struct {
	Folders int
	Tags    int
	Notes   int
}

// Default returns the embedded sample data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &d, nil
}

// Apply creates everything in d through the services, so seeded records
// pass the same validation as API writes.
func Apply(ctx context.Context, d *Data, noteSvc *notes.Service, folderSvc, tagSvc *named.Service) (Counts, error) {
	var c Counts

	folderIDs, err := createNamed(ctx, folderSvc, d.Folders)
	if err != nil {
		return c, err
	}
	c.Folders = len(folderIDs)

	tagIDs, err := createNamed(ctx, tagSvc, d.Tags)
	if err != nil {
		return c, err
	}
	c.Tags = len(tagIDs)

	for _, n := range d.Notes {
		in := notes.CreateNoteInput{Title: n.Title, Content: n.Content}
		if n.Folder != "" {
			id, ok := folderIDs[n.Folder]
			if !ok {
				return c, fmt.Errorf("note %q: unknown folder %q", n.Title, n.Folder)
			}
			in.FolderID = id
		}
		for _, t := range n.Tags {
			id, ok := tagIDs[t]
			if !ok {
				return c, fmt.Errorf("note %q: unknown tag %q", n.Title, t)
			}
			in.Tags = append(in.Tags, id)
		}

		if _, err := noteSvc.Create(ctx, in); err != nil {
			return c, fmt.Errorf("seed note %q: %w", n.Title, err)
		}
		c.Notes++
	}

	return c, nil
}

func createNamed(ctx context.Context, svc *named.Service, names []string) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	for _, name := range names {
		res, err := svc.Create(ctx, named.Input{Name: name})
		if err != nil {
			return nil, fmt.Errorf("seed %s %q: %w", svc.Kind().Name, name, err)
		}
		ids[name] = res.ID.Hex()
	}
	return ids, nil
}
