package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// document is the on-disk shape of the archive.
type document struct {
	Messages []Record `json:"messages"`
}

// Archive is an in-memory view of the history document, keyed by
// message ID.
type Archive struct {
	log  *slog.Logger
	path string
	byID map[int64]Record
}

// Load reads the archive at path. A missing file yields an empty
// archive bound to the same path.
func Load(log *slog.Logger, path string) (*Archive, error) {
	a := &Archive{
		log:  log.With("component", "history"),
		path: path,
		byID: make(map[int64]Record),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		a.log.Debug("No existing archive", "path", path)

		return a, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", path, err)
	}

	for _, rec := range doc.Messages {
		a.byID[rec.MessageID] = rec
	}

	a.log.Debug("Loaded archive", "path", path, "records", len(a.byID))

	return a, nil
}

// Len returns the number of archived records.
func (a *Archive) Len() int {
	return len(a.byID)
}

// Get returns the record with the given message ID.
func (a *Archive) Get(messageID int64) (Record, bool) {
	rec, ok := a.byID[messageID]

	return rec, ok
}

// Merge adds records the archive does not yet hold and returns how
// many were added. Existing records are never overwritten, so a
// re-fetch of an already-exported range is a no-op.
func (a *Archive) Merge(records []Record) int {
	added := 0

	for _, rec := range records {
		if _, ok := a.byID[rec.MessageID]; ok {
			continue
		}

		a.byID[rec.MessageID] = rec
		added++
	}

	a.log.Debug("Merged records", "added", added, "total", len(a.byID))

	return added
}

// ResolveReplies fills in the username and quoted text on every reply
// reference whose target is present in the archive. Quoted text is
// bounded to 100 runes. References to absent messages keep an
// "unknown" username and empty text.
func (a *Archive) ResolveReplies() {
	for id, rec := range a.byID {
		if rec.ReplyTo == nil {
			continue
		}

		reply := *rec.ReplyTo

		if original, ok := a.byID[reply.MessageID]; ok {
			reply.Username = original.Username
			reply.Text = truncateRunes(original.Text, replyPreviewLen)
		} else if reply.Username == "" {
			reply.Username = "unknown"
		}

		rec.ReplyTo = &reply
		a.byID[id] = rec
	}
}

// Records returns all records sorted by message ID, which is the
// chronological order of the originating chat.
func (a *Archive) Records() []Record {
	records := make([]Record, 0, len(a.byID))
	for _, rec := range a.byID {
		records = append(records, rec)
	}

	slices.SortFunc(records, func(x, y Record) int {
		switch {
		case x.MessageID < y.MessageID:
			return -1
		case x.MessageID > y.MessageID:
			return 1
		default:
			return 0
		}
	})

	return records
}

// Save writes the archive back to its path as an indented JSON
// document.
func (a *Archive) Save() error {
	doc := document{Messages: a.Records()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	if err := os.WriteFile(a.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	a.log.Info("Saved archive", "path", a.path, "records", len(a.byID))

	return nil
}
