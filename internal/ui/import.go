package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/db"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/item"
)

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import items from another database or a JSON export",
		Long: `Import items into the local database.

The source is either another cuida database or a JSON file holding an
array of items as saved by the browser agenda (id, type, title, date,
time, description, dose). Items keep their IDs, so importing twice
updates instead of duplicating. Invalid records are skipped.

Example:
  cuida import /path/to/other.db
  cuida import agenda_items_v2.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			destPath, err := resolvePath(a.config.Storage.DBPath)
			if err != nil {
				return err
			}

			if sourcePath == destPath {
				return fmt.Errorf("source database matches current database")
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source path is a directory: %s", sourcePath)
			}

			var res importResult
			if strings.EqualFold(filepath.Ext(sourcePath), ".json") {
				res, err = importJSON(cmd.Context(), a.repo, sourcePath)
			} else {
				res, err = importDatabase(cmd.Context(), a.repo, sourcePath)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", pluralize(res.Imported, "item"), sourcePath)
			if res.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s\n", pluralize(res.Skipped, "invalid record"))
			}
			return nil
		},
	}

	return cmd
}

type importResult struct {
	Imported int
	Skipped  int
}

// legacyItem is one record of the browser agenda's saved item list.
type legacyItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Dose        string `json:"dose"`
}

// importJSON reads a JSON array of legacy records. Each record goes through
// the same validation as a form submission.
func importJSON(ctx context.Context, dest item.Repository, path string) (importResult, error) {
	var res importResult

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return res, fmt.Errorf("parsing %s: expected a JSON array of items: %w", path, err)
	}

	seen := make(map[string]bool, len(records))
	for i, raw := range records {
		var rec legacyItem
		if err := json.Unmarshal(raw, &rec); err != nil {
			debuglog.Error(fmt.Sprintf("import record %d", i), err)
			res.Skipped++
			continue
		}

		id := strings.TrimSpace(rec.ID)
		if id != "" && seen[id] {
			// First record with an ID wins
			res.Skipped++
			continue
		}

		it, err := item.New(item.Form{
			ID:          id,
			Kind:        rec.Type,
			Title:       rec.Title,
			Date:        rec.Date,
			Time:        rec.Time,
			Description: rec.Description,
			Dose:        rec.Dose,
		})
		if err != nil {
			debuglog.Error(fmt.Sprintf("import record %d", i), err)
			res.Skipped++
			continue
		}
		seen[it.ID] = true

		if err := dest.UpsertItem(ctx, it); err != nil {
			return res, fmt.Errorf("importing item %q: %w", it.Title, err)
		}
		res.Imported++
	}

	return res, nil
}

// importDatabase copies every item of another cuida database.
func importDatabase(ctx context.Context, dest item.Repository, sourcePath string) (importResult, error) {
	var res importResult

	sourceRepo, err := db.New(sourcePath)
	if err != nil {
		return res, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = sourceRepo.Close() }()

	items, err := sourceRepo.ListItems(ctx)
	if err != nil {
		return res, fmt.Errorf("listing source items: %w", err)
	}

	for i := range items {
		if err := dest.UpsertItem(ctx, &items[i]); err != nil {
			return res, fmt.Errorf("importing item %q: %w", items[i].Title, err)
		}
		res.Imported++
	}

	return res, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
