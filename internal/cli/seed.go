package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"vocab-quiz-service/internal/infra/postgres"
	"vocab-quiz-service/internal/infra/sqlite"
)

// NewSeedCmd inserts vocabulary into the configured store. Without --file it
// loads the built-in starter list.
func NewSeedCmd(configPath *string) *cobra.Command {
	var wordsFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the vocabulary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			var db *bun.DB
			switch {
			case cfg.Postgres.URL != "":
				if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
					return err
				}
				db = postgres.Open(cfg.Postgres.URL)
			case cfg.SQLite.Path != "":
				db, err = sqlite.Open(cfg.SQLite.Path)
				if err != nil {
					return err
				}
				sqlite.EnsureSchema(cmd.Context(), db, slog.Default())
			default:
				return fmt.Errorf("seed needs a postgres url or sqlite path")
			}
			defer db.Close()

			pairs := seedPairs()
			if wordsFile != "" {
				pairs, err = readWordsFile(wordsFile)
				if err != nil {
					return err
				}
			}

			repo := postgres.NewWordRepository(db)
			for _, p := range pairs {
				if _, err := repo.Add(cmd.Context(), p[0], p[1]); err != nil {
					return err
				}
			}
			slog.Info("vocabulary seeded", "words", len(pairs))
			return nil
		},
	}

	cmd.Flags().StringVar(&wordsFile, "file", "", "file of 'tr,en' lines to load instead of the starter list")
	return cmd
}

// readWordsFile parses lines of "tr,en"; blank lines and #-comments are
// skipped.
func readWordsFile(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pairs [][2]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tr, en, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("malformed line %q: want 'tr,en'", line)
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(tr), strings.TrimSpace(en)})
	}
	return pairs, scanner.Err()
}

func seedPairs() [][2]string {
	return [][2]string{
		{"kedi", "cat"},
		{"köpek", "dog"},
		{"kuş", "bird"},
		{"balık", "fish"},
		{"elma", "apple"},
		{"su", "water"},
		{"kitap", "book"},
		{"ev", "house"},
		{"araba", "car"},
		{"okul", "school"},
		{"masa", "table"},
		{"sandalye", "chair"},
		{"kalem", "pen"},
		{"kapı", "door"},
		{"pencere", "window"},
		{"güneş", "sun"},
		{"ay", "moon"},
		{"deniz", "sea"},
		{"ağaç", "tree"},
		{"çiçek", "flower"},
	}
}
