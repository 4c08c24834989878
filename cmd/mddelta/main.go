package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"mddelta/internal/config"
	"mddelta/internal/pipeline"
	"mddelta/internal/render"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mddelta",
		Short: "Structural comparison of Markdown document revisions",
	}
	dbPath     string
	jsonOutput bool
	noColor    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the snapshot database (SQLite)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")

	diffCmd.Flags().StringVar(&diffRef, "ref", "", "Compare the file against this git revision")
	diffCmd.Flags().StringVar(&diffSnapshot, "snapshot", "", "Compare the file against this stored snapshot label")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)

	rootCmd.AddCommand(tocCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func loadSettings() (*config.Config, *pipeline.Pipeline, *render.Renderer) {
	cfg, err := config.LoadConfig("mddelta.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Snapshot.DB = dbPath
	}
	if jsonOutput {
		cfg.Output.JSON = true
	}
	if noColor {
		cfg.Output.Color = false
	}
	return cfg, pipeline.New(cfg.Snapshot.DB), render.NewRenderer(cfg.Output.Color)
}

var tocCmd = &cobra.Command{
	Use:   "toc <file>",
	Short: "Print the hashed table of contents of a Markdown file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, p, r := loadSettings()

		t, err := p.Toc(args[0])
		if err != nil {
			log.Fatalf("Failed to build toc: %v", err)
		}
		if cfg.Output.JSON {
			b, err := render.TocJSON(t)
			if err != nil {
				log.Fatalf("Failed to encode toc: %v", err)
			}
			os.Stdout.Write(b)
			return
		}
		fmt.Print(r.Toc(t))
	},
}

var (
	diffRef      string
	diffSnapshot string
)

var diffCmd = &cobra.Command{
	Use:   "diff [<original>] <updated>",
	Short: "Compare two revisions of a Markdown document",
	Long: `Compare two revisions of a Markdown document.

With two file arguments the files are compared directly. With --ref the
single file argument is compared against its content at a git revision;
with --snapshot it is compared against a stored snapshot.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, p, r := loadSettings()

		var cmp *pipeline.Comparison
		var err error
		switch {
		case diffRef != "" && len(args) == 1:
			cmp, err = p.CompareWithRevision(diffRef, args[0])
		case diffSnapshot != "" && len(args) == 1:
			cmp, err = p.CompareWithSnapshot(context.Background(), diffSnapshot, args[0])
		case len(args) == 2:
			cmp, err = p.CompareFiles(args[0], args[1])
		default:
			log.Fatalf("diff needs two files, or one file with --ref or --snapshot")
		}
		if err != nil {
			log.Fatalf("Comparison failed: %v", err)
		}

		if cfg.Output.JSON {
			b, err := render.DeltaJSON(cmp.OriginalSource, cmp.UpdatedSource, cmp.Delta)
			if err != nil {
				log.Fatalf("Failed to encode report: %v", err)
			}
			os.Stdout.Write(b)
		} else {
			fmt.Print(r.Delta(cmp.Delta, cmp.Updated))
		}

		if cmp.Delta.HasBrokenLinks() {
			os.Exit(2)
		}
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored TOC snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <label> <file>",
	Short: "Store the current TOC of a file under a label",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, p, _ := loadSettings()
		if err := p.SaveSnapshot(context.Background(), args[0], args[1]); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("Saved snapshot %q for %s\n", args[0], args[1])
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the snapshots stored for a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, p, _ := loadSettings()
		infos, err := p.ListSnapshots(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots stored.")
			return
		}
		for _, info := range infos {
			fmt.Printf("%-20s %s  page %s\n", info.Label, info.CreatedAt, info.PageHash)
		}
	},
}
