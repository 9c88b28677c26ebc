package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage the job catalogue",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every stored job",
	Run: func(_ *cobra.Command, _ []string) {
		listJobs()
	},
}

var jobsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import jobs from a YAML or JSON file",
	Long:  "Import jobs from a YAML or JSON file. Every record is validated before any is stored.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		importJobs(args[0])
	},
}

var jobsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample vacancies when the catalogue is empty",
	Run: func(_ *cobra.Command, _ []string) {
		seedJobs()
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsImportCmd, jobsSeedCmd)
	rootCmd.AddCommand(jobsCmd)
}

func listJobs() {
	ctx := context.Background()

	a, logger := bootstrap(ctx, "")
	defer a.Close()
	defer logger.Sync()

	list, err := a.jobs.List(ctx)
	if err != nil {
		logger.Fatal("listing jobs", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION")
	for _, r := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Title, r.Company, r.Location)
	}
	w.Flush()
}

func importJobs(path string) {
	ctx := context.Background()

	a, logger := bootstrap(ctx, "")
	defer a.Close()
	defer logger.Sync()

	records, err := jobs.LoadFile(path)
	if err != nil {
		logger.Fatal("reading jobs file", zap.String("filename", path), zap.Error(err))
	}

	n, err := a.jobs.Import(ctx, records)
	if err != nil {
		logger.Fatal("importing jobs", zap.Int("imported", n), zap.Error(err))
	}

	logger.Info("jobs imported", zap.String("filename", path), zap.Int("count", n))
}

func seedJobs() {
	ctx := context.Background()

	a, logger := bootstrap(ctx, "")
	defer a.Close()
	defer logger.Sync()

	seeded, err := a.jobs.Seed(ctx)
	if err != nil {
		logger.Fatal("seeding jobs", zap.Error(err))
	}
	if !seeded {
		logger.Info("catalogue is not empty, nothing to seed")
	}
}
