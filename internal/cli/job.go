package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/skyfetch/internal/jobfile"
)

// NewJobCmd создаёт группу команд для управления заданиями.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage jobs",
	}

	cmd.AddCommand(
		newJobSubmitCmd(clientFn, outputFn),
		newJobListCmd(clientFn, outputFn),
		newJobShowCmd(clientFn, outputFn),
		newJobResultCmd(clientFn, outputFn),
		newJobStatsCmd(clientFn, outputFn),
		newJobCancelCmd(clientFn, outputFn),
	)

	return cmd
}

func newJobSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit [PIPELINE]",
		Short: "Submit a job",
		Long: `Submit a job either as pipeline text or from an HCL jobfile.

Examples:
  skyfetch job submit 'fetch(site=opensky) -> convert(to=csv) -> save(out=/data/day.csv)'
  skyfetch job submit -f jobs.hcl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if file == "" {
				if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
					return fmt.Errorf("pipeline text or -f FILE is required")
				}
				job, err := client.SubmitJob(args[0])
				if err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Job submitted: %s", job.ID))
				out.Print(jobHeaders(), [][]string{jobRow(*job)}, job)
				return nil
			}

			if len(args) > 0 {
				return fmt.Errorf("pipeline text and -f FILE are mutually exclusive")
			}

			// Jobfile компилируется на стороне клиента; каждый блок job
			// уходит отдельным заданием.
			jobs, err := jobfile.Load(file)
			if err != nil {
				return err
			}

			submitted := make([]JobResponse, 0, len(jobs))
			for _, j := range jobs {
				resp, err := client.SubmitJob(j.Pipeline)
				if err != nil {
					return fmt.Errorf("job %q: %w", j.Name, err)
				}
				out.Success(fmt.Sprintf("Job %q submitted: %s", j.Name, resp.ID))
				submitted = append(submitted, *resp)
			}

			rows := make([][]string, len(submitted))
			for i, j := range submitted {
				rows[i] = jobRow(j)
			}
			out.Print(jobHeaders(), rows, submitted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "HCL jobfile to submit")

	return cmd
}

func newJobListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs()
			if err != nil {
				return err
			}

			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = jobRow(j)
			}

			out.Print(jobHeaders(), rows, jobs)
			return nil
		},
	}
}

func newJobShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "STATE", "PIPELINE", "OUTPUT", "ERROR", "CREATED"},
				[][]string{{job.ID, job.State, job.Pipeline, job.Output, job.Error, job.CreatedAt}},
				job,
			)
			return nil
		},
	}
}

func newJobResultCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "result ID",
		Short: "Show the result of a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.GetResult(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"OUTPUT", "ERROR"},
				[][]string{{result.Output, result.Error}},
				result,
			)
			return nil
		},
	}
}

func newJobStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats ID",
		Short: "Show job traffic counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			stats, err := client.GetStats(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"PACKETS", "BYTES", "BYTES_OUT", "ERRORS", "DURATION"},
				[][]string{{
					fmt.Sprintf("%d", stats.Packets),
					fmt.Sprintf("%d", stats.Bytes),
					fmt.Sprintf("%d", stats.BytesOut),
					fmt.Sprintf("%d", stats.Errors),
					stats.Duration,
				}},
				stats,
			)
			return nil
		},
	}
}

func newJobCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.CancelJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job cancelled: %s", job.ID))
			return nil
		},
	}
}

func jobHeaders() []string {
	return []string{"ID", "STATE", "PIPELINE", "CREATED"}
}

func jobRow(j JobResponse) []string {
	return []string{j.ID, j.State, j.Pipeline, j.CreatedAt}
}
