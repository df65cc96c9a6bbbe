package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewKindsCmd создаёт команду вывода реестра видов задач.
func NewKindsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List available task kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			kinds, err := client.ListKinds()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "CAPABILITY", "DESCRIPTION"}
			rows := make([][]string, len(kinds))
			for i, k := range kinds {
				rows[i] = []string{k.Name, k.Capability, k.Description}
			}

			out.Print(headers, rows, kinds)
			return nil
		},
	}
}

// NewQueuesCmd создаёт команду вывода размеров очередей.
func NewQueuesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "Show scheduler queue sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			queues, err := client.GetQueues()
			if err != nil {
				return err
			}

			out.Print(
				[]string{"WAITING", "RUNNING", "FINISHED"},
				[][]string{{
					strconv.Itoa(queues.Waiting),
					strconv.Itoa(queues.Running),
					strconv.Itoa(queues.Finished),
				}},
				queues,
			)
			return nil
		},
	}
}

// NewStateCmd создаёт команду чтения записи state по тегу.
func NewStateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "state TAG",
		Short: "Show a state entry by tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			st, err := client.GetState(args[0])
			if err != nil {
				return err
			}

			payload := string(st.Payload)
			if payload == "" {
				payload = string(st.Raw)
			}

			out.Print(
				[]string{"TAG", "PAYLOAD"},
				[][]string{{st.Tag, payload}},
				st,
			)
			return nil
		},
	}
}
