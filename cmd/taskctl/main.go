package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taskTracker/internal/client"
	"taskTracker/internal/protocol"
)

var (
	address string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "taskctl",
	Short:         "Command line client for the task server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *client.Client) error {
			if err := c.Register(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Println(color.GreenString("registered %s", args[0]))
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <username> <description...>",
	Short: "Append a task for a user",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := strings.Join(args[1:], " ")
		return withClient(cmd.Context(), func(ctx context.Context, c *client.Client) error {
			if err := c.AddTask(ctx, args[0], desc); err != nil {
				return err
			}
			fmt.Println(color.GreenString("added"))
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List a user's tasks in creation order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *client.Client) error {
			tasks, err := c.GetTasks(ctx, args[0])
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println(color.YellowString("no tasks"))
				return nil
			}
			for i, t := range tasks {
				fmt.Printf("%3d. %s\n", i+1, t)
			}
			return nil
		})
	},
}

var rawCmd = &cobra.Command{
	Use:   "raw <request>",
	Short: "Send a raw request line and print the response body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, rest, _ := strings.Cut(args[0], protocol.Delimiter)
		req := &protocol.Request{Command: protocol.Command(name)}
		if rest != "" {
			req.Args = []string{rest}
		}
		return withClient(cmd.Context(), func(ctx context.Context, c *client.Client) error {
			resp, err := c.Do(ctx, req)
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		})
	},
}

func withClient(ctx context.Context, fn func(context.Context, *client.Client) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := client.DefaultConfig()
	cfg.Address = address
	c, err := client.Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&address, "addr", "127.0.0.1:8888", "Task server address (host:port)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for the whole command")
	rootCmd.AddCommand(registerCmd, addCmd, listCmd, rawCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
