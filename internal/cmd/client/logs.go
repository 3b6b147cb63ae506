package client

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the soyuznikrr client.
// It registers the logs command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "soyuznikrr",
		Short: "soyuznikrr client commands",
	}
	root.AddCommand(NewLogsCommand(baseURL))
	return root
}

// NewLogsCommand constructs the `logs` command group and subcommands.
func NewLogsCommand(baseURL BaseURLFunc) *cobra.Command {
	logsCmd := &cobra.Command{Use: "logs", Short: "Log bus operations"}
	logsCmd.PersistentFlags().String("api", "", "HTTP API base URL (overrides SOYUZNIKRR_HTTP)")

	// --api overrides the discovered base URL.
	resolve := func() string {
		if v, _ := logsCmd.PersistentFlags().GetString("api"); v != "" {
			return strings.TrimSuffix(v, "/")
		}
		return baseURL()
	}

	logsCmd.AddCommand(
		newLogsTailCommand(resolve),
		newLogsListCommand(resolve),
	)

	return logsCmd
}

// newLogsTailCommand constructs the `logs tail` subcommand.
func newLogsTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the live log stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("level")
			source, _ := cmd.Flags().GetString("source")
			filter, _ := cmd.Flags().GetString("filter")
			afterSeq, _ := cmd.Flags().GetUint64("after-seq")

			q := url.Values{}
			if level != "" {
				q.Set("level", level)
			}
			if source != "" {
				q.Set("source", source)
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			if afterSeq > 0 {
				q.Set("after_seq", fmt.Sprintf("%d", afterSeq))
			}
			u := baseURL() + "/api/v1/logs/stream"
			if len(q) > 0 {
				u += "?" + q.Encode()
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "text/event-stream")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return fmt.Errorf("http error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}

			out := cmd.OutOrStdout()
			return readSSE(resp.Body, func(data string) error {
				_, err := fmt.Fprintln(out, data)
				return err
			})
		},
	}
	tailCmd.Flags().String("level", "", "Minimum level: DEBUG|INFO|WARNING|ERROR|CRITICAL")
	tailCmd.Flags().String("source", "", "Logger name prefix (e.g. soyuznikrr.api)")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	tailCmd.Flags().Uint64("after-seq", 0, "Resume after this sequence number")
	return tailCmd
}

// newLogsListCommand constructs the `logs list` subcommand.
func newLogsListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "One-shot snapshot of the retained log buffer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("level")
			source, _ := cmd.Flags().GetString("source")
			filter, _ := cmd.Flags().GetString("filter")
			afterSeq, _ := cmd.Flags().GetUint64("after-seq")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			if level != "" {
				q.Set("level", level)
			}
			if source != "" {
				q.Set("source", source)
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			if afterSeq > 0 {
				q.Set("after_seq", fmt.Sprintf("%d", afterSeq))
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprintf("%d", limit))
			}
			u := baseURL() + "/api/v1/logs"
			if len(q) > 0 {
				u += "?" + q.Encode()
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return fmt.Errorf("http error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}

			var data struct {
				Entries []json.RawMessage `json:"entries"`
				MaxSeq  uint64            `json:"max_seq"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	listCmd.Flags().String("level", "", "Minimum level: DEBUG|INFO|WARNING|ERROR|CRITICAL")
	listCmd.Flags().String("source", "", "Logger name prefix (e.g. soyuznikrr.api)")
	listCmd.Flags().String("filter", "", "CEL filter (server-side)")
	listCmd.Flags().Uint64("after-seq", 0, "Only entries after this sequence number")
	listCmd.Flags().Int("limit", 0, "Max entries to return (0 = server default)")
	return listCmd
}

// readSSE consumes a text/event-stream body and invokes fn with the data
// payload of each event. Comment frames (heartbeats) and retry hints are
// skipped. Returns nil when the stream ends.
func readSSE(r io.Reader, fn func(data string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if err := fn(data.String()); err != nil {
					return err
				}
				data.Reset()
			}
		case strings.HasPrefix(line, ":"):
			// comment frame, e.g. heartbeat
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:, retry:, id: fields carry no payload to print
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
