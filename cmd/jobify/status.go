// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// ComponentStatus holds the probe result for one endpoint of a running server.
type ComponentStatus struct {
	Component string `json:"component"`
	URL       string `json:"url,omitempty"`
	Running   bool   `json:"running"`
	Health    string `json:"health,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// statusComponents is the fixed output order.
var statusComponents = []string{"api", "liveness", "readiness"}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running Jobify server",
		Long: `Probe the API listener and the health endpoints of a running server
at the configured addresses. Readiness reflects user store connectivity.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 2*time.Second, "per-probe timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	appCfg, err := loadConfigUnvalidated(cmd)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.timeout}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	statuses := map[string]ComponentStatus{
		"api": probe(ctx, client, "api", "http://"+dialAddr(appCfg.Server.Addr)+"/api/users?limit=1"),
	}
	if appCfg.Server.MetricsAddr == "" {
		for _, c := range statusComponents[1:] {
			statuses[c] = ComponentStatus{Component: c, Error: "metrics_addr is disabled"}
		}
	} else {
		base := "http://" + dialAddr(appCfg.Server.MetricsAddr)
		statuses["liveness"] = probe(ctx, client, "liveness", base+"/healthz/liveness")
		statuses["readiness"] = probe(ctx, client, "readiness", base+"/healthz/readiness")
	}

	if cfg.jsonOutput {
		output, err := formatStatusJSON(statuses)
		if err != nil {
			return err
		}
		cmd.Println(output)
		return nil
	}
	cmd.Print(formatStatusTable(statuses))
	return nil
}

// probe issues a GET and classifies the response. Any HTTP response means
// the listener is running; health is "ok" only for 2xx.
func probe(ctx context.Context, client *http.Client, component, url string) ComponentStatus {
	status := ComponentStatus{Component: component, URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	status.Running = true
	status.LatencyMS = time.Since(start).Milliseconds()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status.Health = "ok"
	} else {
		status.Health = strings.ToLower(http.StatusText(resp.StatusCode))
	}
	return status
}

// dialAddr turns a listen address into one a client can dial.
func dialAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func formatStatusTable(statuses map[string]ComponentStatus) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tHEALTH\tLATENCY\tDETAIL")
	_, _ = fmt.Fprintln(w, "---------\t------\t------\t-------\t------")

	for _, component := range statusComponents {
		status, ok := statuses[component]
		if !ok {
			continue
		}
		if status.Running {
			_, _ = fmt.Fprintf(w, "%s\trunning\t%s\t%dms\t%s\n",
				component, status.Health, status.LatencyMS, status.URL)
		} else {
			reason := "not running"
			if status.Error != "" {
				reason = status.Error
			}
			_, _ = fmt.Fprintf(w, "%s\tstopped\t-\t-\t%s\n", component, reason)
		}
	}

	_ = w.Flush()
	return b.String()
}

func formatStatusJSON(statuses map[string]ComponentStatus) (string, error) {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return "", oops.Code("ENCODE_FAILED").With("operation", "marshal status").Wrap(err)
	}
	return string(data), nil
}
