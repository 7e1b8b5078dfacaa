package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/previewgrid/internal/config"
)

// statusReply mirrors the control server's /status payload.
type statusReply struct {
	WindowsFound  int               `json:"windows_found"`
	CurrentOrder  []int             `json:"current_order"`
	WindowMapping map[string]string `json:"window_mapping"`
}

// reorderReply mirrors the control server's /reorder payload.
type reorderReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   []int  `json:"order,omitempty"`
}

func controlClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	port := fs.Int("port", config.DefaultConfig().ControlPort, "Control API port")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: previewgrid status [--port N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Query a running 'previewgrid run' instance for its window status.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	resp, err := controlClient().Get(fmt.Sprintf("http://127.0.0.1:%d/status", *port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Cannot reach control API on port %d. Is 'previewgrid run' running?\n", failMark(), *port)
		return 1
	}
	defer resp.Body.Close()

	var st statusReply
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode response: %v\n", err)
		return 1
	}

	fmt.Printf("Windows found: %d\n", st.WindowsFound)
	fmt.Printf("Current order: %v\n", st.CurrentOrder)
	if len(st.WindowMapping) > 0 {
		fmt.Println("Mapping:")
		keys := make([]string, 0, len(st.WindowMapping))
		for k := range st.WindowMapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, st.WindowMapping[k])
		}
	}
	return 0
}

// parseOrder accepts "2,1,3,4" or "2 1 3 4".
func parseOrder(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	order := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid order value %q", f)
		}
		order = append(order, n)
	}
	return order, nil
}

func runReorder(args []string) int {
	fs := flag.NewFlagSet("reorder", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	port := fs.Int("port", config.DefaultConfig().ControlPort, "Control API port")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: previewgrid reorder [--port N] <order>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reorder windows through a running instance. The order is four")
		fmt.Fprintln(os.Stderr, "distinct values 1-4, e.g. 'previewgrid reorder 2,1,3,4'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	order, err := parseOrder(strings.Join(fs.Args(), ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", failMark(), err)
		return 2
	}

	payload, err := json.Marshal(map[string][]int{"order": order})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode request: %v\n", err)
		return 1
	}

	resp, err := controlClient().Post(
		fmt.Sprintf("http://127.0.0.1:%d/reorder", *port),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Cannot reach control API on port %d. Is 'previewgrid run' running?\n", failMark(), *port)
		return 1
	}
	defer resp.Body.Close()

	var out reorderReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode response: %v\n", err)
		return 1
	}

	if out.Success {
		fmt.Printf("%s %s\n", okMark(), out.Message)
		return 0
	}
	fmt.Printf("%s %s\n", failMark(), out.Message)
	return 1
}
