// Command loadtest drives N websocket clients against a running server,
// measures end-to-end delivery latency of their own messages, and prints
// a per-client summary table.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	Addr     string        `envconfig:"ADDR" default:"ws://localhost:8080/ws"`
	Room     string        `envconfig:"ROOM" default:"load"`
	Clients  int           `envconfig:"CLIENTS" default:"10"`
	Messages int           `envconfig:"MESSAGES" default:"20"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

type frame struct {
	Type        string          `json:"type"`
	DisplayName string          `json:"displayName,omitempty"`
	Room        string          `json:"room,omitempty"`
	Body        string          `json:"body,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type result struct {
	client    int
	delivered int
	min       time.Duration
	max       time.Duration
	total     time.Duration
	err       error
}

func main() {
	var cfg Config
	if err := envconfig.Process("LOADTEST", &cfg); err != nil {
		color.Red.Printf("config error: %v\n", err)
		os.Exit(1)
	}

	color.Green.Printf("Starting %d clients against %s (room %q, %d messages each)\n",
		cfg.Clients, cfg.Addr, cfg.Room, cfg.Messages)

	results := make([]result, cfg.Clients)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Clients; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = runClient(n, cfg)
		}(i)
	}
	wg.Wait()

	printSummary(results)
}

// runClient joins the room, sends its messages, and times the round trip
// until its own message comes back through the broadcast path.
func runClient(n int, cfg Config) result {
	res := result{client: n, min: cfg.Timeout}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.Addr, nil)
	if err != nil {
		res.err = fmt.Errorf("dial: %w", err)
		return res
	}
	defer conn.Close()

	name := fmt.Sprintf("load-%d", n)
	if err := conn.WriteJSON(frame{Type: "joinRoom", DisplayName: name, Room: cfg.Room}); err != nil {
		res.err = fmt.Errorf("join: %w", err)
		return res
	}

	for i := 0; i < cfg.Messages; i++ {
		body := fmt.Sprintf("%s-msg-%d", name, i)
		start := time.Now()
		if err := conn.WriteJSON(frame{Type: "sendMessage", Body: body}); err != nil {
			res.err = fmt.Errorf("send: %w", err)
			return res
		}
		if err := awaitEcho(conn, body, cfg.Timeout); err != nil {
			res.err = err
			return res
		}
		elapsed := time.Since(start)
		res.delivered++
		res.total += elapsed
		if elapsed < res.min {
			res.min = elapsed
		}
		if elapsed > res.max {
			res.max = elapsed
		}
	}
	return res
}

// awaitEcho reads frames until the sent body comes back or the deadline hits.
func awaitEcho(conn *websocket.Conn, body string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return err
		}
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("waiting for echo of %q: %w", body, err)
		}
		if f.Type != "message" {
			continue
		}
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			continue
		}
		if payload.Body == body {
			return nil
		}
	}
}

func printSummary(results []result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Client", "Delivered", "Min", "Avg", "Max", "Error"})

	failures := 0
	for _, res := range results {
		avg := time.Duration(0)
		if res.delivered > 0 {
			avg = res.total / time.Duration(res.delivered)
		}
		errText := ""
		if res.err != nil {
			errText = res.err.Error()
			failures++
		}
		table.Append([]string{
			fmt.Sprintf("load-%d", res.client),
			fmt.Sprintf("%d", res.delivered),
			res.min.Round(time.Microsecond).String(),
			avg.Round(time.Microsecond).String(),
			res.max.Round(time.Microsecond).String(),
			errText,
		})
	}
	table.Render()

	if failures > 0 {
		color.Red.Printf("%d client(s) failed\n", failures)
		os.Exit(1)
	}
	color.Green.Println("All clients completed")
}
