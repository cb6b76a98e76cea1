// ShareNear CLI - Command line client for ShareNear
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Afhammirza1/sharingapp/clients/go/sharenear"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := sharenear.NewClient(os.Getenv("SHARENEAR_URL"))
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "test-connection":
		resp, err := client.TestConnection()
		exitOnError(err)
		printJSON(resp)

	case "create":
		code := ""
		if len(os.Args) > 2 {
			code = os.Args[2]
		}
		resp, err := client.CreateRoom(code)
		exitOnError(err)
		fmt.Printf("Room: %s\n", resp.Code)

	case "room":
		requireArgs(3, "Usage: sharenear room <code>")
		resp, err := client.GetRoom(os.Args[2])
		exitOnError(err)
		printJSON(resp)

	case "file":
		requireArgs(6, "Usage: sharenear file <code> <name> <size> <type>")
		size, err := strconv.ParseInt(os.Args[4], 10, 64)
		exitOnError(err)
		resp, err := client.AddFile(os.Args[2], os.Args[3], size, os.Args[5])
		exitOnError(err)
		fmt.Printf("File: %s\n", resp.FileID)

	case "send":
		requireArgs(5, "Usage: sharenear send <code> <sender> <message>")
		resp, err := client.SendMessage(os.Args[2], os.Args[4], os.Args[3])
		exitOnError(err)
		fmt.Printf("Sent: %s\n", resp.ID)

	case "read":
		requireArgs(3, "Usage: sharenear read <code> [limit]")
		limit := 0
		if len(os.Args) > 3 {
			n, err := strconv.Atoi(os.Args[3])
			exitOnError(err)
			limit = n
		}
		resp, err := client.GetMessages(os.Args[2], limit)
		exitOnError(err)
		for _, msg := range resp.Messages {
			ts := msg.Timestamp.Local().Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s: %s\n", ts, msg.Sender, msg.Text)
		}

	case "signal":
		requireArgs(4, "Usage: sharenear signal <code> <json-object>")
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(os.Args[3]), &payload); err != nil {
			exitOnError(fmt.Errorf("payload must be a JSON object: %w", err))
		}
		exitOnError(client.SendSignal(os.Args[2], payload))
		fmt.Println("Signal sent")

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`ShareNear CLI - rooms, file metadata, chat and signaling

Usage: sharenear <command> [options]

Commands:
  create [code]                      Create a room (code generated if omitted)
  room <code>                        Show a room and its files
  file <code> <name> <size> <type>   Record file metadata
  send <code> <sender> <message>     Send a chat message
  read <code> [limit]                Read chat messages
  signal <code> <json-object>        Post a WebRTC signaling payload
  test-connection                    Round-trip a record through the store
  health                             Check server health

Environment:
  SHARENEAR_URL   Server URL (default: http://localhost:8001)`)
}

func requireArgs(n int, msg string) {
	if len(os.Args) < n {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
