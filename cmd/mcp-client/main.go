// Command mcp-client is an interactive client for the wilhelm MCP server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./wilhelm mcp")
		os.Exit(2)
	}

	ctx := context.Background()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "wilhelm-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to the wilhelm MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                         - List available tools")
	fmt.Println("  /expand <word> [maxHops]       - Store-side expansion")
	fmt.Println("  /dfs <word>                    - Recursive expansion")
	fmt.Println("  /search <keyword>              - Search node labels")
	fmt.Println("  /count <language>              - Count terms of a language")
	fmt.Println("  /list <language> <perPage> <page> - Page through a vocabulary")
	fmt.Println("  /history [seed] [limit]        - Recent expansion runs")
	fmt.Println("  /smoke <word>                  - Call every read tool once")
	fmt.Println("  /exit                          - Exit the client")
	fmt.Println("  <word> [question]              - Explain a word (needs Gemini)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			fmt.Println("Goodbye!")
			return
		}
		if input == "/tools" {
			listTools(ctx, session)
			continue
		}

		name, toolArgs, err := parseCommand(input)
		if err != nil {
			fmt.Printf("❌ %v\n\n", err)
			continue
		}
		if name == "smoke" {
			smoke(ctx, session, toolArgs["word"].(string))
			continue
		}
		callTool(ctx, session, name, toolArgs)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

// parseCommand maps a REPL line to a tool name and its arguments.
func parseCommand(input string) (string, map[string]any, error) {
	parts := strings.Fields(input)
	cmd, rest := parts[0], parts[1:]

	need := func(n int, usage string) error {
		if len(rest) < n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch cmd {
	case "/expand":
		if err := need(1, "/expand <word> [maxHops]"); err != nil {
			return "", nil, err
		}
		args := map[string]any{"word": rest[0]}
		if len(rest) > 1 {
			hops, err := strconv.Atoi(rest[1])
			if err != nil {
				return "", nil, fmt.Errorf("maxHops must be an integer")
			}
			args["max_hops"] = hops
		}
		return "expand_word", args, nil
	case "/dfs":
		if err := need(1, "/dfs <word>"); err != nil {
			return "", nil, err
		}
		return "expand_recursive", map[string]any{"word": rest[0]}, nil
	case "/search":
		if err := need(1, "/search <keyword>"); err != nil {
			return "", nil, err
		}
		return "search_terms", map[string]any{"keyword": rest[0]}, nil
	case "/count":
		if err := need(1, "/count <language>"); err != nil {
			return "", nil, err
		}
		return "count_terms", map[string]any{"language": rest[0]}, nil
	case "/list":
		if err := need(3, "/list <language> <perPage> <page>"); err != nil {
			return "", nil, err
		}
		perPage, err1 := strconv.Atoi(rest[1])
		page, err2 := strconv.Atoi(rest[2])
		if err1 != nil || err2 != nil {
			return "", nil, fmt.Errorf("perPage and page must be integers")
		}
		return "list_vocabulary", map[string]any{"language": rest[0], "per_page": perPage, "page": page}, nil
	case "/history":
		args := map[string]any{}
		if len(rest) > 0 {
			args["seed"] = rest[0]
		}
		if len(rest) > 1 {
			limit, err := strconv.Atoi(rest[1])
			if err != nil {
				return "", nil, fmt.Errorf("limit must be an integer")
			}
			args["limit"] = limit
		}
		return "expansion_history", args, nil
	case "/smoke":
		if err := need(1, "/smoke <word>"); err != nil {
			return "", nil, err
		}
		return "smoke", map[string]any{"word": rest[0]}, nil
	}

	if strings.HasPrefix(cmd, "/") {
		return "", nil, fmt.Errorf("unknown command %s", cmd)
	}
	args := map[string]any{"word": cmd}
	if len(rest) > 0 {
		args["question"] = strings.Join(rest, " ")
	}
	return "explain_word", args, nil
}

func smoke(ctx context.Context, session *mcp.ClientSession, word string) {
	calls := []struct {
		name string
		args map[string]any
	}{
		{"expand_word", map[string]any{"word": word}},
		{"expand_recursive", map[string]any{"word": word}},
		{"search_terms", map[string]any{"keyword": word}},
		{"count_terms", map[string]any{"language": "latin"}},
		{"list_vocabulary", map[string]any{"language": "latin", "per_page": 5, "page": 1}},
		{"expansion_history", map[string]any{"limit": 5}},
	}
	for _, c := range calls {
		fmt.Printf("── %s\n", c.name)
		callTool(ctx, session, c.name, c.args)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
