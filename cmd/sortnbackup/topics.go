package main

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

var topicsCmd = &cobra.Command{
	Use:   "topics [topic]",
	Short: "Show documentation topics",
	Long:  "Without arguments, lists the available topics. With a topic name, renders it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			names, err := topicNames()
			if err != nil {
				return err
			}
			fmt.Println("Available topics:")
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		}

		content, err := topicFiles.ReadFile("topics/" + args[0] + ".md")
		if err != nil {
			return fmt.Errorf("unknown topic %q (try 'sortnbackup topics')", args[0])
		}
		fmt.Print(renderMarkdown(string(content)))
		return nil
	},
}

func topicNames() ([]string, error) {
	entries, err := topicFiles.ReadDir("topics")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// renderMarkdown converts markdown to terminal output, falling back to
// the raw text when the renderer cannot be built.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
