// Package snake holds the interactive prompts used when a command is run
// with --interactive.
package snake

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/pages"
)

// PromptPage asks which list page to open and returns its name.
func PromptPage(cmd *cobra.Command, all []pages.Page) (string, error) {
	if len(all) == 0 {
		return "", fmt.Errorf("no pages to choose from")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Title | bold }} {{ .Name | green }}{{ if .ReadOnly }} {{ \"read-only\" | faint }}{{ end }}",
		Inactive: "   {{ .Title }} {{ .Name | cyan }}",
		Selected: "{{ .Title | bold }}",
		Details: `
--------- Page ----------
endpoint: {{ .Endpoint }}
sort: {{ .DefaultSort }}{{ if .ServerPaged }}
paged by the server{{ end }}
`,
	}

	searcher := func(input string, index int) bool {
		p := all[index]
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		for _, candidate := range append([]string{p.Name, p.Title}, p.Aliases...) {
			if strings.Contains(strings.ReplaceAll(strings.ToLower(candidate), " ", ""), input) {
				return true
			}
		}
		return false
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Pages",
		Items:     all,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopWriteCloser{cmd.OutOrStdout()},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return all[i].Name, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
