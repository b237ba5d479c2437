// ABOUTME: Theme and locale commands for rerng-admin
// ABOUTME: Read or persist the palette name and the Accept-Language code

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rerng-addicted/rerng-admin/internal/locale"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/themepicker"
	"github.com/spf13/cobra"
)

var pickTheme bool

// pickThemeName runs the interactive theme menu; tests replace it
var pickThemeName = func(current string) (string, error) {
	return themepicker.New(current).Run()
}

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or set the colour theme",
	Long: `Without arguments, print the active theme and the available ones.
With a name (or --pick for a menu), persist it as the active theme.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runTheme(st, out, name)
		}))
	},
}

var localeCmd = &cobra.Command{
	Use:   "locale [code]",
	Short: "Show or set the request language",
	Long: `Without arguments, print the language sent as Accept-Language.
With a code (en, km, zh), persist it for later requests.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return runLocale(st, out, code)
		}))
	},
}

func init() {
	rootCmd.AddCommand(themeCmd, localeCmd)
	themeCmd.Flags().BoolVar(&pickTheme, "pick", false, "Choose the theme from a menu")
}

type themeView struct {
	Current   string   `json:"current"`
	Available []string `json:"available"`
}

// runTheme prints or sets the theme and returns the exit code
func runTheme(st *stack, w io.Writer, name string) int {
	if name == "" && pickTheme {
		picked, err := pickThemeName(st.palette.Name)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		name = picked
	}

	if name != "" {
		p, err := theme.Set(st.persist, name)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		st.palette = p
	}

	view := themeView{Current: st.palette.Name, Available: theme.Names()}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(view, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	if name != "" {
		fmt.Fprintf(w, "Theme set to %s\n", view.Current)
		return exitOK
	}
	fmt.Fprintf(w, "Current theme: %s\n", view.Current)
	for _, n := range view.Available {
		fmt.Fprintf(w, "  %s\n", themepicker.Label(n, view.Current))
	}
	return exitOK
}

type localeView struct {
	Current   string   `json:"current"`
	Supported []string `json:"supported"`
}

// runLocale prints or sets the locale and returns the exit code
func runLocale(st *stack, w io.Writer, code string) int {
	if code != "" {
		if _, err := st.locales.Set(code); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
	}

	view := localeView{Current: st.locales.Locale(), Supported: locale.Supported()}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(view, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	if code != "" {
		fmt.Fprintf(w, "Locale set to %s\n", view.Current)
		return exitOK
	}
	fmt.Fprintf(w, "Current locale: %s (supported: %s)\n", view.Current, strings.Join(view.Supported, ", "))
	return exitOK
}
