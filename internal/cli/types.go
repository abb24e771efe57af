package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/categories/internal/app"
)

// typeView is the printed form of one registered type.
type typeView struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	AddToIndex bool     `json:"add_to_index"`
	Extensions []string `json:"extensions,omitempty"`
	Template   string   `json:"template,omitempty"`
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered content types and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				var views []typeView
				for _, t := range a.Types.Types() {
					index, err := a.Types.AddToIndex(t.Name())
					if err != nil {
						return err
					}
					v := typeView{Name: t.Name(), Title: t.Title(), AddToIndex: index}
					for _, ext := range a.Types.Extensions(t.Name()) {
						v.Extensions = append(v.Extensions, ext.Name())
					}
					if tmpl, ok := a.Templates.Default(t.Name()); ok {
						v.Template = tmpl.Path
					}
					views = append(views, v)
				}

				out := cmd.OutOrStdout()
				if flags.jsonMode {
					return printJSON(out, views)
				}
				for _, v := range views {
					fmt.Fprintf(out, "%-10s %-12s index=%-5t template=%s extensions=[%s]\n",
						v.Name, v.Title, v.AddToIndex, v.Template, strings.Join(v.Extensions, ","))
				}
				return nil
			})
		},
	}
}
