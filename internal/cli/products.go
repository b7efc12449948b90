package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const productsPath = "/products"

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
		Long: `Browse the product catalog one page at a time.

Commands:
  n         next page
  p         previous page
  f <text>  filter the current page by name, 'f' alone clears the filter
  q         quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd, productsPath); err != nil {
				return err
			}

			cursor := a.catalog.NewCursor()
			defer cursor.Close()

			out := cmd.OutOrStdout()
			if err := cursor.Load(cmd.Context()); err != nil {
				if handled, err := a.intercept(cmd, productsPath, err); handled {
					return err
				}
				log.Err(err).Msg("Failed to load products")
				fmt.Fprintln(out, "Could not load products.")
			}

			query := ""
			printPage(out, cursor.Snapshot().Filter(query))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}

				command, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
				var (
					moved bool
					err   error
				)
				switch command {
				case "q", "quit":
					return nil
				case "n", "next":
					moved, err = cursor.Next(cmd.Context())
				case "p", "prev", "previous":
					moved, err = cursor.Previous(cmd.Context())
				case "f", "filter":
					query = strings.TrimSpace(arg)
					printPage(out, cursor.Snapshot().Filter(query))
					continue
				case "":
					continue
				default:
					fmt.Fprintf(out, "Unknown command %q\n", command)
					continue
				}

				if err != nil {
					if handled, err := a.intercept(cmd, productsPath, err); handled {
						return err
					}
					log.Err(err).Msg("Failed to load products")
					fmt.Fprintln(out, "Could not load products, showing the previous page.")
				} else if !moved {
					fmt.Fprintln(out, "No more pages in that direction.")
					continue
				}
				printPage(out, cursor.Snapshot().Filter(query))
			}
		},
	}
}

func printPage(out io.Writer, snapshot catalog.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range snapshot.Results {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Fprintf(w, "%s\t$%s\t%s\n", p.Name, p.Price, category)
	}
	if len(snapshot.Results) == 0 {
		fmt.Fprintln(w, "No products")
	}
	_ = w.Flush()

	hints := []string{}
	if snapshot.CanPrevious {
		hints = append(hints, "[p]revious")
	}
	if snapshot.CanNext {
		hints = append(hints, "[n]ext")
	}
	hints = append(hints, "[f]ilter", "[q]uit")
	fmt.Fprintf(out, "Showing %d of %d products  %s\n", len(snapshot.Results), snapshot.Count, strings.Join(hints, " "))
}
