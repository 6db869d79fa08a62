package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newAPIBaseCmd(open opener) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "api-base [url]",
		Short: "Show or save the API base URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				switch {
				case reset:
					if err := a.store.Delete(APIBaseKey); err != nil {
						return err
					}
					a.printf("API base reset to %s\n", a.cfg.APIBase)
					return nil
				case len(args) == 1:
					raw := strings.TrimRight(strings.TrimSpace(args[0]), "/")
					parsed, err := url.Parse(raw)
					if err != nil || parsed.Scheme == "" || parsed.Host == "" {
						return fmt.Errorf("api base %q must be an absolute URL", args[0])
					}
					if err := a.store.Set(APIBaseKey, []byte(raw)); err != nil {
						return err
					}
					a.printf("API base set to %s\n", raw)
					return nil
				}
				a.println(a.client.BaseURL())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the saved URL")
	return cmd
}
