package cli

import (
	"github.com/spf13/cobra"

	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/render"
)

func newWishlistCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show saved listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				snap := a.catalog.Load(cmd.Context())
				a.printf("Wishlist (%d)\n", a.wishlist.Count())
				a.println(render.Wishlist(a.wishlist.Filter(snap.Items)))
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Save or unsave a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				id, err := ids.Parse(args[0])
				if err != nil {
					return err
				}
				saved, err := a.wishlist.Toggle(id)
				if err != nil {
					return err
				}
				if saved {
					a.printf("Saved #%s to your wishlist.\n", id)
				} else {
					a.printf("Removed #%s from your wishlist.\n", id)
				}
				return nil
			})
		},
	})
	return cmd
}
