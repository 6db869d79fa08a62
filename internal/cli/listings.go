package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"campusmarket/internal/app/catalog"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/render"
)

func newListingsCmd(open opener) *cobra.Command {
	var params listings.CatalogParams
	var sort string
	cmd := &cobra.Command{
		Use:     "listings",
		Aliases: []string{"ls"},
		Short:   "Browse listings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				snap := a.catalog.Load(cmd.Context())
				if snap.Demo {
					a.println("Backend unavailable, showing demo listings.")
				}
				params.Sort = listings.CatalogSort(sort)
				items := a.catalog.Search(params)
				a.println(render.Listings(items, a.wishlist.Has, a.catalog.Owned))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&params.Query, "query", "q", "", "match title, description, category or seller")
	cmd.Flags().StringVar(&params.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&params.Condition, "condition", "", "only this condition")
	cmd.Flags().StringVar(&sort, "sort", string(listings.SortByNewest), "newest, priceAsc, priceDesc or title")

	cmd.AddCommand(
		newListingPostCmd(open),
		newListingEditCmd(open),
		newListingDeleteCmd(open),
		newListingContactCmd(open),
	)
	return cmd
}

type draftFlags struct {
	title       string
	category    string
	condition   string
	price       float64
	description string
	image       string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "item title")
	cmd.Flags().StringVar(&f.category, "category", "", "one of Books, Notes, Electronics, Stationery, Other")
	cmd.Flags().StringVar(&f.condition, "condition", "", "one of New, Like New, Good, Fair")
	cmd.Flags().Float64Var(&f.price, "price", 0, "price in rupees")
	cmd.Flags().StringVar(&f.description, "description", "", "free-text description")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image file")
}

// apply overlays the flags the user set onto base.
func (f *draftFlags) apply(cmd *cobra.Command, base listings.Draft) (listings.Draft, error) {
	changed := cmd.Flags().Changed
	if changed("title") {
		base.Title = f.title
	}
	if changed("category") {
		base.Category = f.category
	}
	if changed("condition") {
		base.Condition = f.condition
	}
	if changed("price") {
		base.Price = f.price
	}
	if changed("description") {
		base.Description = f.description
	}
	if changed("image") {
		image, err := imageDataURL(f.image)
		if err != nil {
			return listings.Draft{}, err
		}
		base.Image = image
	}
	return base, nil
}

func newListingPostCmd(open opener) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post an item for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				draft, err := flags.apply(cmd, listings.Draft{})
				if err != nil {
					return err
				}
				item, err := a.catalog.Post(cmd.Context(), draft)
				if err != nil {
					return listingError(err)
				}
				a.printf("Posted #%s %s\n", item.ID, item.Title)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newListingEditCmd(open opener) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				id, err := ids.Parse(args[0])
				if err != nil {
					return err
				}
				a.catalog.Load(cmd.Context())
				current, err := a.catalog.Find(id)
				if err != nil {
					return err
				}
				draft, err := flags.apply(cmd, current.Draft())
				if err != nil {
					return err
				}
				item, err := a.catalog.Edit(cmd.Context(), id, draft)
				if err != nil {
					return listingError(err)
				}
				a.printf("Updated #%s %s\n", item.ID, item.Title)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newListingDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				id, err := ids.Parse(args[0])
				if err != nil {
					return err
				}
				a.catalog.Load(cmd.Context())
				if err := a.catalog.Delete(cmd.Context(), id); err != nil {
					return listingError(err)
				}
				a.printf("Deleted #%s\n", id)
				return nil
			})
		},
	}
}

func newListingContactCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "contact <id>",
		Short: "Print a mailto link for the seller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app) error {
				id, err := ids.Parse(args[0])
				if err != nil {
					return err
				}
				a.catalog.Load(cmd.Context())
				item, err := a.catalog.Find(id)
				if err != nil {
					return err
				}
				if item.Email == "" {
					return fmt.Errorf("listing #%s has no contact email", id)
				}
				a.println(item.ContactURL())
				return nil
			})
		},
	}
}

func listingError(err error) error {
	switch {
	case errors.Is(err, listings.ErrInvalidPrice):
		return errors.New("Price must be zero or more.")
	case errors.Is(err, listings.ErrTitleRequired),
		errors.Is(err, listings.ErrCategoryRequired),
		errors.Is(err, listings.ErrConditionRequired):
		return errors.New("Please fill all required fields.")
	case errors.Is(err, catalog.ErrNotOwner):
		return errors.New("You can only change your own listings.")
	}
	return userMessage(err)
}

// imageDataURL reads a local image the way the browser form did.
func imageDataURL(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
