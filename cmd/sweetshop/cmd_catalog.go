package main

import (
	"context"
	"strconv"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sweetshop"
	"github.com/goliatone/go-sweetshop/web"
	"github.com/spf13/cobra"
)

// catalog returns the catalog service for a signed in caller.
func (a *App) catalog(ctx context.Context) (*sweetshop.CatalogService, error) {
	s, bound := a.session(ctx)
	if err := guard(s, sweetshop.RouteProtected); err != nil {
		return nil, err
	}
	return sweetshop.NewCatalogService(bound), nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid sweet id "+strconv.Quote(raw), errors.CategoryBadInput).
			WithTextCode(sweetshop.TextCodeInvalid).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

// mutation reports msg, or the failure message carried by err.
func (a *App) mutation(msg string, err error) error {
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, msg).
			WithMetadata(map[string]any{"detail": msg})
	}
	a.printMessage(msg)
	return nil
}

func newListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every sweet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			items, err := catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			a.printItems(items)
			return nil
		},
	}
}

func newSearchCmd(app func() *App) *cobra.Command {
	var form sweetshop.SearchForm

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search sweets by name, category or price range",
		Long:  "Search sweets. Empty criteria list the whole catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			page := web.LoadDashboard(cmd.Context(), catalog, "/", form)
			if page.Error != "" {
				return errors.New(page.Error, errors.CategoryOperation)
			}
			a.printItems(page.Items)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "name contains")
	cmd.Flags().StringVar(&form.Category, "category", "", "category contains")
	cmd.Flags().StringVar(&form.MinPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&form.MaxPrice, "max-price", "", "maximum price")
	return cmd
}

func newPurchaseCmd(app func() *App) *cobra.Command {
	var req web.PurchaseRequest

	cmd := &cobra.Command{
		Use:   "purchase ID",
		Short: "Buy a quantity of a sweet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return a.mutation(web.Purchase(cmd.Context(), catalog, id, req))
		},
	}

	cmd.Flags().IntVar(&req.Quantity, "qty", 1, "quantity to buy")
	cmd.Flags().StringVar(&req.Coupon, "coupon", "", "coupon code")
	return cmd
}

func newRestockCmd(app func() *App) *cobra.Command {
	var req web.RestockRequest

	cmd := &cobra.Command{
		Use:   "restock ID",
		Short: "Add stock to a sweet (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return a.mutation(web.Restock(cmd.Context(), catalog, id, req))
		},
	}

	cmd.Flags().IntVar(&req.Quantity, "qty", 0, "quantity to add")
	return cmd
}

func itemFlags(cmd *cobra.Command, req *web.ItemRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "sweet name")
	cmd.Flags().StringVar(&req.Category, "category", "", "category")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "unit price")
	cmd.Flags().IntVar(&req.Quantity, "qty", 0, "quantity in stock")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
}

func newCreateCmd(app func() *App) *cobra.Command {
	var req web.ItemRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a sweet to the catalog (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return a.mutation(web.CreateItem(cmd.Context(), catalog, req))
		},
	}

	itemFlags(cmd, &req)
	return cmd
}

func newUpdateCmd(app func() *App) *cobra.Command {
	var flags web.ItemRequest

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a sweet (admin)",
		Long:  "Change a sweet. Only the given flags are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}

			item, err := web.FindItem(cmd.Context(), catalog, id)
			if err != nil {
				return err
			}

			req := overlay(cmd, web.NewItemRequest(*item), flags)
			if err := req.Validate(); err != nil {
				return err
			}
			return a.mutation(web.UpdateItem(cmd.Context(), catalog, id, req))
		},
	}

	itemFlags(cmd, &flags)
	return cmd
}

// overlay copies the flags the user set over base.
func overlay(cmd *cobra.Command, base, flags web.ItemRequest) web.ItemRequest {
	changed := cmd.Flags().Changed
	if changed("name") {
		base.Name = flags.Name
	}
	if changed("category") {
		base.Category = flags.Category
	}
	if changed("price") {
		base.Price = flags.Price
	}
	if changed("qty") {
		base.Quantity = flags.Quantity
	}
	if changed("description") {
		base.Description = flags.Description
	}
	return base
}

func newDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a sweet from the catalog (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a := app()
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return a.mutation(web.DeleteItem(cmd.Context(), catalog, id))
		},
	}
}
